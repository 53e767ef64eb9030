package nutri

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/api"
	"github.com/Snape93/nutrition-sub008/internal/app"
	"github.com/Snape93/nutrition-sub008/internal/config"
	"github.com/Snape93/nutrition-sub008/internal/db"
	"github.com/Snape93/nutrition-sub008/internal/logging"
	"github.com/Snape93/nutrition-sub008/internal/model"
	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// appEnv is everything a command that talks to the backend needs.
type appEnv struct {
	DB      *sql.DB
	Config  config.Config
	Log     *zap.Logger
	Client  *api.Client
	Session *model.Session
}

// Username fails when nobody is logged in or the stored token has expired.
func (e *appEnv) Username() (string, error) {
	if e.Session == nil {
		return "", fmt.Errorf("not logged in; run `nutri login` first")
	}
	if e.Session.Expired(time.Now()) {
		return "", fmt.Errorf("session expired; run `nutri login` again")
	}
	return e.Session.Username, nil
}

func withAppEnv(cmd *cobra.Command, run func(*appEnv) error) error {
	return withDB(func(sqldb *sql.DB) error {
		cfg, err := resolveConfig(cmd, sqldb)
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		sess, err := service.LoadSession(sqldb)
		if err != nil {
			return err
		}
		client := newClient(cmd, cfg, logger)
		if sess != nil {
			client.Token = sess.Token
		}
		return run(&appEnv{DB: sqldb, Config: cfg, Log: logger, Client: client, Session: sess})
	})
}

func resolveConfig(cmd *cobra.Command, sqldb *sql.DB) (config.Config, error) {
	stored, err := service.ListConfig(sqldb)
	if err != nil {
		return config.Config{}, err
	}
	envPaths := []string{".env"}
	if p, err := app.DefaultEnvPath(); err == nil {
		envPaths = append(envPaths, p)
	}
	dotenv, err := config.LoadDotEnv(envPaths...)
	if err != nil {
		return config.Config{}, err
	}
	src := config.Source{
		DotEnv: dotenv,
		Stored: stored,
		Flags:  config.Overrides{APIURL: apiURLFlag, LogLevel: logLevelFlag, Units: unitsFlag},
	}
	if cmd.Flags().Changed("no-connectivity-check") {
		check := !noConnectivityCheck
		src.Flags.CheckConnectivity = &check
	}
	return src.Resolve()
}

func newClient(cmd *cobra.Command, cfg config.Config, logger *zap.Logger) *api.Client {
	client := &api.Client{
		BaseURL:           cfg.APIURL,
		Timeout:           cfg.Timeout,
		CheckConnectivity: cfg.CheckConnectivity,
		Prompter:          &linePrompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.ErrOrStderr()},
		Notifier:          writerNotifier{w: cmd.ErrOrStderr()},
		Logger:            logger,
	}
	if reach, err := api.ReachabilityFor(cfg.APIURL); err == nil {
		client.Reachability = reach
	} else {
		client.CheckConnectivity = false
	}
	return client
}

type writerNotifier struct {
	w io.Writer
}

func (n writerNotifier) Notify(kind api.Kind, message string) {
	fmt.Fprintf(n.w, "[%s] %s\n", kind, message)
}

// linePrompter asks on out and reads a y/N answer from in. EOF declines.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *linePrompter) ConfirmRetry(message string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", message)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

// parseDateOrToday normalizes a YYYY-MM-DD flag, defaulting to today.
func parseDateOrToday(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Now().Format(dateLayout), nil
	}
	t, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
	}
	return t.Format(dateLayout), nil
}

// parseLogDate accepts the date shapes the backend returns.
func parseLogDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", dateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func displayWeight(kg float64, units string) string {
	if units == "imperial" {
		return fmt.Sprintf("%.1f lb", service.RoundTo(service.KgToLb(kg), 1))
	}
	return fmt.Sprintf("%.1f kg", service.RoundTo(kg, 1))
}

func displayHeight(cm float64, units string) string {
	if units == "imperial" {
		return service.FormatFeetInches(service.CmToFeetInches(cm))
	}
	return fmt.Sprintf("%.0f cm", cm)
}
