package nutri

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/model"
	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	authUsername string
	authEmail    string
	authPassword string
	authConfirm  string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFromFlagOrStdin(cmd, authPassword)
		if err != nil {
			return err
		}
		confirm := authConfirm
		if !cmd.Flags().Changed("confirm") {
			confirm = password
		}
		form := service.RegistrationForm{
			Username:        authUsername,
			Email:           authEmail,
			Password:        password,
			ConfirmPassword: confirm,
		}
		if err := service.ValidateRegistration(form); err != nil {
			return err
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			ctx := commandContext(cmd)
			res, err := env.Client.Register(ctx, model.Registration{
				Username: strings.TrimSpace(form.Username),
				Email:    strings.TrimSpace(form.Email),
				Password: form.Password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", strings.TrimSpace(form.Username))
			if res.Token != "" {
				if _, err := service.SaveSession(env.DB, strings.TrimSpace(form.Username), res.Token, time.Now()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
			}
			return nil
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		username := strings.TrimSpace(authUsername)
		if username == "" {
			return fmt.Errorf("--username is required")
		}
		password, err := passwordFromFlagOrStdin(cmd, authPassword)
		if err != nil {
			return err
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			res, err := env.Client.Login(commandContext(cmd), model.Credentials{Username: username, Password: password})
			if err != nil {
				return err
			}
			now := time.Now()
			sess, err := service.SaveSession(env.DB, res.User.Username, res.Token, now)
			if err != nil {
				return err
			}
			// Login responses carry the profile; seed the cache so `profile show` works offline.
			if res.User.Email != "" || res.User.Age > 0 {
				res.User.Goal = service.NormalizeGoal(res.User.Goal)
				if err := service.SaveProfile(env.DB, res.User, now); err != nil {
					env.Log.Warn("cache profile after login", zap.Error(err))
				}
			} else if err := service.InvalidateProfile(env.DB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.Username)
			if sess.ExpiresAt != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Session expires %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session and cached profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAppEnv(cmd, func(env *appEnv) error {
			if err := service.ClearSession(env.DB); err != nil {
				return err
			}
			if err := service.InvalidateProfile(env.DB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAppEnv(cmd, func(env *appEnv) error {
			if env.Session == nil {
				return fmt.Errorf("not logged in")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Username: %s\n", env.Session.Username)
			fmt.Fprintf(out, "Backend: %s\n", env.Config.APIURL)
			switch {
			case env.Session.ExpiresAt == nil:
				fmt.Fprintln(out, "Expires: unknown")
			case env.Session.Expired(time.Now()):
				fmt.Fprintf(out, "Expires: %s (expired)\n", env.Session.ExpiresAt.Local().Format("2006-01-02 15:04"))
			default:
				fmt.Fprintf(out, "Expires: %s\n", env.Session.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

// passwordFromFlagOrStdin reads one line from stdin when --password is not set.
func passwordFromFlagOrStdin(cmd *cobra.Command, flagValue string) (string, error) {
	if cmd.Flags().Changed("password") {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" && err != nil {
		return "", fmt.Errorf("password is required")
	}
	return line, nil
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	registerCmd.Flags().StringVar(&authUsername, "username", "", "Username")
	registerCmd.Flags().StringVar(&authEmail, "email", "", "Email address")
	registerCmd.Flags().StringVar(&authPassword, "password", "", "Password (read from stdin when omitted)")
	registerCmd.Flags().StringVar(&authConfirm, "confirm", "", "Password confirmation")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")

	loginCmd.Flags().StringVar(&authUsername, "username", "", "Username")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "Password (read from stdin when omitted)")
}
