package nutri

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
)

var (
	doctorFix  bool
	doctorPing bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check local state and backend reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		var report service.DoctorReport
		err := withDB(func(sqldb *sql.DB) error {
			var err error
			report, err = service.RunDoctor(sqldb, doctorFix, time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Schema version: %d/%d\n", report.SchemaVersion, report.LatestVersion)
			fmt.Fprintf(out, "Invalid profile cache: %t\n", report.InvalidProfileCache)
			fmt.Fprintf(out, "Stale profile cache: %t\n", report.StaleProfileCache)
			fmt.Fprintf(out, "Expired session: %t\n", report.ExpiredSession)
			fmt.Fprintf(out, "Expired food lookups: %d\n", report.ExpiredFoodFacts)
			if len(report.InvalidConfigKeys) > 0 {
				fmt.Fprintf(out, "Invalid config keys: %s\n", strings.Join(report.InvalidConfigKeys, ", "))
			}
			if doctorFix {
				fmt.Fprintf(out, "Fixed: %d\n", report.Fixed)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(sqldb, false, time.Now())
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if doctorPing {
			if err := withAppEnv(cmd, func(env *appEnv) error {
				return env.Client.Ping(commandContext(cmd))
			}); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Backend: unreachable (%s)\n", err)
				return fmt.Errorf("doctor could not reach the backend")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Backend: ok")
		}
		if !report.Healthy() {
			return fmt.Errorf("doctor found local state issues")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Clear broken cache/session/config rows")
	doctorCmd.Flags().BoolVar(&doctorPing, "ping", false, "Also check the backend health endpoint")
}
