package nutri

import (
	"fmt"
	"os"

	"github.com/Snape93/nutrition-sub008/internal/api"
	"github.com/spf13/cobra"
)

var (
	dbPath              string
	apiURLFlag          string
	logLevelFlag        string
	unitsFlag           string
	noConnectivityCheck bool
)

var rootCmd = &cobra.Command{
	Use:           "nutri",
	Short:         "nutri is a terminal client for your nutrition and fitness tracker",
	Long:          "nutri talks to the nutrition backend to log food, weight, exercise and streaks, and computes calorie goals, charts and unit conversions locally.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, api.UserMessage(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Backend base URL (overrides NUTRI_API_URL and config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&unitsFlag, "units", "", "Display units: metric|imperial")
	rootCmd.PersistentFlags().BoolVar(&noConnectivityCheck, "no-connectivity-check", false, "Skip the reachability probe before requests")
}
