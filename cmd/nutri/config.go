package nutri

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage nutri local configuration",
}

var (
	cfgAPIURL            string
	cfgTimeout           string
	cfgPollInterval      string
	cfgCheckConnectivity string
	cfgLogLevel          string
	cfgUnits             string
	cfgLookupProviders   string
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set configuration values",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagKeys := []struct {
			flag  string
			key   string
			value *string
		}{
			{"api-url", service.ConfigAPIURL, &cfgAPIURL},
			{"timeout", service.ConfigTimeout, &cfgTimeout},
			{"poll-interval", service.ConfigPollInterval, &cfgPollInterval},
			{"check-connectivity", service.ConfigCheckConnectivity, &cfgCheckConnectivity},
			{"log-level", service.ConfigLogLevel, &cfgLogLevel},
			{"units", service.ConfigUnits, &cfgUnits},
			{"lookup-providers", service.ConfigLookupProviders, &cfgLookupProviders},
		}
		return withDB(func(sqldb *sql.DB) error {
			updates := 0
			for _, fk := range flagKeys {
				if !cmd.Flags().Changed(fk.flag) {
					continue
				}
				if err := service.SetConfig(sqldb, fk.key, *fk.value); err != nil {
					return err
				}
				updates++
			}
			if updates == 0 {
				return fmt.Errorf("set at least one flag")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d config value(s)\n", updates)
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show stored and effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			cfg, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(cfg))
			for k := range cfg {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(out, "%s\t%s\n", k, cfg[k])
			}

			eff, err := resolveConfig(cmd, sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nEffective")
			fmt.Fprintf(out, "api_url\t%s\n", eff.APIURL)
			fmt.Fprintf(out, "timeout\t%s\n", eff.Timeout)
			fmt.Fprintf(out, "poll_interval\t%s\n", eff.PollInterval)
			fmt.Fprintf(out, "check_connectivity\t%t\n", eff.CheckConnectivity)
			fmt.Fprintf(out, "log_level\t%s\n", eff.LogLevel)
			fmt.Fprintf(out, "units\t%s\n", eff.Units)
			fmt.Fprintf(out, "lookup_providers\t%s\n", eff.LookupProviders)
			fmt.Fprintf(out, "usda_api_key\t%s\n", maskSecret(eff.USDAAPIKey))
			return nil
		})
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a stored configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.UnsetConfig(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configUnsetCmd)

	configSetCmd.Flags().StringVar(&cfgAPIURL, "api-url", "", "Backend base URL")
	configSetCmd.Flags().StringVar(&cfgTimeout, "timeout", "", "Default request timeout (e.g. 15s)")
	configSetCmd.Flags().StringVar(&cfgPollInterval, "poll-interval", "", "Food log watch interval (e.g. 30s)")
	configSetCmd.Flags().StringVar(&cfgCheckConnectivity, "check-connectivity", "", "Probe the backend before requests: true|false")
	configSetCmd.Flags().StringVar(&cfgLogLevel, "log-level", "", "Log level: debug|info|warn|error")
	configSetCmd.Flags().StringVar(&cfgUnits, "units", "", "Display units: metric|imperial")
	configSetCmd.Flags().StringVar(&cfgLookupProviders, "lookup-providers", "", "Food facts providers in order (e.g. openfoodfacts,usda)")
}

func maskSecret(v string) string {
	if v == "" {
		return "(unset)"
	}
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}
