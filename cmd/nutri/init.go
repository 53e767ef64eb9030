package nutri

import (
	"database/sql"
	"fmt"

	"github.com/Snape93/nutrition-sub008/internal/app"
	"github.com/Snape93/nutrition-sub008/internal/db"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the local database (session, profile cache, settings) and apply migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			applied, err := db.AppliedVersion(sqldb)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Initialized nutri database at %s\n", path)
			fmt.Fprintf(out, "Schema version: %d/%d\n", applied, db.LatestVersion())
			if envPath, err := app.DefaultEnvPath(); err == nil {
				fmt.Fprintf(out, "Optional settings file: %s\n", envPath)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}
