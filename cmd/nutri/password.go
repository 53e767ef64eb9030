package nutri

import (
	"fmt"
	"strings"

	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
)

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Password tools",
}

var passwordCheckCmd = &cobra.Command{
	Use:   "check [password]",
	Short: "Score password strength (reads stdin when no argument is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var pw string
		if len(args) == 1 {
			pw = args[0]
		} else {
			var err error
			pw, err = passwordFromFlagOrStdin(cmd, "")
			if err != nil {
				return err
			}
		}
		r := service.ScorePassword(pw)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Strength: %s (%d/5)\n", r.Strength, r.Score)
		fmt.Fprintf(out, "Meter: %s\n", service.ProgressBar(float64(r.Score)/5, 10))
		if missing := r.Missing(); len(missing) > 0 {
			fmt.Fprintf(out, "Add: %s\n", strings.Join(missing, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(passwordCmd)
	passwordCmd.AddCommand(passwordCheckCmd)
}
