package nutri

import (
	"fmt"
	"strings"

	"github.com/Snape93/nutrition-sub008/internal/model"
	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
)

var weightCmd = &cobra.Command{
	Use:   "weight",
	Short: "Manage weight logs",
}

var (
	weightChart bool
	weightLimit int
)

var weightListCmd = &cobra.Command{
	Use:   "list",
	Short: "List weight logs, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAppEnv(cmd, func(env *appEnv) error {
			username, err := env.Username()
			if err != nil {
				return err
			}
			logs, err := env.Client.ListWeightLogs(commandContext(cmd), username)
			if err != nil {
				return err
			}
			if weightLimit > 0 && len(logs) > weightLimit {
				logs = logs[len(logs)-weightLimit:]
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tDATE\tWEIGHT")
			values := make([]float64, 0, len(logs))
			for _, l := range logs {
				fmt.Fprintf(out, "%d\t%s\t%s\n", l.ID, shortDate(l.Date), displayWeight(l.WeightKg.Float64(), env.Config.Units))
				values = append(values, l.WeightKg.Float64())
			}
			if len(values) >= 2 {
				first, last := values[0], values[len(values)-1]
				change := last - first
				if env.Config.Units == "imperial" {
					change = service.KgToLb(last) - service.KgToLb(first)
				}
				unit := "kg"
				if env.Config.Units == "imperial" {
					unit = "lb"
				}
				fmt.Fprintf(out, "Change: %+.1f %s\n", service.RoundTo(change, 1), unit)
			}
			if weightChart && len(values) > 0 {
				fmt.Fprintf(out, "Trend: %s\n", service.Sparkline(values))
			}
			return nil
		})
	},
}

var (
	weightValue float64
	weightUnit  string
	weightDate  string
)

var weightAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a weight measurement",
	RunE: func(cmd *cobra.Command, args []string) error {
		kg, err := service.ToKg(weightValue, weightUnit)
		if err != nil {
			return err
		}
		date, err := parseDateOrToday(weightDate)
		if err != nil {
			return err
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			username, err := env.Username()
			if err != nil {
				return err
			}
			id, err := env.Client.AddWeightLog(commandContext(cmd), model.NewWeightLog{
				Username: username,
				Date:     date,
				WeightKg: service.RoundTo(kg, 2),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added weight log %d (%s)\n", id, displayWeight(kg, env.Config.Units))
			return nil
		})
	},
}

var weightDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a weight log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("weight log id", args[0])
		if err != nil {
			return err
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			if _, err := env.Username(); err != nil {
				return err
			}
			if err := env.Client.DeleteWeightLog(commandContext(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted weight log %d\n", id)
			return nil
		})
	},
}

// shortDate trims a timestamp down to its date part for table output.
func shortDate(s string) string {
	s = strings.TrimSpace(s)
	if t, ok := parseLogDate(s); ok {
		return t.Format(dateLayout)
	}
	return s
}

func init() {
	rootCmd.AddCommand(weightCmd)
	weightCmd.AddCommand(weightListCmd)
	weightCmd.AddCommand(weightAddCmd)
	weightCmd.AddCommand(weightDeleteCmd)

	weightListCmd.Flags().BoolVar(&weightChart, "chart", false, "Print a sparkline of the weight trend")
	weightListCmd.Flags().IntVar(&weightLimit, "limit", 0, "Only show the most recent N entries")

	weightAddCmd.Flags().Float64Var(&weightValue, "weight", 0, "Weight value")
	weightAddCmd.Flags().StringVar(&weightUnit, "unit", "kg", "Weight unit: kg|lb")
	weightAddCmd.Flags().StringVar(&weightDate, "date", "", "Measurement date (YYYY-MM-DD, default today)")
	_ = weightAddCmd.MarkFlagRequired("weight")
}
