package nutri

import (
	"fmt"
	"strings"

	"github.com/Snape93/nutrition-sub008/internal/model"
	"github.com/spf13/cobra"
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Manage exercise logs",
}

var exerciseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exercise logs, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAppEnv(cmd, func(env *appEnv) error {
			username, err := env.Username()
			if err != nil {
				return err
			}
			items, err := env.Client.ListExerciseLogs(commandContext(cmd), username)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tDATE\tEXERCISE\tDURATION_MIN\tKCAL_BURNED")
			burned := 0.0
			for _, item := range items {
				fmt.Fprintf(out, "%d\t%s\t%s\t%.0f\t%.0f\n", item.ID, shortDate(item.Date), item.ExerciseName, item.DurationMin.Float64(), item.CaloriesBurned.Float64())
				burned += item.CaloriesBurned.Float64()
			}
			if len(items) > 0 {
				fmt.Fprintf(out, "Total burned: %.0f kcal\n", burned)
			}
			return nil
		})
	},
}

var (
	exerciseName        string
	exerciseDurationMin float64
	exerciseCalories    float64
	exerciseDate        string
)

var exerciseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log an exercise session",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(exerciseName)
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		if exerciseDurationMin <= 0 {
			return fmt.Errorf("--duration must be > 0")
		}
		if exerciseCalories < 0 {
			return fmt.Errorf("--calories must be >= 0")
		}
		date, err := parseDateOrToday(exerciseDate)
		if err != nil {
			return err
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			username, err := env.Username()
			if err != nil {
				return err
			}
			id, err := env.Client.AddExerciseLog(commandContext(cmd), model.NewExerciseLog{
				Username:       username,
				Date:           date,
				ExerciseName:   name,
				DurationMin:    exerciseDurationMin,
				CaloriesBurned: exerciseCalories,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added exercise log %d\n", id)
			return nil
		})
	},
}

var exerciseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an exercise log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("exercise log id", args[0])
		if err != nil {
			return err
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			if _, err := env.Username(); err != nil {
				return err
			}
			if err := env.Client.DeleteExerciseLog(commandContext(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted exercise log %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exerciseCmd)
	exerciseCmd.AddCommand(exerciseListCmd)
	exerciseCmd.AddCommand(exerciseAddCmd)
	exerciseCmd.AddCommand(exerciseDeleteCmd)

	exerciseAddCmd.Flags().StringVar(&exerciseName, "name", "", "Exercise name, e.g. running")
	exerciseAddCmd.Flags().Float64Var(&exerciseDurationMin, "duration", 0, "Duration in minutes")
	exerciseAddCmd.Flags().Float64Var(&exerciseCalories, "calories", 0, "Calories burned")
	exerciseAddCmd.Flags().StringVar(&exerciseDate, "date", "", "Session date (YYYY-MM-DD, default today)")
}
