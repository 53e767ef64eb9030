package nutri

import (
	"fmt"
	"strings"

	"github.com/Snape93/nutrition-sub008/internal/model"
	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
)

const defaultStreakType = "calories"

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show or update streaks",
}

var streakType string

var streakShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAppEnv(cmd, func(env *appEnv) error {
			username, err := env.Username()
			if err != nil {
				return err
			}
			s, err := env.Client.GetStreak(commandContext(cmd), username, strings.TrimSpace(streakType))
			if err != nil {
				return err
			}
			printStreak(cmd, s)
			return nil
		})
	},
}

var (
	streakGoalMet bool
	streakDate    string
)

var streakUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Report whether today's goal was met; the server recomputes the streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(streakDate)
		if err != nil {
			return err
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			username, err := env.Username()
			if err != nil {
				return err
			}
			s, err := env.Client.UpdateStreak(commandContext(cmd), model.StreakUpdate{
				Username:   username,
				StreakType: strings.TrimSpace(streakType),
				GoalMet:    streakGoalMet,
				Date:       date,
			})
			if err != nil {
				return err
			}
			printStreak(cmd, s)
			return nil
		})
	},
}

func printStreak(cmd *cobra.Command, s model.Streak) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Streak: %s\n", s.StreakType)
	fmt.Fprintf(out, "Current: %d days\n", s.CurrentStreak.Int())
	fmt.Fprintf(out, "Longest: %d days\n", s.LongestStreak.Int())
	if s.LastActivityDate != "" {
		fmt.Fprintf(out, "Last activity: %s\n", shortDate(s.LastActivityDate))
	}
	fmt.Fprintln(out, service.StreakMotivation(s))
}

func init() {
	rootCmd.AddCommand(streakCmd)
	streakCmd.AddCommand(streakShowCmd)
	streakCmd.AddCommand(streakUpdateCmd)

	streakCmd.PersistentFlags().StringVar(&streakType, "type", defaultStreakType, "Streak type, e.g. calories|exercise")
	streakUpdateCmd.Flags().BoolVar(&streakGoalMet, "goal-met", true, "Whether the goal was met")
	streakUpdateCmd.Flags().StringVar(&streakDate, "date", "", "Day being reported (YYYY-MM-DD, default today)")
}
