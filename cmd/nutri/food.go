package nutri

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/api"
	"github.com/Snape93/nutrition-sub008/internal/model"
	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Manage food logs",
}

var (
	foodListDate string
	foodDetails  bool
)

var foodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List food logs for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(foodListDate)
		if err != nil {
			return err
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			username, err := env.Username()
			if err != nil {
				return err
			}
			logs, err := env.Client.ListFoodLogs(commandContext(cmd), username, date)
			if err != nil {
				return err
			}
			printFoodLogs(cmd.OutOrStdout(), date, logs, foodDetails)
			return nil
		})
	},
}

var (
	foodName     string
	foodMeal     string
	foodCalories float64
	foodServing  string
	foodDate     string
	foodBarcode  string
)

var foodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a food item",
	RunE: func(cmd *cobra.Command, args []string) error {
		if foodCalories < 0 {
			return fmt.Errorf("--calories must be >= 0")
		}
		meal := strings.ToLower(strings.TrimSpace(foodMeal))
		if meal == "" {
			return fmt.Errorf("--meal is required")
		}
		date, err := parseDateOrToday(foodDate)
		if err != nil {
			return err
		}
		if strings.TrimSpace(foodName) == "" && strings.TrimSpace(foodBarcode) == "" {
			return fmt.Errorf("--name is required")
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			username, err := env.Username()
			if err != nil {
				return err
			}
			entry := model.NewFoodLog{
				Username:    username,
				FoodName:    strings.TrimSpace(foodName),
				MealType:    meal,
				Calories:    foodCalories,
				ServingSize: strings.TrimSpace(foodServing),
				Date:        date,
			}
			if code := strings.TrimSpace(foodBarcode); code != "" {
				if err := prefillFromBarcode(cmd, env, code, &entry); err != nil {
					return err
				}
			}
			id, err := env.Client.AddFoodLog(commandContext(cmd), entry)
			if err != nil {
				return err
			}
			if id > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Added food log %d\n", id)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Added food log")
			}
			return nil
		})
	},
}

// prefillFromBarcode fills fields the user left unset from a food facts lookup.
func prefillFromBarcode(cmd *cobra.Command, env *appEnv, barcode string, entry *model.NewFoodLog) error {
	sources, err := foodFactsSources(env, "", "")
	if err != nil {
		return err
	}
	f, err := service.LookupFoodBarcode(commandContext(cmd), env.DB, barcode, sources, time.Now())
	if err != nil {
		return err
	}
	if entry.FoodName == "" {
		entry.FoodName = f.Name
	}
	if !cmd.Flags().Changed("calories") {
		entry.Calories = service.RoundTo(f.Calories, 0)
	}
	if entry.ServingSize == "" {
		entry.ServingSize = f.Serving
	}
	if f.Per100g && !cmd.Flags().Changed("calories") {
		fmt.Fprintf(cmd.ErrOrStderr(), "note: %s publishes calories per 100 g only\n", f.Provider)
	}
	return nil
}

var foodDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a food log (the server decides whether it is still deletable)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("food log id", args[0])
		if err != nil {
			return err
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			if _, err := env.Username(); err != nil {
				return err
			}
			if err := env.Client.DeleteFoodLog(commandContext(cmd), id); err != nil {
				if api.KindOf(err) == api.KindHTTP {
					return fmt.Errorf("delete food log %d: %s", id, api.UserMessage(err))
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted food log %d\n", id)
			return nil
		})
	},
}

var (
	foodWatchDate     string
	foodWatchInterval time.Duration
)

var foodWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll today's food logs and reprint when they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(foodWatchDate)
		if err != nil {
			return err
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			username, err := env.Username()
			if err != nil {
				return err
			}
			interval := env.Config.PollInterval
			if cmd.Flags().Changed("interval") {
				interval = foodWatchInterval
			}
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Polls never block on the retry prompt; OnError reports and the next tick retries.
			env.Client.Prompter = nil
			env.Client.Notifier = nil
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching food logs for %s every %s (Ctrl+C to stop)\n", date, interval)
			return service.PollFoodLogs(ctx, interval,
				func(ctx context.Context) ([]model.FoodLog, error) {
					return env.Client.ListFoodLogs(ctx, username, date)
				},
				service.PollHandlers{
					OnChange: func(logs []model.FoodLog) {
						fmt.Fprintf(out, "\n[%s]\n", time.Now().Format("15:04:05"))
						printFoodLogs(out, date, logs, true)
					},
					OnError: func(err error) {
						env.Log.Warn("poll food logs", zap.Error(err))
						fmt.Fprintln(cmd.ErrOrStderr(), api.UserMessage(err))
					},
				})
		})
	},
}

func printFoodLogs(out io.Writer, date string, logs []model.FoodLog, details bool) {
	fmt.Fprintf(out, "Food logs for %s\n", date)
	if len(logs) == 0 {
		fmt.Fprintln(out, "(none)")
		return
	}
	if details {
		fmt.Fprintln(out, "ID\tMEAL\tFOOD\tKCAL\tSERVING\tPHASE\tPROGRESS\tSTATUS")
	} else {
		fmt.Fprintln(out, "ID\tMEAL\tFOOD\tKCAL\tSERVING")
	}
	for _, l := range logs {
		if details {
			fmt.Fprintf(out, "%d\t%s\t%s\t%.0f\t%s\t%s\t%s\t%s\n", l.ID, l.MealType, l.FoodName, l.Calories.Float64(), l.ServingSize,
				service.PhaseLabel(l.Phase), service.ProgressBar(l.PhaseProgress.Float64(), 10), service.DeletionHint(l))
			continue
		}
		fmt.Fprintf(out, "%d\t%s\t%s\t%.0f\t%s\n", l.ID, l.MealType, l.FoodName, l.Calories.Float64(), l.ServingSize)
	}
	total, meals := service.SummarizeFoodLogs(logs)
	fmt.Fprintln(out, "\nBy Meal")
	for _, m := range meals {
		fmt.Fprintf(out, "%s\t%.0f kcal\t(%d items)\n", m.MealType, m.Calories, m.Count)
	}
	fmt.Fprintf(out, "Total: %s kcal\n", service.FormatNumberWithCommas(int64(total+0.5)))
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodListCmd)
	foodCmd.AddCommand(foodAddCmd)
	foodCmd.AddCommand(foodDeleteCmd)
	foodCmd.AddCommand(foodWatchCmd)

	foodListCmd.Flags().StringVar(&foodListDate, "date", "", "Day to list (YYYY-MM-DD, default today)")
	foodListCmd.Flags().BoolVar(&foodDetails, "details", false, "Show phase, progress and deletion status")

	foodAddCmd.Flags().StringVar(&foodName, "name", "", "Food name")
	foodAddCmd.Flags().StringVar(&foodMeal, "meal", "", "Meal type: breakfast|lunch|dinner|snack")
	foodAddCmd.Flags().Float64Var(&foodCalories, "calories", 0, "Calories")
	foodAddCmd.Flags().StringVar(&foodServing, "serving", "", "Serving size, e.g. \"1 cup\"")
	foodAddCmd.Flags().StringVar(&foodDate, "date", "", "Log date (YYYY-MM-DD, default today)")
	foodAddCmd.Flags().StringVar(&foodBarcode, "barcode", "", "Prefill name, calories and serving from a barcode lookup")

	foodWatchCmd.Flags().StringVar(&foodWatchDate, "date", "", "Day to watch (YYYY-MM-DD, default today)")
	foodWatchCmd.Flags().DurationVar(&foodWatchInterval, "interval", service.DefaultPollInterval, "Polling interval")
}
