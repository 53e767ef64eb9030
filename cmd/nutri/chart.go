package nutri

import (
	"fmt"
	"io"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
)

const (
	maxChartDays = 31
	barWidth     = 40
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Terminal charts",
}

var (
	chartDays   int
	chartGoal   float64
	chartWeekly bool
)

var chartCaloriesCmd = &cobra.Command{
	Use:   "calories",
	Short: "Bar chart of daily calorie intake against your goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		if chartDays <= 0 || chartDays > maxChartDays {
			return fmt.Errorf("--days must be between 1 and %d", maxChartDays)
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			username, err := env.Username()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			goal := chartGoal
			if !cmd.Flags().Changed("goal") {
				svc := &service.ProfileService{DB: env.DB, Remote: env.Client}
				if res, err := svc.Get(ctx, username, false); err == nil {
					goal = float64(res.Profile.DailyCalorieGoal.Int())
				}
			}

			end := time.Now()
			points := make([]service.DatedValue, 0, chartDays)
			for i := chartDays - 1; i >= 0; i-- {
				day := end.AddDate(0, 0, -i)
				logs, err := env.Client.ListFoodLogs(ctx, username, day.Format(dateLayout))
				if err != nil {
					return err
				}
				total, _ := service.SummarizeFoodLogs(logs)
				points = append(points, service.DatedValue{Date: day, Value: total})
			}

			var bins []service.Bin
			if chartWeekly {
				bins = service.BinByWeek(points, end, service.WeeksSpanned(end, chartDays))
			} else {
				bins = service.BinByDay(points, end, chartDays)
			}
			renderCalorieChart(cmd.OutOrStdout(), bins, goal, chartWeekly)
			return nil
		})
	},
}

// renderCalorieChart prints one bar per bin; weekly bins show the daily average.
func renderCalorieChart(out io.Writer, bins []service.Bin, goal float64, average bool) {
	values := make([]float64, len(bins))
	for i, b := range bins {
		values[i] = b.Total
		if average {
			values[i] = b.Average()
		}
	}
	axis := service.ScaleAxis(values, goal)
	fmt.Fprintf(out, "Axis: 0-%s kcal, gridlines every %s\n",
		service.FormatNumberWithCommas(int64(axis.Max)), service.FormatNumberWithCommas(int64(axis.Interval)))
	if goal > 0 {
		fmt.Fprintf(out, "Goal: %s kcal (|)\n", service.FormatNumberWithCommas(int64(goal)))
	}
	for i, b := range bins {
		fmt.Fprintf(out, "  %-6s %-*s %s\n", b.Label, barWidth, service.HorizontalBar(values[i], axis, barWidth, goal),
			service.FormatNumberWithCommas(int64(values[i]+0.5)))
	}
	if axis.Capped {
		fmt.Fprintln(out, "(values above the axis are clipped)")
	}
	fmt.Fprintf(out, "Trend: %s\n", service.Sparkline(values))
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.AddCommand(chartCaloriesCmd)

	chartCaloriesCmd.Flags().IntVar(&chartDays, "days", 7, "Number of days to chart")
	chartCaloriesCmd.Flags().Float64Var(&chartGoal, "goal", 0, "Goal line in kcal (default: profile daily goal)")
	chartCaloriesCmd.Flags().BoolVar(&chartWeekly, "weekly", false, "Group into weeks and show daily averages")
}
