package nutri

import (
	"fmt"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/api"
	"github.com/Snape93/nutrition-sub008/internal/model"
	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Daily calorie goal tools",
}

var (
	goalLocal    bool
	goalAge      int
	goalSex      string
	goalWeight   float64
	goalUnit     string
	goalHeight   float64
	goalHeightFt string
	goalActivity string
	goalGoal     string
	goalSave     bool
)

var goalCalcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate the daily calorie goal (server first, local formula as fallback)",
	Long: "Calculate the daily calorie goal with the Mifflin-St Jeor formula. Missing inputs are " +
		"taken from your profile when logged in. The server calculation is tried first unless --local is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAppEnv(cmd, func(env *appEnv) error {
			ctx := commandContext(cmd)
			in := model.CalorieInputs{}
			var username string
			if env.Session != nil && !env.Session.Expired(time.Now()) {
				username = env.Session.Username
				svc := &service.ProfileService{DB: env.DB, Remote: env.Client}
				if res, err := svc.Get(ctx, username, false); err == nil {
					in = model.CalorieInputs{
						Age:           res.Profile.Age.Int(),
						Sex:           res.Profile.Sex,
						WeightKg:      res.Profile.WeightKg.Float64(),
						HeightCm:      res.Profile.HeightCm.Float64(),
						ActivityLevel: res.Profile.ActivityLevel,
						Goal:          res.Profile.Goal,
					}
				} else if !goalLocal {
					fmt.Fprintf(cmd.ErrOrStderr(), "Could not load profile: %s\n", api.UserMessage(err))
				}
			}
			if err := applyGoalFlags(cmd, &in); err != nil {
				return err
			}

			var remote service.GoalCalculator
			if !goalLocal {
				remote = env.Client
			}
			res, err := service.ResolveDailyGoal(ctx, remote, in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			bmr, err := service.BMR(in.Age, in.Sex, in.WeightKg, in.HeightCm)
			if err == nil {
				fmt.Fprintf(out, "BMR: %s kcal\n", service.FormatNumberWithCommas(int64(bmr+0.5)))
			}
			fmt.Fprintf(out, "Daily calorie goal: %s kcal\n", service.FormatNumberWithCommas(int64(res.Calories)))
			fmt.Fprintf(out, "Source: %s\n", res.Source)
			if res.RemoteError != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Server calculation unavailable: %s\n", api.UserMessage(res.RemoteError))
			}

			if goalSave {
				if username == "" {
					return fmt.Errorf("--save requires being logged in")
				}
				kcal := res.Calories
				svc := &service.ProfileService{DB: env.DB, Remote: env.Client}
				if _, err := svc.Update(ctx, username, model.ProfileUpdate{DailyCalorieGoal: &kcal}); err != nil {
					return err
				}
				fmt.Fprintln(out, "Saved to profile")
			}
			return nil
		})
	},
}

func applyGoalFlags(cmd *cobra.Command, in *model.CalorieInputs) error {
	flags := cmd.Flags()
	if flags.Changed("age") {
		in.Age = goalAge
	}
	if flags.Changed("sex") {
		in.Sex = goalSex
	}
	if flags.Changed("weight") {
		kg, err := service.ToKg(goalWeight, goalUnit)
		if err != nil {
			return err
		}
		in.WeightKg = kg
	}
	if flags.Changed("height") && flags.Changed("height-ft") {
		return fmt.Errorf("use either --height or --height-ft")
	}
	if flags.Changed("height") {
		in.HeightCm = goalHeight
	}
	if flags.Changed("height-ft") {
		feet, inches, err := service.ParseFeetInches(goalHeightFt)
		if err != nil {
			return err
		}
		in.HeightCm = service.FeetInchesToCm(feet, inches)
	}
	if flags.Changed("activity") {
		in.ActivityLevel = goalActivity
	}
	if flags.Changed("goal") {
		in.Goal = goalGoal
	}
	if in.ActivityLevel == "" {
		in.ActivityLevel = "sedentary"
	}
	return nil
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalCalcCmd)

	f := goalCalcCmd.Flags()
	f.BoolVar(&goalLocal, "local", false, "Skip the server and use the local formula")
	f.IntVar(&goalAge, "age", 0, "Age in years")
	f.StringVar(&goalSex, "sex", "", "male|female")
	f.Float64Var(&goalWeight, "weight", 0, "Weight (see --unit)")
	f.StringVar(&goalUnit, "unit", "kg", "Weight unit: kg|lb")
	f.Float64Var(&goalHeight, "height", 0, "Height in cm")
	f.StringVar(&goalHeightFt, "height-ft", "", `Height in feet/inches, e.g. 5'10"`)
	f.StringVar(&goalActivity, "activity", "", "Activity level (default sedentary)")
	f.StringVar(&goalGoal, "goal", "", "lose_weight|maintain_weight|gain_muscle|improve_health")
	f.BoolVar(&goalSave, "save", false, "Store the result as the profile's daily calorie goal")
}
