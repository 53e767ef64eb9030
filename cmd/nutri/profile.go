package nutri

import (
	"fmt"
	"strings"

	"github.com/Snape93/nutrition-sub008/internal/model"
	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
}

var profileRefresh bool

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile, from the local cache when available",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAppEnv(cmd, func(env *appEnv) error {
			username, err := env.Username()
			if err != nil {
				return err
			}
			svc := &service.ProfileService{DB: env.DB, Remote: env.Client}
			res, err := svc.Get(commandContext(cmd), username, profileRefresh)
			if err != nil {
				return err
			}
			printProfile(cmd, res.Profile, env.Config.Units)
			source := "server"
			if res.FromCache {
				source = "cache"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Source: %s (fetched %s)\n", source, res.FetchedAt.Local().Format("2006-01-02 15:04"))
			return nil
		})
	},
}

var (
	profEmail        string
	profSex          string
	profAge          int
	profHeight       float64
	profHeightFt     string
	profWeight       float64
	profTargetWeight float64
	profWeightUnit   string
	profActivity     string
	profGoal         string
	profDailyGoal    int
	profNoRecompute  bool
)

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		update, err := buildProfileUpdate(cmd)
		if err != nil {
			return err
		}
		return withAppEnv(cmd, func(env *appEnv) error {
			username, err := env.Username()
			if err != nil {
				return err
			}
			svc := &service.ProfileService{DB: env.DB, Remote: env.Client}
			if !profNoRecompute {
				svc.Goals = env.Client
			}
			sent, err := svc.Update(commandContext(cmd), username, update)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated profile for %s\n", username)
			if sent.DailyCalorieGoal != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Daily calorie goal: %s kcal\n", service.FormatNumberWithCommas(int64(*sent.DailyCalorieGoal)))
			}
			return nil
		})
	},
}

var profileClearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop the locally cached profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAppEnv(cmd, func(env *appEnv) error {
			if err := service.InvalidateProfile(env.DB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile cache cleared")
			return nil
		})
	},
}

func buildProfileUpdate(cmd *cobra.Command) (model.ProfileUpdate, error) {
	var u model.ProfileUpdate
	flags := cmd.Flags()
	if flags.Changed("email") {
		v := strings.TrimSpace(profEmail)
		u.Email = &v
	}
	if flags.Changed("sex") {
		v := profSex
		u.Sex = &v
	}
	if flags.Changed("age") {
		if profAge <= 0 || profAge > 120 {
			return u, fmt.Errorf("--age must be between 1 and 120")
		}
		v := profAge
		u.Age = &v
	}
	if flags.Changed("height") && flags.Changed("height-ft") {
		return u, fmt.Errorf("use either --height or --height-ft")
	}
	if flags.Changed("height") {
		if profHeight <= 0 {
			return u, fmt.Errorf("--height must be > 0")
		}
		v := profHeight
		u.HeightCm = &v
	}
	if flags.Changed("height-ft") {
		feet, inches, err := service.ParseFeetInches(profHeightFt)
		if err != nil {
			return u, err
		}
		v := service.RoundTo(service.FeetInchesToCm(feet, inches), 1)
		u.HeightCm = &v
	}
	if flags.Changed("weight") {
		kg, err := service.ToKg(profWeight, profWeightUnit)
		if err != nil {
			return u, err
		}
		v := service.RoundTo(kg, 2)
		u.WeightKg = &v
	}
	if flags.Changed("target-weight") {
		kg, err := service.ToKg(profTargetWeight, profWeightUnit)
		if err != nil {
			return u, err
		}
		v := service.RoundTo(kg, 2)
		u.TargetWeightKg = &v
	}
	if flags.Changed("activity") {
		v := profActivity
		u.ActivityLevel = &v
	}
	if flags.Changed("goal") {
		v := profGoal
		u.Goal = &v
	}
	if flags.Changed("daily-goal") {
		if profDailyGoal <= 0 {
			return u, fmt.Errorf("--daily-goal must be > 0")
		}
		v := profDailyGoal
		u.DailyCalorieGoal = &v
	}
	if u.Empty() {
		return u, fmt.Errorf("set at least one field to update")
	}
	return u, nil
}

func printProfile(cmd *cobra.Command, p model.Profile, units string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Username: %s\n", p.Username)
	if p.Email != "" {
		fmt.Fprintf(out, "Email: %s\n", p.Email)
	}
	if p.Sex != "" {
		fmt.Fprintf(out, "Sex: %s\n", p.Sex)
	}
	if p.Age > 0 {
		fmt.Fprintf(out, "Age: %d\n", p.Age.Int())
	}
	if p.HeightCm > 0 {
		fmt.Fprintf(out, "Height: %s\n", displayHeight(p.HeightCm.Float64(), units))
	}
	if p.WeightKg > 0 {
		fmt.Fprintf(out, "Weight: %s\n", displayWeight(p.WeightKg.Float64(), units))
	}
	if p.TargetWeightKg > 0 {
		fmt.Fprintf(out, "Target weight: %s\n", displayWeight(p.TargetWeightKg.Float64(), units))
	}
	if p.HeightCm > 0 && p.WeightKg > 0 {
		if bmi, err := service.CalculateBMI(p.HeightCm.Float64(), p.WeightKg.Float64()); err == nil {
			fmt.Fprintf(out, "BMI: %.1f (%s)\n", bmi, service.BMICategory(bmi))
		}
	}
	if p.ActivityLevel != "" {
		fmt.Fprintf(out, "Activity level: %s\n", service.NormalizeActivityLevel(p.ActivityLevel))
	}
	fmt.Fprintf(out, "Goal: %s\n", service.NormalizeGoal(p.Goal))
	if p.DailyCalorieGoal > 0 {
		fmt.Fprintf(out, "Daily calorie goal: %s kcal\n", service.FormatNumberWithCommas(int64(p.DailyCalorieGoal.Int())))
	}
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profileClearCacheCmd)

	profileShowCmd.Flags().BoolVar(&profileRefresh, "refresh", false, "Bypass the cache and fetch from the server")

	f := profileUpdateCmd.Flags()
	f.StringVar(&profEmail, "email", "", "Email address")
	f.StringVar(&profSex, "sex", "", "male|female")
	f.IntVar(&profAge, "age", 0, "Age in years")
	f.Float64Var(&profHeight, "height", 0, "Height in cm")
	f.StringVar(&profHeightFt, "height-ft", "", `Height in feet/inches, e.g. 5'10"`)
	f.Float64Var(&profWeight, "weight", 0, "Current weight (see --unit)")
	f.Float64Var(&profTargetWeight, "target-weight", 0, "Target weight (see --unit)")
	f.StringVar(&profWeightUnit, "unit", "kg", "Weight unit for --weight/--target-weight: kg|lb")
	f.StringVar(&profActivity, "activity", "", "sedentary|lightly_active|moderately_active|active|very_active|extra_active")
	f.StringVar(&profGoal, "goal", "", "lose_weight|maintain_weight|gain_muscle|improve_health")
	f.IntVar(&profDailyGoal, "daily-goal", 0, "Set the daily calorie goal explicitly")
	f.BoolVar(&profNoRecompute, "no-recompute", false, "Do not recompute the daily calorie goal")
}
