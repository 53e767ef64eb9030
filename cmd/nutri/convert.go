package nutri

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Snape93/nutrition-sub008/internal/service"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Unit conversions",
}

var convertHeightCmd = &cobra.Command{
	Use:   "height <value>",
	Short: "Convert a height between cm and feet/inches",
	Long:  "Convert a height. Plain numbers are read as centimetres; values like 5'10\" or \"5ft 10in\" are converted to centimetres.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cm, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64); err == nil {
			if cm <= 0 {
				return fmt.Errorf("height must be > 0")
			}
			fmt.Fprintf(out, "%s cm = %s\n", strconv.FormatFloat(cm, 'f', -1, 64), service.FormatFeetInches(service.CmToFeetInches(cm)))
			return nil
		}
		feet, inches, err := service.ParseFeetInches(args[0])
		if err != nil {
			return err
		}
		cm := service.RoundTo(service.FeetInchesToCm(feet, inches), 1)
		fmt.Fprintf(out, "%s = %s cm\n", service.FormatFeetInches(feet, inches), strconv.FormatFloat(cm, 'f', -1, 64))
		return nil
	},
}

var convertWeightTo string

var convertWeightCmd = &cobra.Command{
	Use:   "weight <value> <kg|lb>",
	Short: "Convert a weight between kg and lb",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q", args[0])
		}
		from := strings.ToLower(strings.TrimSpace(args[1]))
		to := convertWeightTo
		if to == "" {
			to = "lb"
			if from == "lb" || from == "lbs" {
				to = "kg"
			}
		}
		got, err := service.ConvertWeight(v, from, to)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n",
			strconv.FormatFloat(v, 'f', -1, 64), from,
			strconv.FormatFloat(service.RoundTo(got, 1), 'f', -1, 64), to)
		return nil
	},
}

var convertParseHeightCmd = &cobra.Command{
	Use:   "parse-height <text>",
	Short: "Parse free-form feet/inches text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feet, inches, err := service.ParseFeetInches(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "feet=%d inches=%s\n", feet, strconv.FormatFloat(inches, 'f', -1, 64))
		return nil
	},
}

var convertNumberCmd = &cobra.Command{
	Use:   "number <n>",
	Short: "Format an integer with thousands separators",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), service.FormatNumberWithCommas(n))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.AddCommand(convertHeightCmd)
	convertCmd.AddCommand(convertWeightCmd)
	convertCmd.AddCommand(convertParseHeightCmd)
	convertCmd.AddCommand(convertNumberCmd)

	convertWeightCmd.Flags().StringVar(&convertWeightTo, "to", "", "Target unit (default: the other one)")
}
