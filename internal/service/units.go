package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	cmPerInch     = 2.54
	inchesPerFoot = 12
	kgPerLb       = 0.45359237
)

func CmToFeetInches(cm float64) (int, float64) {
	totalInches := RoundTo(cm/cmPerInch, 1)
	feet := int(totalInches / inchesPerFoot)
	inches := RoundTo(totalInches-float64(feet*inchesPerFoot), 1)
	if inches >= inchesPerFoot {
		feet++
		inches = RoundTo(inches-inchesPerFoot, 1)
	}
	return feet, inches
}

func FeetInchesToCm(feet int, inches float64) float64 {
	return (float64(feet)*inchesPerFoot + inches) * cmPerInch
}

func KgToLb(kg float64) float64 { return kg / kgPerLb }

func LbToKg(lb float64) float64 { return lb * kgPerLb }

// RoundTo rounds half away from zero at the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	if decimals < 0 {
		decimals = 0
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func FormatFeetInches(feet int, inches float64) string {
	return fmt.Sprintf("%d'%s\"", feet, strconv.FormatFloat(RoundTo(inches, 1), 'f', -1, 64))
}

var (
	heightUnitWords = strings.NewReplacer(
		"feet", "'", "foot", "'", "ft", "'",
		"inches", "\"", "inch", "\"", "in", "\"",
		"''", "\"", "”", "\"", "’", "'",
	)
	feetMarkPattern = regexp.MustCompile(`^(\d+)\s*'\s*(?:(\d+(?:\.\d+)?)\s*"?)?$`)
	feetPairPattern = regexp.MustCompile(`^(\d+)\s+(\d+(?:\.\d+)?)\s*"?$`)
)

// ParseFeetInches accepts 5'10", 5' 10.5, 5ft 10in, 5 10 and 6'.
func ParseFeetInches(s string) (int, float64, error) {
	norm := heightUnitWords.Replace(strings.ToLower(strings.TrimSpace(s)))
	m := feetMarkPattern.FindStringSubmatch(norm)
	if m == nil {
		m = feetPairPattern.FindStringSubmatch(norm)
	}
	if m == nil {
		return 0, 0, fmt.Errorf("invalid height %q (expected e.g. 5'10\")", s)
	}
	feet, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid feet in %q", s)
	}
	inches := 0.0
	if m[2] != "" {
		inches, err = strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid inches in %q", s)
		}
	}
	if feet < 1 || feet > 8 {
		return 0, 0, fmt.Errorf("feet must be between 1 and 8")
	}
	if inches >= inchesPerFoot {
		return 0, 0, fmt.Errorf("inches must be less than 12")
	}
	return feet, inches, nil
}

// ConvertWeight converts between kg and lb.
func ConvertWeight(value float64, from, to string) (float64, error) {
	kg, err := ToKg(value, from)
	if err != nil {
		return 0, err
	}
	return WeightFromKg(kg, to)
}

func ToKg(value float64, unit string) (float64, error) {
	if value <= 0 {
		return 0, fmt.Errorf("weight must be > 0")
	}
	switch weightUnit(unit) {
	case "kg":
		return value, nil
	case "lb":
		return LbToKg(value), nil
	default:
		return 0, fmt.Errorf("invalid weight unit %q (use kg or lb)", unit)
	}
}

func WeightFromKg(weightKg float64, unit string) (float64, error) {
	switch weightUnit(unit) {
	case "kg":
		return weightKg, nil
	case "lb":
		return KgToLb(weightKg), nil
	default:
		return 0, fmt.Errorf("invalid weight unit %q (use kg or lb)", unit)
	}
}

func weightUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch u {
	case "", "kg", "kgs", "kilogram", "kilograms":
		return "kg"
	case "lb", "lbs", "pound", "pounds":
		return "lb"
	}
	return u
}
