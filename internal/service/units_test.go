package service_test

import (
	"math"
	"testing"

	"github.com/Snape93/nutrition-sub008/internal/service"
)

func TestFeetInchesRoundTrip(t *testing.T) {
	t.Parallel()
	for cm := 120.0; cm <= 220.0; cm += 0.7 {
		feet, inches := service.CmToFeetInches(cm)
		if inches < 0 || inches >= 12 {
			t.Fatalf("%.1fcm: inches out of range: %d'%.1f", cm, feet, inches)
		}
		back := service.FeetInchesToCm(feet, inches)
		if math.Abs(back-cm) > 0.13 {
			t.Fatalf("%.1fcm round-tripped to %.3fcm", cm, back)
		}
	}
}

func TestCmToFeetInchesCarriesTwelveInches(t *testing.T) {
	t.Parallel()
	feet, inches := service.CmToFeetInches(182.8)
	if feet != 6 || inches != 0 {
		t.Fatalf("expected 6'0\", got %d'%.1f\"", feet, inches)
	}
	feet, inches = service.CmToFeetInches(177.8)
	if feet != 5 || inches != 10 {
		t.Fatalf("expected 5'10\", got %d'%.1f\"", feet, inches)
	}
}

func TestWeightConversions(t *testing.T) {
	t.Parallel()
	if got := service.RoundTo(service.KgToLb(70), 1); got != 154.3 {
		t.Fatalf("expected 154.3 lb, got %.2f", got)
	}
	if got := service.RoundTo(service.LbToKg(180), 2); got != 81.65 {
		t.Fatalf("expected 81.65 kg, got %.2f", got)
	}
	v, err := service.ConvertWeight(100, "lbs", "kg")
	if err != nil {
		t.Fatalf("convert weight: %v", err)
	}
	if math.Abs(v-45.359237) > 1e-9 {
		t.Fatalf("expected 45.359237, got %f", v)
	}
	if _, err := service.ConvertWeight(100, "stone", "kg"); err == nil {
		t.Fatalf("expected unsupported unit error")
	}
	if _, err := service.ConvertWeight(-1, "kg", "lb"); err == nil {
		t.Fatalf("expected non-positive weight error")
	}
}

func TestRoundTo(t *testing.T) {
	t.Parallel()
	if got := service.RoundTo(2.346, 2); got != 2.35 {
		t.Fatalf("expected 2.35, got %v", got)
	}
	if got := service.RoundTo(-1.25, 1); got != -1.3 {
		t.Fatalf("expected -1.3, got %v", got)
	}
	if got := service.RoundTo(7.6, -1); got != 8 {
		t.Fatalf("expected negative decimals to round to integer, got %v", got)
	}
}

func TestParseFeetInches(t *testing.T) {
	t.Parallel()
	cases := map[string]struct {
		feet   int
		inches float64
	}{
		`5'10"`:           {5, 10},
		`5' 10.5`:         {5, 10.5},
		`5ft 10in`:        {5, 10},
		`5 feet 2 inches`: {5, 2},
		`5 10`:            {5, 10},
		`6'`:              {6, 0},
		`5'10''`:          {5, 10},
	}
	for in, want := range cases {
		feet, inches, err := service.ParseFeetInches(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if feet != want.feet || inches != want.inches {
			t.Fatalf("parse %q: expected %d'%v, got %d'%v", in, want.feet, want.inches, feet, inches)
		}
	}
	for _, bad := range []string{"", "tall", "5'13", "12'0", "510"} {
		if _, _, err := service.ParseFeetInches(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestFormatFeetInches(t *testing.T) {
	t.Parallel()
	if got := service.FormatFeetInches(5, 10); got != `5'10"` {
		t.Fatalf("unexpected format %q", got)
	}
	if got := service.FormatFeetInches(5, 10.54); got != `5'10.5"` {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestFormatNumberWithCommas(t *testing.T) {
	t.Parallel()
	cases := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		15736:   "15,736",
		1234567: "1,234,567",
		-15736:  "-15,736",
		100000:  "100,000",
	}
	for n, want := range cases {
		if got := service.FormatNumberWithCommas(n); got != want {
			t.Fatalf("FormatNumberWithCommas(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatCountdown(t *testing.T) {
	t.Parallel()
	cases := map[int]string{
		-5:   "0s",
		0:    "0s",
		42:   "42s",
		249:  "4m 09s",
		3900: "1h 05m",
	}
	for in, want := range cases {
		if got := service.FormatCountdown(in); got != want {
			t.Fatalf("FormatCountdown(%d) = %q, want %q", in, got, want)
		}
	}
}
