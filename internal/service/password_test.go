package service_test

import (
	"errors"
	"testing"

	"github.com/Snape93/nutrition-sub008/internal/service"
)

func TestScorePasswordAllChecks(t *testing.T) {
	t.Parallel()
	r := service.ScorePassword("Tr4ck!ngMeals")
	if r.Score != 5 || r.Strength != service.StrengthStrong {
		t.Fatalf("expected strong score 5, got %+v", r)
	}
	if len(r.Missing()) != 0 {
		t.Fatalf("expected nothing missing, got %v", r.Missing())
	}
}

func TestScorePasswordCoreFailuresAreWeak(t *testing.T) {
	t.Parallel()
	cases := map[string]int{
		"alllower!1":    4,
		"NoDigitsHere!": 4,
		"Ab1!":          4,
		"abcdefgh":      2,
		"":              0,
	}
	for pw, score := range cases {
		r := service.ScorePassword(pw)
		if r.Score != score {
			t.Fatalf("%q: expected score %d, got %d", pw, score, r.Score)
		}
		if r.Strength != service.StrengthWeak {
			t.Fatalf("%q: expected weak, got %s", pw, r.Strength)
		}
	}
}

func TestScorePasswordEightRunesIsEnough(t *testing.T) {
	t.Parallel()
	if r := service.ScorePassword("short1A!"); r.Strength != service.StrengthStrong {
		t.Fatalf("expected 8-character password with all classes to be strong, got %+v", r)
	}
}

func TestScorePasswordMedium(t *testing.T) {
	t.Parallel()
	for _, pw := range []string{"Password1", "PASSWORD1!", "PASSWORD12"} {
		r := service.ScorePassword(pw)
		if r.Strength != service.StrengthMedium {
			t.Fatalf("%q: expected medium, got %+v", pw, r)
		}
	}
}

func TestValidateRegistration(t *testing.T) {
	t.Parallel()
	err := service.ValidateRegistration(service.RegistrationForm{
		Username:        "ana_b",
		Email:           "ana@example.com",
		Password:        "Tr4ck!ngMeals",
		ConfirmPassword: "Tr4ck!ngMeals",
	})
	if err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}

	err = service.ValidateRegistration(service.RegistrationForm{
		Username:        "a",
		Email:           "not-an-email",
		Password:        "weak",
		ConfirmPassword: "weaker",
	})
	var fields service.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	for _, key := range []string{"username", "email", "password", "confirm_password"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("expected error for %s, got %v", key, fields)
		}
	}
}
