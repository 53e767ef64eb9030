package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

type PasswordStrength string

const (
	StrengthWeak   PasswordStrength = "weak"
	StrengthMedium PasswordStrength = "medium"
	StrengthStrong PasswordStrength = "strong"

	minPasswordLength = 8
)

type PasswordReport struct {
	Score        int
	HasMinLength bool
	HasUpper     bool
	HasLower     bool
	HasDigit     bool
	HasSpecial   bool
	Strength     PasswordStrength
}

// Missing lists the unmet checks in display order.
func (r PasswordReport) Missing() []string {
	out := make([]string, 0, 5)
	if !r.HasMinLength {
		out = append(out, fmt.Sprintf("at least %d characters", minPasswordLength))
	}
	if !r.HasUpper {
		out = append(out, "an uppercase letter")
	}
	if !r.HasLower {
		out = append(out, "a lowercase letter")
	}
	if !r.HasDigit {
		out = append(out, "a number")
	}
	if !r.HasSpecial {
		out = append(out, "a special character")
	}
	return out
}

// ScorePassword awards one point per satisfied check. Failing any of the
// length/uppercase/digit checks is always weak; all five is strong.
func ScorePassword(password string) PasswordReport {
	r := PasswordReport{HasMinLength: utf8.RuneCountInString(password) >= minPasswordLength}
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			r.HasUpper = true
		case unicode.IsLower(c):
			r.HasLower = true
		case unicode.IsDigit(c):
			r.HasDigit = true
		case !unicode.IsSpace(c) && !unicode.IsLetter(c):
			r.HasSpecial = true
		}
	}
	for _, ok := range []bool{r.HasMinLength, r.HasUpper, r.HasLower, r.HasDigit, r.HasSpecial} {
		if ok {
			r.Score++
		}
	}

	switch {
	case !r.HasMinLength || !r.HasUpper || !r.HasDigit:
		r.Strength = StrengthWeak
	case r.Score == 5:
		r.Strength = StrengthStrong
	default:
		r.Strength = StrengthMedium
	}
	return r
}

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,30}$`)
)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return strings.Join(parts, "; ")
}

type RegistrationForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// ValidateRegistration returns nil when the form can be submitted.
func ValidateRegistration(form RegistrationForm) error {
	errs := FieldErrors{}
	if !usernamePattern.MatchString(strings.TrimSpace(form.Username)) {
		errs["username"] = "must be 3-30 letters, digits, '.', '_' or '-'"
	}
	if !ValidEmail(form.Email) {
		errs["email"] = "enter a valid email address"
	}
	report := ScorePassword(form.Password)
	if report.Strength == StrengthWeak {
		errs["password"] = "too weak; add " + strings.Join(report.Missing(), ", ")
	}
	if form.Password != form.ConfirmPassword {
		errs["confirm_password"] = "passwords do not match"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
