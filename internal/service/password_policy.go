package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/bossshopp/internal/config"
)

// PasswordPolicyError 列出密码未满足的全部要求
type PasswordPolicyError struct {
	Missing []string
}

func (e *PasswordPolicyError) Error() string {
	return "password must contain " + strings.Join(e.Missing, ", ")
}

// Is 使 errors.Is(err, ErrWeakPassword) 成立
func (e *PasswordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

type passwordTraits struct {
	length  int
	upper   bool
	lower   bool
	digit   bool
	special bool
}

func inspectPassword(password string) passwordTraits {
	var t passwordTraits
	for _, r := range password {
		t.length++
		switch {
		case unicode.IsUpper(r):
			t.upper = true
		case unicode.IsLower(r):
			t.lower = true
		case unicode.IsDigit(r):
			t.digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			t.special = true
		}
	}
	return t
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	t := inspectPassword(password)
	var missing []string
	if policy.MinLength > 0 && t.length < policy.MinLength {
		missing = append(missing, fmt.Sprintf("at least %d characters", policy.MinLength))
	}
	if policy.RequireUpper && !t.upper {
		missing = append(missing, "an uppercase letter")
	}
	if policy.RequireLower && !t.lower {
		missing = append(missing, "a lowercase letter")
	}
	if policy.RequireNumber && !t.digit {
		missing = append(missing, "a digit")
	}
	if policy.RequireSpecial && !t.special {
		missing = append(missing, "a special character")
	}
	if len(missing) == 0 {
		return nil
	}
	return &PasswordPolicyError{Missing: missing}
}
