package validation

import (
	"errors"
	"fmt"
	"strings"

	"consoled/pkg/models"
)

// Limit types accepted by the truncation policy.
var limitTypes = []string{"characters", "words", "none"}

// ValidHex reports whether s is a seven-character #RRGGBB color. Malformed
// colors are rejected before merge rather than stored.
func ValidHex(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// ValidateStyling checks the color fields of a styling block.
func ValidateStyling(s models.Styling) error {
	var errs []string
	if s.BG != "" && !ValidHex(s.BG) {
		errs = append(errs, fmt.Sprintf("invalid background color %q", s.BG))
	}
	if s.FG != "" && !ValidHex(s.FG) {
		errs = append(errs, fmt.Sprintf("invalid foreground color %q", s.FG))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ValidateLimits checks the truncation policy block.
func ValidateLimits(l models.Limits) error {
	if l.Value < 0 {
		return fmt.Errorf("limit value must not be negative, got %d", l.Value)
	}
	for _, t := range limitTypes {
		if l.Type == t {
			return nil
		}
	}
	return fmt.Errorf("invalid limit type %q", l.Type)
}

// ValidateMessage checks that a message carries text or media and an
// author reference.
func ValidateMessage(m models.Message) error {
	var errs []string
	if m.Empty() {
		errs = append(errs, "message requires text or media")
	}
	if m.User.ID == "" {
		errs = append(errs, "message user id is required")
	}
	if m.Media != nil && m.Media.FilePath == "" {
		errs = append(errs, "media requires a file path")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ValidateConsole checks the fields a config-style update may set.
func ValidateConsole(c models.Console) error {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	if err := ValidateLimits(c.Limits); err != nil {
		errs = append(errs, err.Error())
	}
	if err := ValidateStyling(c.Styling); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
