package validation

import (
	"testing"

	"consoled/pkg/models"
)

func TestValidHex(t *testing.T) {
	good := []string{"#000000", "#ffffff", "#AbCdEf", "#123456"}
	for _, s := range good {
		if !ValidHex(s) {
			t.Fatalf("expected %q valid", s)
		}
	}
	bad := []string{"", "#fff", "000000", "#gggggg", "#1234567", "# 12345"}
	for _, s := range bad {
		if ValidHex(s) {
			t.Fatalf("expected %q invalid", s)
		}
	}
}

func TestValidateStyling(t *testing.T) {
	ok := models.Styling{BG: "#000000", FG: "#ffffff"}
	if err := ValidateStyling(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// empty colors are allowed; only malformed ones are rejected
	if err := ValidateStyling(models.Styling{}); err != nil {
		t.Fatalf("unexpected error for empty styling: %v", err)
	}
	if err := ValidateStyling(models.Styling{BG: "red"}); err == nil {
		t.Fatalf("expected error for named color")
	}
}

func TestValidateLimits(t *testing.T) {
	for _, typ := range []string{"characters", "words", "none"} {
		if err := ValidateLimits(models.Limits{Type: typ}); err != nil {
			t.Fatalf("type %q rejected: %v", typ, err)
		}
	}
	if err := ValidateLimits(models.Limits{Type: "sentences"}); err == nil {
		t.Fatalf("expected error for unknown limit type")
	}
	if err := ValidateLimits(models.Limits{Type: "characters", Value: -1}); err == nil {
		t.Fatalf("expected error for negative limit value")
	}
}

func TestValidateMessage(t *testing.T) {
	if err := ValidateMessage(models.Message{Text: "hi", User: models.UserRef{ID: "p1"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateMessage(models.Message{
		Media: &models.Media{FilePath: "img.png", FileType: "image"},
		User:  models.UserRef{ID: "p1"},
	}); err != nil {
		t.Fatalf("media-only message rejected: %v", err)
	}
	if err := ValidateMessage(models.Message{User: models.UserRef{ID: "p1"}}); err == nil {
		t.Fatalf("expected error for empty message")
	}
	if err := ValidateMessage(models.Message{Text: "hi"}); err == nil {
		t.Fatalf("expected error for missing user id")
	}
	if err := ValidateMessage(models.Message{
		Media: &models.Media{FileType: "image"},
		User:  models.UserRef{ID: "p1"},
	}); err == nil {
		t.Fatalf("expected error for media without path")
	}
}

func TestValidateConsole(t *testing.T) {
	c := models.Console{
		Name:    "board",
		Limits:  models.Limits{Type: "none"},
		Styling: models.Styling{BG: "#000000", FG: "#ffffff"},
	}
	if err := ValidateConsole(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Name = ""
	c.Limits.Type = "sentences"
	err := ValidateConsole(c)
	if err == nil {
		t.Fatalf("expected combined validation error")
	}
}
