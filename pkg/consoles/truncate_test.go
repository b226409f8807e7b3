package consoles

import (
	"strings"
	"testing"

	"consoled/pkg/models"
)

func TestTruncateCharacters(t *testing.T) {
	l := models.Limits{Type: "characters", Value: 5, Marker: "..."}
	got, err := Truncate("Hello world", l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello..." {
		t.Fatalf("got %q, want %q", got, "Hello...")
	}
	// at or under the limit the message is untouched
	got, _ = Truncate("Hello", l)
	if got != "Hello" {
		t.Fatalf("got %q, want %q", got, "Hello")
	}
}

func TestTruncateWords(t *testing.T) {
	l := models.Limits{Type: "words", Value: 2, Marker: "..."}
	got, err := Truncate("the quick brown fox", l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the quick ..." {
		t.Fatalf("got %q, want %q", got, "the quick ...")
	}
	got, _ = Truncate("two words", l)
	if got != "two words" {
		t.Fatalf("got %q, want %q", got, "two words")
	}
}

func TestTruncateNegativeValue(t *testing.T) {
	got, err := Truncate("hello", models.Limits{Type: "characters", Value: -1, Marker: "..."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "..." {
		t.Fatalf("got %q, want %q", got, "...")
	}
	got, err = Truncate("the quick fox", models.Limits{Type: "words", Value: -1, Marker: "..."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "..." {
		t.Fatalf("got %q, want %q", got, "...")
	}
}

func TestTruncateCharactersMultibyte(t *testing.T) {
	l := models.Limits{Type: "characters", Value: 2, Marker: "..."}
	got, err := Truncate("日本語のます", l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "日本..." {
		t.Fatalf("got %q, want %q", got, "日本...")
	}
}

func TestTruncateNoneIgnoresLength(t *testing.T) {
	l := models.Limits{Type: "none", Marker: "...", HardLimit: 2048}
	long := strings.Repeat("x", 5000)
	got, err := Truncate(long, l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != long {
		t.Fatalf("type none must store input unmodified regardless of length")
	}
}

func TestTruncateUnknownType(t *testing.T) {
	_, err := Truncate("hi", models.Limits{Type: "sentences"})
	if err == nil {
		t.Fatalf("expected error for unknown limit type")
	}
	w, ok := AsWarning(err)
	if !ok || w.Reason != "invalid_limit" {
		t.Fatalf("expected invalid_limit warning, got %v", err)
	}
}
