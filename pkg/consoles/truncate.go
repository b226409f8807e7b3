package consoles

import (
	"strings"

	"consoled/pkg/models"
)

// Truncate applies the console's truncation policy to a message at write
// time. The hardLimit field is carried policy data and is not enforced
// here; under type "none" input is stored unmodified regardless of
// length. Unknown limit types are refused.
func Truncate(msg string, l models.Limits) (string, error) {
	// a stored negative value must degrade to "keep nothing", not crash
	limit := l.Value
	if limit < 0 {
		limit = 0
	}
	switch l.Type {
	case "characters":
		runes := []rune(msg)
		if len(runes) > limit {
			return string(runes[:limit]) + l.Marker, nil
		}
		return msg, nil
	case "words":
		words := strings.Split(msg, " ")
		if len(words) > limit {
			words = append(words[:limit], l.Marker)
			return strings.Join(words, " "), nil
		}
		return msg, nil
	case "none":
		return msg, nil
	default:
		return "", warnf("invalid_limit", "invalid limit type %q", l.Type)
	}
}
