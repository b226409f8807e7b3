package consoles

import (
	"errors"
	"fmt"

	"consoled/pkg/store"
	"consoled/pkg/telemetry"
)

// ErrNotFound aliases the store sentinel for callers that never import
// the store directly.
var ErrNotFound = store.ErrNotFound

// Warning is a user-facing refusal: the mutation was not attempted and
// the store is unchanged. Handlers render it as a warning, not a crash.
type Warning struct {
	Reason string
	Msg    string
}

func (w *Warning) Error() string { return w.Msg }

func warnf(reason, format string, args ...any) error {
	telemetry.Warnings.WithLabelValues(reason).Inc()
	return &Warning{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// AsWarning unwraps err into a Warning when it is one.
func AsWarning(err error) (*Warning, bool) {
	var w *Warning
	if errors.As(err, &w) {
		return w, true
	}
	return nil, false
}
