package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ApplyInputs folds the values of the visible inputs into target. A value
// that is empty after trimming deletes the key; keys without an input are
// left untouched.
func ApplyInputs(target map[string]string, inputs map[string]string) {
	for key, value := range inputs {
		value = strings.TrimSpace(value)
		if value == "" {
			delete(target, key)
			continue
		}
		target[key] = value
	}
}

// Saver persists the two mappings.
type Saver interface {
	SaveNotes(ctx context.Context, notes map[string]string) error
	SaveScheduled(ctx context.Context, scheduled map[string]string) error
}

// Flush sends notes, then scheduled dates. It stops at the first failure;
// the caller's maps are never rolled back.
func Flush(ctx context.Context, s Saver, notes, scheduled map[string]string) error {
	if err := s.SaveNotes(ctx, notes); err != nil {
		return errors.Wrap(err, "save notes")
	}
	if err := s.SaveScheduled(ctx, scheduled); err != nil {
		return errors.Wrap(err, "save scheduled dates")
	}
	return nil
}

// SaveStatus drives the save button.
type SaveStatus int

const (
	SaveIdle SaveStatus = iota
	SaveInProgress
	SaveSucceeded
	SaveFailed
)

// Label is the button text for the status.
func (s SaveStatus) Label() string {
	switch s {
	case SaveInProgress:
		return "💾 Saving..."
	case SaveSucceeded:
		return "✓ Saved!"
	case SaveFailed:
		return "✗ Error"
	}
	return "💾 Save Notes"
}

// Class is the extra button class for the status.
func (s SaveStatus) Class() string {
	switch s {
	case SaveSucceeded:
		return "saved"
	case SaveFailed:
		return "save-error"
	}
	return ""
}

// Disabled reports whether the button accepts clicks.
func (s SaveStatus) Disabled() bool {
	return s != SaveIdle
}

// ResetAfter is how long a finished status stays before going back to idle.
// Zero means the status does not revert on its own.
func (s SaveStatus) ResetAfter() time.Duration {
	switch s {
	case SaveSucceeded:
		return 800 * time.Millisecond
	case SaveFailed:
		return 2 * time.Second
	}
	return 0
}
