// Package intake validates and normalizes raw lead batches before scoring.
package intake

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/sells-group/lead-cli/internal/model"
)

// Kind classifies a batch validation failure.
type Kind string

const (
	KindMissingField   Kind = "MissingField"
	KindEmptyBatch     Kind = "EmptyBatch"
	KindInvalidContact Kind = "InvalidContact"
)

// Sentinels matched by errors.Is against a *ValidationError.
var (
	ErrMissingField   = errors.New("intake: missing required field")
	ErrEmptyBatch     = errors.New("intake: empty batch")
	ErrInvalidContact = errors.New("intake: invalid contact")
)

// ValidatedMessage is reported for a batch that passes every check.
const ValidatedMessage = "Data validated successfully"

// MinContactDigits is the contiguous digit run a contact must contain.
const MinContactDigits = 10

var requiredColumns = []string{model.ColName, model.ColContact}

var contactDigits = regexp.MustCompile(fmt.Sprintf(`[0-9]{%d}`, MinContactDigits))

// Result is the validator's verdict: a flag plus a human-readable reason.
type Result struct {
	Valid   bool   `json:"valid"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
	// Invalid counts records failing the contact check.
	Invalid int `json:"invalid,omitempty"`
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Kind: r.Kind, Message: r.Message, Invalid: r.Invalid}
}

// ValidationError is a batch-fatal validation failure.
type ValidationError struct {
	Kind    Kind
	Message string
	Invalid int
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches the sentinel for the error's kind.
func (e *ValidationError) Is(target error) bool {
	switch e.Kind {
	case KindMissingField:
		return target == ErrMissingField
	case KindEmptyBatch:
		return target == ErrEmptyBatch
	case KindInvalidContact:
		return target == ErrInvalidContact
	}
	return false
}

// Validate checks a raw batch. Rules run in order and the first failure wins:
// required columns, at least one record, then every contact holding a run of
// MinContactDigits digits. One bad contact rejects the whole batch.
func Validate(b *model.Batch) Result {
	for _, col := range requiredColumns {
		if !b.HasColumn(col) {
			return Result{
				Kind:    KindMissingField,
				Message: fmt.Sprintf("Missing required column: %s", col),
			}
		}
	}

	if b.Len() == 0 {
		return Result{
			Kind:    KindEmptyBatch,
			Message: "The uploaded file contains no data",
		}
	}

	invalid := 0
	for _, l := range b.Leads {
		if !ValidContact(l.Contact) {
			invalid++
		}
	}
	if invalid > 0 {
		return Result{
			Kind: KindInvalidContact,
			Message: fmt.Sprintf("Invalid phone number format for %d leads. Please ensure all numbers have at least %d digits.",
				invalid, MinContactDigits),
			Invalid: invalid,
		}
	}

	return Result{Valid: true, Message: ValidatedMessage}
}

// ValidContact reports whether s contains MinContactDigits consecutive digits.
func ValidContact(s string) bool {
	return contactDigits.MatchString(s)
}
