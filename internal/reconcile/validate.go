package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ErrMalformedEvent marks a record that lacks a required field.
var ErrMalformedEvent = errors.New("malformed event")

var eventValidate = newEventValidator()

func newEventValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank rejects whitespace-only text.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// Validate checks that e carries every required field.
// The returned error wraps ErrMalformedEvent.
func Validate(e Event) error {
	err := eventValidate.Struct(e)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldName(fe))
	}
	return fmt.Errorf("%w: invalid %s", ErrMalformedEvent, strings.Join(fields, ", "))
}

func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "Timestamp":
		return "timestamp"
	case "Description":
		return "description"
	case "Action":
		return "action"
	case "Duration":
		return "duration"
	case "Source":
		return "source"
	}
	return strings.ToLower(fe.Field())
}

// Skipped describes a record excluded from reconciliation.
type Skipped struct {
	Source Source `json:"source" yaml:"source"`
	// Index is the record's position in its input sequence.
	Index  int    `json:"index" yaml:"index"`
	Reason string `json:"reason" yaml:"reason"`
}

// partitionValid splits events into the valid ones and a list of skipped
// records. Order of the valid events is preserved.
func partitionValid(events []Event, src Source) ([]Event, []Skipped) {
	valid := make([]Event, 0, len(events))
	var skipped []Skipped
	for i, e := range events {
		if e.Source == "" {
			e.Source = src
		}
		if err := Validate(e); err != nil {
			skipped = append(skipped, Skipped{Source: src, Index: i, Reason: err.Error()})
			continue
		}
		valid = append(valid, e)
	}
	return valid, skipped
}
