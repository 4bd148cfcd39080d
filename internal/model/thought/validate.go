package thought

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MinMessageLength = 5
	MaxMessageLength = 140
)

// messageRules counts runes, not bytes.
var messageRules = fmt.Sprintf("required,min=%d,max=%d", MinMessageLength, MaxMessageLength)

var validate = newValidator()

type draft struct {
	Message string `json:"message"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidationMapRules(map[string]string{"Message": messageRules}, draft{})
	return v
}

// Violation describes one failed rule.
type Violation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidationError lists every rule a message broke.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, describe(v))
	}
	return strings.Join(parts, "; ")
}

// Validate trims the message and checks it against the length rules.
// The trimmed message is returned so callers persist exactly what was checked.
func Validate(message string) (string, error) {
	d := draft{Message: strings.TrimSpace(message)}
	if err := validate.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return "", err
		}
		verr := &ValidationError{}
		for _, fe := range fieldErrs {
			verr.Violations = append(verr.Violations, Violation{
				Field: strings.ToLower(fe.Field()),
				Rule:  fe.Tag(),
				Param: fe.Param(),
			})
		}
		return "", verr
	}
	return d.Message, nil
}

// DuplicateViolation is reported when the store rejects a non-unique message.
func DuplicateViolation() *ValidationError {
	return &ValidationError{Violations: []Violation{{Field: "message", Rule: "unique"}}}
}

func describe(v Violation) string {
	switch v.Rule {
	case "required":
		return fmt.Sprintf("%s is required", v.Field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", v.Field, v.Param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", v.Field, v.Param)
	case "unique":
		return fmt.Sprintf("%s must be unique", v.Field)
	default:
		return fmt.Sprintf("%s is invalid", v.Field)
	}
}
