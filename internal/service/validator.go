package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RateCandidate is a raw observation in caller-chosen direction, before canonicalization.
type RateCandidate struct {
	From      string          `validate:"required,len=3,alpha"`
	To        string          `validate:"required,len=3,alpha,nefield=From"`
	Rate      decimal.Decimal `validate:"-"`
	Timestamp time.Time       `validate:"required"`
}

// Validator defines the interface for insert candidate validation.
type Validator interface {
	Validate(c RateCandidate) error
}

type candidateValidator struct {
	v *validator.Validate
}

// NewValidator creates a new candidate validator.
func NewValidator() Validator {
	return &candidateValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks codes, rate sign and hour alignment. Codes are expected upper-cased already.
func (cv *candidateValidator) Validate(c RateCandidate) error {
	if err := cv.v.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if c.Rate.Sign() <= 0 {
		return fmt.Errorf("%w: rate must be positive, got %s", ErrValidation, c.Rate.String())
	}
	if !IsTopOfHour(c.Timestamp) {
		return fmt.Errorf("%w: timestamp %s is not on the hour", ErrValidation, c.Timestamp.Format(time.RFC3339Nano))
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return strings.ToLower(fe.Field()) + " is required"
	case "len", "alpha":
		return strings.ToLower(fe.Field()) + " must be a 3-letter currency code"
	case "nefield":
		return "from and to must be different currencies"
	default:
		return fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag())
	}
}

// IsTopOfHour reports whether t has zero minutes, seconds and sub-seconds.
func IsTopOfHour(t time.Time) bool {
	return t.Equal(t.Truncate(time.Hour))
}
