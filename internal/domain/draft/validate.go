package draft

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// submitRules lists the header fields required before a document may leave DRAFT.
type submitRules struct {
	RequesterID  string     `field:"requester" validate:"required"`
	CostCenterID string     `field:"costCenter" validate:"required"`
	Purpose      string     `field:"purpose" validate:"required"`
	DueDate      *time.Time `field:"dueDate" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("field")
	})
	return v
}

// Validate checks the draft. With strict set (submission) every required
// field is enforced; otherwise only values that can never be saved are
// rejected. All problems are reported together.
func (d *Draft) Validate(strict bool) error {
	verr := &ValidationError{}

	if !d.Kind.IsValid() {
		verr.Add("kind", "is not a known document type")
	}
	if d.IsMulticurrency && d.BaseCurrency != d.QuoteCurrency && !d.ExchangeRate.IsPositive() {
		verr.Add(FieldExchangeRate, "must be greater than zero")
	}

	if strict {
		rules := submitRules{
			RequesterID:  strings.TrimSpace(d.RequesterID),
			CostCenterID: strings.TrimSpace(d.CostCenterID),
			Purpose:      strings.TrimSpace(d.Purpose),
			DueDate:      d.DueDate,
		}
		if err := validate.Struct(rules); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				return err
			}
			for _, fe := range fieldErrs {
				verr.Add(fe.Field(), "is required")
			}
		}
		if len(d.Lines.NonEmpty()) == 0 {
			verr.Add("lines", "needs at least one non-empty line")
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
