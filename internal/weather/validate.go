package weather

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidReading  = errors.New("invalid reading")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Reject NaN and ±Inf; JSON cannot carry them but providers can.
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.Float32, reflect.Float64:
			x := f.Float()
			return !math.IsNaN(x) && !math.IsInf(x, 0)
		default:
			return true
		}
	})
	return v
}

// Validator exposes the shared validator so request types elsewhere get the
// same custom tags.
func Validator() *validator.Validate {
	return validate
}

// ValidateLocation checks coordinates and optional fields of loc.
func ValidateLocation(loc Location) error {
	if err := validate.Struct(loc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	return nil
}

// ValidateReading checks that every present measurement is finite and in range.
// A non-finite sample also matches volatility.ErrNonFinite.
func ValidateReading(r Reading) error {
	if err := VolatilityInput([]Reading{r}).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReading, err)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReading, err)
	}
	return nil
}
