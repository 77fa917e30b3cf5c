package validate

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// ValidatePrice accepts non-negative decimals, given either as decimal.Decimal
// or as their string form. The catalog file stores prices as float64, so a
// price float64 cannot hold exactly is rejected.
func ValidatePrice(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return validPrice(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return false
		}
		return validPrice(d)
	default:
		return false
	}
}

func validPrice(d decimal.Decimal) bool {
	return !d.IsNegative() && FitsFloat64(d)
}

// FitsFloat64 reports whether d survives a round trip through float64.
func FitsFloat64(d decimal.Decimal) bool {
	return decimal.NewFromFloat(d.InexactFloat64()).Equal(d)
}

func PriceValue(v reflect.Value) interface{} {
	n, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	return n.String()
}

// New returns the shared validator with the price tag registered.
func New() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(PriceValue, decimal.Decimal{})
		if err := validate.RegisterValidation("price", ValidatePrice, true); err != nil {
			panic(err)
		}
	})
	return validate
}
