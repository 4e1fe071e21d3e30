// Package validation checks entities against their field constraints and
// reports failures as a field → message map.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"

	"dynamicapp/internal/models"
)

// messages maps "<StructField>.<tag>" to the user-facing message.
var messages = map[string]string{
	"Name.required":     "Name is required",
	"Name.notblank":     "Name is required",
	"Name.max":          "Name cannot exceed 100 characters",
	"Description.max":   "Description cannot exceed 500 characters",
	"Category.required": "Category is required",
	"Category.notblank": "Category is required",
	"Category.max":      "Category cannot exceed 50 characters",
	"Price.required":    "Price is required",
	"Price.pricerange":  "Price must be between 0.01 and 100,000",
	"Quantity.gte":      "Quantity must be between 0 and 10,000",
	"Quantity.lte":      "Quantity must be between 0 and 10,000",
}

// Price bounds, both inclusive.
var (
	MinPrice = decimal.RequireFromString("0.01")
	MaxPrice = decimal.NewFromInt(100000)
)

// Validator wraps a configured go-playground validator.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that understands decimal.Decimal fields and the
// notblank rule, and reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("validation: register notblank: %v", err))
	}

	v.RegisterStructValidation(entityPrice, models.DynamicEntity{})

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	return &Validator{validate: v}
}

// entityPrice compares Price against its bounds as a decimal, so values
// just outside a bound are not lost to float rounding.
func entityPrice(sl validator.StructLevel) {
	e := sl.Current().Interface().(models.DynamicEntity)
	if e.Price.IsZero() {
		return
	}
	if e.Price.LessThan(MinPrice) || e.Price.GreaterThan(MaxPrice) {
		sl.ReportError(e.Price, "price", "Price", "pricerange", "")
	}
}

// Entity validates e. It returns nil when every constraint holds.
func (v *Validator) Entity(e *models.DynamicEntity) map[string]string {
	if e == nil {
		return map[string]string{"entity": "Entity is required"}
	}
	return v.Struct(e)
}

// Struct validates any tagged struct and returns a field → message map,
// or nil when it is valid.
func (v *Validator) Struct(s interface{}) map[string]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"": err.Error()}
	}

	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		if _, seen := errorMessages[e.Field()]; seen {
			continue
		}
		msg, ok := messages[e.StructField()+"."+e.Tag()]
		if !ok {
			msg = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		errorMessages[e.Field()] = msg
	}
	return errorMessages
}
