package transport

import (
	"reflect"

	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// RegisterValidations adds the pipeline's custom tags to v.
func RegisterValidations(v *validator.Validator) error {
	v.RegisterCustomTypeFunc(optionalInt64Value, OptionalInt64{})
	return v.RegisterValidation("case_stage", func(fl playground.FieldLevel) bool {
		return domain.IsKnownStage(fl.Field().String())
	})
}

// optionalInt64Value exposes a present, non-null OptionalInt64 to the
// numeric rules; omitted and null values hit omitempty.
func optionalInt64Value(field reflect.Value) interface{} {
	o, ok := field.Interface().(OptionalInt64)
	if !ok || !o.Set || o.Value == nil {
		return nil
	}
	return *o.Value
}
