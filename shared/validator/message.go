package validator

import (
	"errors"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var templates = map[string]string{
	"required": "%f is required",
	"gt":       "%f must be greater than %p",
	"gte":      "%f must be greater than or equal to %p",
	"lte":      "%f must be less than or equal to %p",
	"min":      "%f must have at least %p",
	"max":      "%f must have at most %p",
	"len":      "%f must have length %p",
	"oneof":    "%f must be one of [%p]",
	"email":    "%f must be a valid email address",
	"uuid":     "%f must be a valid UUID",
	"datetime": "%f must match the format %p",
	"slot":     "%f must be one of the published time slots",
	"money":    "%f must be a non-negative amount with at most two decimals",
}

// jsonName reports fields by the name clients send.
func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	if name == "" {
		return field.Name
	}

	return name
}

// message renders every failed field, joined in declaration order.
func message(err error) string {
	var fieldErrors val.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrors))

	for _, fieldErr := range fieldErrors {
		template, ok := templates[fieldErr.Tag()]
		if !ok {
			template = "%f failed the " + fieldErr.Tag() + " check"
		}

		parts = append(parts, strings.NewReplacer("%f", fieldErr.Field(), "%p", fieldErr.Param()).Replace(template))
	}

	return strings.Join(parts, "; ")
}
