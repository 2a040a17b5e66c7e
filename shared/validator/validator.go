package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"voyage/shared/failure"

	val "github.com/go-playground/validator/v10"
)

const (
	centsPerUnit  = 100
	centTolerance = 1e-6
)

var validate *val.Validate

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	err := validate.RegisterValidation("empty", func(fl val.FieldLevel) bool {
		return fl.Field().IsZero()
	})
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("money", func(fl val.FieldLevel) bool {
		cents := fl.Field().Float() * centsPerUnit

		return cents >= 0 && math.Abs(cents-math.Round(cents)) < centTolerance
	})
	if err != nil {
		panic(err)
	}
}

// RegisterString adds a custom tag that validates string fields with fn.
// Domain packages use it for catalog-backed tags such as slot labels.
func RegisterString(tag string, fn func(value string) bool) {
	err := validate.RegisterValidation(tag, func(fl val.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)

	err := decoder.Decode(data)
	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)
	if err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)
	if err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
