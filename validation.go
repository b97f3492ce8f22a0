package main

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validatorsOnce sync.Once

// registerValidators adds the domain tags to gin's validator engine and makes
// field errors report JSON names. Safe to call more than once.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin validator engine is not go-playground/validator")
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		must := func(tag string, fn validator.Func) {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("register %s validator: %v", tag, err))
			}
		}
		must("notblank", validators.NotBlank)
		must("foodunit", func(fl validator.FieldLevel) bool { return validUnits[fl.Field().String()] })
		must("mealtype", func(fl validator.FieldLevel) bool { return validMealTypes[fl.Field().String()] })
		must("datekey", func(fl validator.FieldLevel) bool { return isDateKey(fl.Field().String()) })
	})
}

// bindErrorMessage turns a binding error into a client-facing message naming
// the first offending field.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " must not be blank"
	case "foodunit":
		return field + " must be one of: piece, bowl, cup, ml, bar, can"
	case "mealtype":
		return field + " must be one of: " + strings.Join(mealTypes, ", ")
	case "datekey":
		return field + " must be a date in YYYY-MM-DD format"
	case "oneof":
		return field + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return field + " must be a valid email address"
	case "gt", "gte", "lt", "lte", "min", "max":
		return fmt.Sprintf("%s must be %s %s", field, boundWords[fe.Tag()], fe.Param())
	default:
		return field + " is invalid"
	}
}

var boundWords = map[string]string{
	"gt":  "greater than",
	"gte": "at least",
	"lt":  "less than",
	"lte": "at most",
	"min": "at least",
	"max": "at most",
}
