package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern  = regexp.MustCompile(`^\+?[0-9]+$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)

	schemaOnce sync.Once
	schema     *validator.Validate
)

func orderSchema() *validator.Validate {
	schemaOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "digits", func(fl validator.FieldLevel) bool {
			return digitsPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "order_status", func(fl validator.FieldLevel) bool {
			return Status(fl.Field().String()).Valid()
		})
		mustRegister(v, "payment_method", func(fl validator.FieldLevel) bool {
			return PaymentMethod(fl.Field().String()).Valid()
		})
		schema = v
	})
	return schema
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// validateStruct runs the schema and converts violations to field paths such as
// "items[0].quantity" or "phone". Named struct fields listed in except are skipped.
func validateStruct(v any, except ...string) *ValidationError {
	verr := &ValidationError{}
	var err error
	if len(except) > 0 {
		err = orderSchema().StructExcept(v, except...)
	} else {
		err = orderSchema().Struct(v)
	}
	if err == nil {
		return verr
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Add(fieldPath(fe.Namespace()), ruleMessage(fe))
	}
	return verr
}

// fieldPath drops the root struct name. Contact fields are flat on the wire, so their
// "contact." segment is dropped too.
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		namespace = namespace[idx+1:]
	}
	return strings.TrimPrefix(namespace, "contact.")
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return "must not be negative"
	case "lte":
		return "must not exceed " + MaxAmount.String()
	case "phone":
		return "must contain digits with an optional leading +"
	case "digits":
		return "must contain digits only"
	case "order_status":
		return ErrInvalidStatus.Error()
	case "payment_method":
		return ErrInvalidPaymentMethod.Error()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ItemField builds the path of a line item attribute, matching schema violations.
func ItemField(index int, name string) string {
	return fmt.Sprintf("items[%d].%s", index, name)
}
