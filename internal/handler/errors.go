package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tienda/internal/service"
)

func init() {
	// Report validation failures under the json field name, not the Go
	// struct field name, so clients see the keys they sent.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	}
}

// fieldErrorsFromBinding converts a binding failure into the
// field-to-messages map the API returns for validation errors.
func fieldErrorsFromBinding(err error) service.FieldErrors {
	fieldErrs := service.FieldErrors{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fieldErrs.Add("body", "The request body is malformed.")
		return fieldErrs
	}

	for _, fe := range verrs {
		fieldErrs.Add(fieldPath(fe), validationMessage(fe))
	}
	return fieldErrs
}

// fieldPath rewrites the validator namespace into dotted form:
// "bulkProductsRequest.products[2].sku" becomes "products.2.sku".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	ns = strings.ReplaceAll(ns, "]", "")
	return ns
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must have at least %s items.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}
