package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bizrwanda/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s against its `validate` tags and returns a field
// validation AppError keyed by json field names, or nil.
func Struct(s interface{}) error {
	fields := map[string]string{}
	Collect(validate.Struct(s), fields)
	if len(fields) > 0 {
		return models.NewFieldValidationError(fields)
	}
	return nil
}

// Check runs the shared validator over s and merges failures into fields.
func Check(s interface{}, fields map[string]string) {
	Collect(validate.Struct(s), fields)
}

// Collect merges validator failures into fields, keeping the first message
// reported for each field.
func Collect(err error, fields map[string]string) {
	if err == nil {
		return
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fields["_"] = err.Error()
		return
	}
	for _, fe := range validationErrors {
		key := fieldPath(fe)
		if _, exists := fields[key]; exists {
			continue
		}
		fields[key] = message(fe)
	}
}

// fieldPath strips the struct name from the validator namespace, so
// "AuctionDetails.auctionItems[1]" becomes "auctionItems[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		switch fe.Param() {
		case "2006-01-02":
			return "must be a date formatted YYYY-MM-DD"
		case "15:04":
			return "must be a time formatted HH:MM"
		}
		return "must match " + fe.Param()
	case "alpha":
		return "must contain letters only"
	case "numeric":
		return "must be numeric"
	case "url", "http_url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
