package helper

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json/form field names instead of Go struct field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// FieldErrors collects per-field messages for JsonValidationError.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Merge(other FieldErrors) {
	for k, msgs := range other {
		fe[k] = append(fe[k], msgs...)
	}
}

func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// ValidateStruct runs struct-tag validation and converts failures to field errors.
func ValidateStruct(s any) FieldErrors {
	out := FieldErrors{}
	err := validate.Struct(s)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("_", err.Error())
		return out
	}
	for _, fe := range verrs {
		out.Add(fe.Field(), messageFor(fe))
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if fe.Kind() == reflect.String {
			return "Ensure this value has at least " + fe.Param() + " characters."
		}
		return "Ensure this value is greater than or equal to " + fe.Param() + "."
	case "max":
		if fe.Kind() == reflect.String {
			return "Ensure this value has at most " + fe.Param() + " characters."
		}
		return "Ensure this value is less than or equal to " + fe.Param() + "."
	case "oneof":
		return "Select a valid choice. Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ") + "."
	case "uuid", "uuid4":
		return "Enter a valid ID."
	case "datetime":
		return "Enter a valid date."
	case "url", "http_url":
		return "Enter a valid URL."
	default:
		return "Invalid value."
	}
}

// FieldsError is returned by services when input fails a rule that needs the
// database, so controllers can answer 422 like ValidateStruct failures.
type FieldsError struct {
	Fields FieldErrors
}

func (e *FieldsError) Error() string {
	for field, msgs := range e.Fields {
		if len(msgs) > 0 {
			return field + ": " + msgs[0]
		}
	}
	return "validation failed"
}

func NewFieldError(field, msg string) error {
	return &FieldsError{Fields: FieldErrors{field: {msg}}}
}
