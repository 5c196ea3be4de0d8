package response

import (
	"encoding/json"
	"errors"
	"reflect"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
)

// Validation writes a field-keyed 400 when err carries validation.Errors
// and reports whether it did.
func Validation(c *gin.Context, err error) bool {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		ValidationError(c, fieldErrs)
		return true
	}
	return false
}

// FieldError builds a single-field report, e.g. FieldError("email", "already taken").
func FieldError(field, message string) validation.Errors {
	return validation.Errors{field: errors.New(message)}
}

// BindError renders a request body decoding failure. A well-formed body
// with a wrong-typed value is reported against its JSON path; anything
// else is a plain BAD_REQUEST.
func BindError(c *gin.Context, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		ValidationError(c, FieldError(typeErr.Field, typeMessage(typeErr.Type)))
		return
	}
	BadRequest(c, "Invalid request body")
}

func typeMessage(t reflect.Type) string {
	if t == nil {
		return "invalid type"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be an integer"
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be a boolean"
	case reflect.Slice, reflect.Array:
		return "must be a list"
	case reflect.Struct, reflect.Map:
		return "must be an object"
	default:
		return "invalid type"
	}
}
