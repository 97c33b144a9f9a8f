package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init configures the validator used by Gin's binding: errors are keyed by
// the json, uri or form tag name and the storefront aliases are registered.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register applies the tag name func and aliases to v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(fieldName)
	// catalog ids are lowercase slugs
	v.RegisterAlias("productid", "min=1,max=64,lowercase,excludesall=/?#%")
	v.RegisterAlias("searchq", "max=100")
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "uri", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "productid":
		return "must be a catalog product id"
	case "searchq":
		return "must be at most 100 characters"
	case "lowercase":
		return "must be lowercase"
	case "excludesall":
		return "must not contain any of '" + param + "'"
	case "oneof":
		return "must be one of [" + strings.Join(strings.Fields(param), ", ") + "]"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
