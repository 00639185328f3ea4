package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"natillera-miahorro/internal/core/domain"

	"github.com/go-playground/validator/v10"
)

// phoneRegex accepts local or international numbers with optional separators
var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || phoneRegex.MatchString(value)
	})

	return v
}

// Struct validates s and returns the first failure as a domain validation error
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return domain.Invalidf("Datos inválidos")
	}
	return domain.NewError(domain.ErrInvalidInput, message(validationErrors[0]))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio", fe.Field())
	case "email":
		return fmt.Sprintf("El campo %s no es un correo válido", fe.Field())
	case "min":
		return fmt.Sprintf("El campo %s debe tener al menos %s caracteres", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("El campo %s admite máximo %s caracteres", fe.Field(), fe.Param())
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("El campo %s está fuera de rango", fe.Field())
	case "oneof":
		return fmt.Sprintf("El campo %s debe ser uno de: %s", fe.Field(), fe.Param())
	case "phone":
		return fmt.Sprintf("El campo %s no es un teléfono válido", fe.Field())
	default:
		return fmt.Sprintf("El campo %s no es válido", fe.Field())
	}
}
