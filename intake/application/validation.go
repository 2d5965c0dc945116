package application

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"form-intake/intake/domain"
	"form-intake/intake/sanitize"

	"github.com/go-playground/validator/v10"
)

// validate é seguro para uso concorrente e guarda o cache das structs.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// erros trazem o nome do campo no JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "email_shape", sanitize.IsValidEmailShape)
	mustRegister(v, "loose_email", sanitize.LooksLikeEmail)
	return v
}

func mustRegister(v *validator.Validate, tag string, check func(string) bool) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return check(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// firstInvalid valida form e devolve só o primeiro erro de campo, já como
// *domain.ValidationError. Os erros vêm na ordem dos campos da struct e cada
// campo para na primeira tag que falha.
func firstInvalid(form any, messages map[string]string) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate form: %w", err)
	}

	fe := fieldErrs[0]
	msg, ok := messages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = validationMessage(fe)
	}
	return domain.Invalid(fe.Field(), msg)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "email_shape", "loose_email":
		return "Please enter a valid email address"
	default:
		return "Invalid value"
	}
}
