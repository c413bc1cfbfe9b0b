package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"todoapi/internal/core/model/response"
)

var (
	Validator  *validator.Validate
	Translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())

	// Field errors are reported with the JSON name the client sent.
	Validator.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")

		if name == "-" {
			return ""
		}

		if name == "" {
			return field.Name
		}

		return name
	})

	if err := Validator.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	if err := Validator.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}

	english := en.New()
	uni := ut.New(english, english)

	var found bool
	Translator, found = uni.GetTranslator("en")

	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(Validator, Translator); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

// maxBytes bounds the encoded length of a string. bcrypt rejects passwords
// longer than 72 bytes whatever their rune count.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())

	if err != nil {
		return false
	}

	return len(fl.Field().String()) <= limit
}

func addCustomTranslations() {
	register := func(tag, text string, withParam bool) {
		Validator.RegisterTranslation(tag, Translator, func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			var t string

			if withParam {
				t, _ = ut.T(tag, fe.Field(), fe.Param())
			} else {
				t, _ = ut.T(tag, fe.Field())
			}

			return t
		})
	}

	register("required", "{0} is required", false)
	register("notblank", "{0} must not be blank", false)
	register("email", "{0} must be a valid email", false)
	register("min", "{0} must be at least {1} characters long", true)
	register("max", "{0} must be at most {1} characters long", true)
	register("maxbytes", "{0} must be at most {1} bytes long", true)
}

func FormatValidationErrors(err error) []response.ValidationError {
	var errs []response.ValidationError
	var validationErrors validator.ValidationErrors

	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			errs = append(errs, response.ValidationError{
				Field:   fieldError.Field(),
				Message: fieldError.Translate(Translator),
			})
		}
	}

	return errs
}
