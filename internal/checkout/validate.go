package checkout

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/nmaisuradze/storefront/pkg/errors"
)

// Form carries the checkout fields exactly as the remote API names them.
type Form struct {
	Name    string `json:"name" validate:"required,min=2,alpha_space"`
	Surname string `json:"surname" validate:"required,min=2,alpha_space"`
	Email   string `json:"email" validate:"required,simple_email"`
	Address string `json:"address" validate:"required,min=3"`
	ZipCode string `json:"zip_code" validate:"required,digits,min=3"`
}

// Field names as rendered in the form and in server error payloads.
const (
	FieldName    = "name"
	FieldSurname = "surname"
	FieldEmail   = "email"
	FieldAddress = "address"
	FieldZipCode = "zip_code"
)

var structFieldByName = map[string]string{
	FieldName:    "Name",
	FieldSurname: "Surname",
	FieldEmail:   "Email",
	FieldAddress: "Address",
	FieldZipCode: "ZipCode",
}

var (
	alphaSpaceRe  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	simpleEmailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitsRe      = regexp.MustCompile(`^\d+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	mustRegister(v, "alpha_space", alphaSpaceRe)
	mustRegister(v, "simple_email", simpleEmailRe)
	mustRegister(v, "digits", digitsRe)
	return v
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// ValidateForm checks every field and returns the full error set, or nil
// when the form is well-formed. Values are trimmed before validation.
func ValidateForm(form Form) pkgerrors.FieldErrors {
	errs, _ := collectErrors(validate.Struct(trimmed(form)))
	return errs
}

// ValidateField checks a single field by its form name, for blur handling.
// It returns the message and true when the field is invalid.
func ValidateField(form Form, field string) (string, bool) {
	structField, ok := structFieldByName[field]
	if !ok {
		return "", false
	}
	errs, _ := collectErrors(validate.StructPartial(trimmed(form), structField))
	msg, bad := errs[field]
	return msg, bad
}

func trimmed(form Form) Form {
	return Form{
		Name:    strings.TrimSpace(form.Name),
		Surname: strings.TrimSpace(form.Surname),
		Email:   strings.TrimSpace(form.Email),
		Address: strings.TrimSpace(form.Address),
		ZipCode: strings.TrimSpace(form.ZipCode),
	}
}

func collectErrors(err error) (pkgerrors.FieldErrors, bool) {
	if err == nil {
		return nil, true
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.FieldErrors{"form": "is invalid"}, false
	}
	fields := pkgerrors.FieldErrors{}
	for _, fieldErr := range errs {
		if _, seen := fields[fieldErr.Field()]; !seen {
			fields[fieldErr.Field()] = validationMessage(fieldErr)
		}
	}
	return fields, false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "alpha_space":
		return "must contain only letters and spaces"
	case "simple_email":
		return "must be a valid email address"
	case "digits":
		return "must contain only digits"
	}
	return "is invalid"
}
