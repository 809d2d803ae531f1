package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/fjod/storefront/checkout-service/domain"
	validatorv10 "github.com/go-playground/validator/v10"
)

var (
	looseEmail = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	indiaPhone = regexp.MustCompile(`^(\+91[\-\s]?)?[6-9]\d{9}$`)
)

var messages = map[string]string{
	"name":        "Name is required",
	"email":       "Email is required",
	"address":     "Address is required",
	"city":        "City is required",
	"state":       "State is required",
	"postal_code": "Postal code is required",
	"country":     "Country is required",
	"phone":       "Phone number is required",
}

// Validator checks checkout forms. The phone rule depends on the region the
// storefront sells to.
type Validator struct {
	v         *validatorv10.Validate
	phoneRule string
}

// New returns a validator for region. "IN" checks Indian mobile numbers,
// anything else expects E.164.
func New(region string) *Validator {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("loose_email", matches(looseEmail))
	_ = v.RegisterValidation("in_phone", matches(indiaPhone))

	rule := "e164"
	if strings.EqualFold(region, "IN") {
		rule = "in_phone"
	}
	return &Validator{v: v, phoneRule: rule}
}

func matches(re *regexp.Regexp) validatorv10.Func {
	return func(fl validatorv10.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Validate returns a *domain.ValidationError listing every offending field,
// or nil.
func (v *Validator) Validate(form domain.CheckoutForm) error {
	fields := map[string]string{}

	if err := v.v.Struct(form); err != nil {
		var ve validatorv10.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		for _, fe := range ve {
			fields[fe.Field()] = message(fe.Field(), fe.Tag())
		}
	}

	if err := v.v.Var(strings.TrimSpace(form.Phone), "required,"+v.phoneRule); err != nil {
		var ve validatorv10.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		fields["phone"] = message("phone", ve[0].Tag())
	}

	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}

func message(field, tag string) string {
	switch tag {
	case "required":
		if m, ok := messages[field]; ok {
			return m
		}
		return field + " is required"
	case "loose_email":
		return "Please enter a valid email address"
	case "e164", "in_phone":
		return "Please enter a valid phone number"
	}
	return field + " is invalid"
}
