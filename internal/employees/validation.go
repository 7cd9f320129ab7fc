package employees

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form field names, as rendered and posted by the Create view.
const (
	FieldName          = "Name"
	FieldAge           = "Age"
	FieldAccountNumber = "AccountNumber"
)

var accountNumberRe = regexp.MustCompile(`^[0-9]{3}-[0-9]{10}-[0-9]{2}$`)

// ValidationErrors maps a form field to the message shown under it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "invalid employee: " + strings.Join(parts, "; ")
}

// Validator checks Employee values against the struct rules above.
type Validator struct {
	v *validator.Validate
}

func NewValidator() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("accountnumber", func(fl validator.FieldLevel) bool {
		return IsValidAccountNumber(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register accountnumber rule: %w", err)
	}
	return &Validator{v: v}, nil
}

// IsValidAccountNumber reports whether s has the DDD-DDDDDDDDDD-DD shape.
func IsValidAccountNumber(s string) bool {
	return accountNumberRe.MatchString(s)
}

// Validate returns nil or ValidationErrors.
func (val *Validator) Validate(e Employee) error {
	err := val.v.Struct(e)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate employee: %w", err)
	}
	out := ValidationErrors{}
	for _, fe := range fieldErrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return out
}

// FromForm builds an Employee from posted form values and validates it.
// The returned Employee carries whatever was posted so the view can echo it.
func (val *Validator) FromForm(form url.Values) (Employee, ValidationErrors) {
	e := Employee{
		Name:          strings.TrimSpace(form.Get(FieldName)),
		AccountNumber: strings.TrimSpace(form.Get(FieldAccountNumber)),
	}

	errs := ValidationErrors{}
	if raw := strings.TrimSpace(form.Get(FieldAge)); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			errs[FieldAge] = "Age must be a number"
		} else {
			e.Age = age
		}
	}

	if err := val.Validate(e); err != nil {
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			errs["_"] = err.Error()
			return e, errs
		}
		for k, msg := range verrs {
			if _, seen := errs[k]; !seen {
				errs[k] = msg
			}
		}
	}

	if len(errs) == 0 {
		return e, nil
	}
	return e, errs
}

func message(field, tag string) string {
	switch field {
	case FieldName:
		if tag == "max" {
			return "Name must be at most 50 characters"
		}
		return "Name is required"
	case FieldAge:
		if tag == "required" {
			return "Age is required"
		}
		return "Age must be between 18 and 70"
	case FieldAccountNumber:
		if tag == "required" {
			return "Account number is required"
		}
		return "Account number is not valid"
	}
	return fmt.Sprintf("%s is invalid", field)
}
