// Package validate performs pre-flight checks on user input so bad requests
// never reach the network. Rules mirror the sign-up and referral forms.
package validate

import (
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/refbridge/crms/internal/errs"
	"github.com/refbridge/crms/internal/model"
)

// Validator wraps a configured validator instance with the custom rules the
// forms need.
type Validator struct {
	v *validator.Validate
}

// New registers the custom rules and returns a ready Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("alphaspace", alphaSpace)
	_ = v.RegisterValidation("passwordstrength", passwordStrength)
	return &Validator{v: v}
}

// Login checks login credentials.
func (vl *Validator) Login(in model.LoginInput) error {
	return vl.wrap(vl.v.Struct(in))
}

// Register checks sign-up input, including password strength and the
// confirmation match.
func (vl *Validator) Register(in model.RegisterInput) error {
	return vl.wrap(vl.v.Struct(in))
}

// Referral checks a referral submission before building the multipart form.
func (vl *Validator) Referral(in model.ReferralInput) error {
	return vl.wrap(vl.v.Struct(in))
}

// wrap converts the first violation into a human message tagged with the
// validation sentinel.
func (vl *Validator) wrap(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return fmt.Errorf("%v: %w", err, errs.ErrValidation)
	}
	return fmt.Errorf("%s: %w", message(verrs[0]), errs.ErrValidation)
}

// message maps one violation onto the wording the forms use.
func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "Email":
		return "Please enter a valid email address"
	case "Password":
		switch fe.Tag() {
		case "min":
			return fmt.Sprintf("Password must be at least %s characters", fe.Param())
		case "passwordstrength":
			return "Password must contain upper and lower case letters, a number and a special character"
		}
		return "Password is required"
	case "ConfirmPassword":
		if fe.Tag() == "eqfield" {
			return "Passwords don't match"
		}
		return "Please confirm your password"
	case "Name":
		switch fe.Tag() {
		case "min":
			return fmt.Sprintf("Name must be at least %s characters", fe.Param())
		case "max":
			return fmt.Sprintf("Name cannot exceed %s characters", fe.Param())
		case "alphaspace":
			return "Name can only contain letters and spaces"
		}
		return "Name is required"
	case "Role":
		return "Role must be user or admin"
	case "JobTitle":
		return "Job title is required"
	case "Resume":
		return "Resume must be a valid URL"
	case "Phone":
		return "Please enter a valid phone number"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func alphaSpace(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}

func passwordStrength(fl validator.FieldLevel) bool {
	var upper, lower, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}
