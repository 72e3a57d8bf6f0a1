package auth

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is enforced on signup only.
const MinPasswordLength = 6

var validate = validator.New()

// ValidationError is a form error detected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateSignin checks the sign-in form.
func ValidateSignin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "Please input your password!"}
	}
	return nil
}

// ValidateSignup checks the sign-up form. A confirmation mismatch is reported
// before the length rule.
func ValidateSignup(email, password, confirm string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "Please input your password!"}
	}
	if password != confirm {
		return &ValidationError{Field: "confirmPassword", Message: "Passwords do not match"}
	}
	if len(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must be at least 6 characters long"}
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "Please input your email!"}
	}
	if err := validate.Var(email, "email"); err != nil {
		return &ValidationError{Field: "email", Message: "Please enter a valid email!"}
	}
	return nil
}
