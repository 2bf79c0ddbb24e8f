// Package validation checks request DTOs and manufacturer emails before they
// reach a store. Every check reports all violations it finds.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"product-manager/internal/model"

	"github.com/go-playground/validator/v10"
)

// Violation codes produced by ValidateEmail and ValidatePassword.
const (
	CodeEmailEmpty    = "email_empty"
	CodeEmailFormat   = "email_format"
	CodeEmailAddress  = "email_address"
	CodeEmailDomain   = "email_domain"
	CodePasswordShort = "password_length"
	CodePasswordRule  = "password_rule"
)

// AllowedEmailDomains lists the hosts accepted for manufacturer emails.
var AllowedEmailDomains = []string{
	"gmail.com",
	"yahoo.com",
	"outlook.com",
	"hotmail.com",
}

var digitsPattern = regexp.MustCompile(`^[0-9]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so violations match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return digitsPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register digits validation: %v", err))
	}

	return v
}

// ValidateStruct applies the validate tags declared on obj and returns a
// *model.ValidationError listing every failed rule.
func ValidateStruct(obj any) error {
	if obj == nil {
		return model.NewArgumentError("nothing to validate")
	}

	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return model.NewArgumentError("cannot validate value of type %T", obj)
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate %T: %w", obj, err)
	}

	violations := make([]model.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, model.Violation{
			Field:   fe.Field(),
			Code:    fe.Tag(),
			Message: messageFor(fe),
		})
	}

	return model.NewValidationError(violations...)
}

func messageFor(fe validator.FieldError) string {
	field := fe.Field()
	isText := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		if isText {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "digits":
		return fmt.Sprintf("%s must contain digits only", field)
	case "email":
		return fmt.Sprintf("%s is not a valid email address", field)
	case "eqfield":
		return fmt.Sprintf("%s does not match %s", field, strings.ToLower(fe.Param()[:1])+fe.Param()[1:])
	default:
		return fmt.Sprintf("%s failed the %s rule", field, fe.Tag())
	}
}

// ValidateEmail checks that email is a bare, well-formed address whose host is
// in AllowedEmailDomains.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return emailViolation(CodeEmailEmpty, "email cannot be empty or whitespace")
	}
	email = strings.TrimSpace(email)

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return emailViolation(CodeEmailFormat, fmt.Sprintf("invalid email format: %s", email))
	}

	if addr.Address != email {
		return emailViolation(CodeEmailAddress, fmt.Sprintf("invalid email address: %s", email))
	}

	at := strings.LastIndex(addr.Address, "@")
	domain := strings.ToLower(addr.Address[at+1:])
	for _, allowed := range AllowedEmailDomains {
		if domain == allowed {
			return nil
		}
	}

	return emailViolation(CodeEmailDomain, fmt.Sprintf("domain not allowed: %s", domain))
}

func emailViolation(code, message string) error {
	return model.NewValidationError(model.Violation{
		Field:   "email",
		Code:    code,
		Message: message,
	})
}

// ValidatePassword enforces the account password policy: at least six
// characters, three of them distinct, with a digit, a lower-case letter, an
// upper-case letter and a symbol.
func ValidatePassword(password string) error {
	var violations []model.Violation
	add := func(code, message string) {
		violations = append(violations, model.Violation{Field: "password", Code: code, Message: message})
	}

	if len([]rune(password)) < 6 {
		add(CodePasswordShort, "password must be at least 6 characters")
	}

	var hasDigit, hasLower, hasUpper, hasSymbol bool
	unique := make(map[rune]struct{})
	for _, r := range password {
		unique[r] = struct{}{}
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasSymbol = true
		}
	}

	if !hasDigit {
		add(CodePasswordRule, "password must contain a digit")
	}
	if !hasLower {
		add(CodePasswordRule, "password must contain a lower-case letter")
	}
	if !hasUpper {
		add(CodePasswordRule, "password must contain an upper-case letter")
	}
	if !hasSymbol {
		add(CodePasswordRule, "password must contain a non-alphanumeric character")
	}
	if len(unique) < 3 {
		add(CodePasswordRule, "password must contain at least 3 unique characters")
	}

	if len(violations) > 0 {
		return model.NewValidationError(violations...)
	}
	return nil
}
