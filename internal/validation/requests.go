package validation

import (
	"errors"
	"strings"

	"product-manager/internal/model"
)

// ValidateProductAdd checks a product creation request, including the
// manufacturer email domain.
func ValidateProductAdd(req model.ProductAddRequest) error {
	return withEmail(ValidateStruct(req), "manufactureEmail", req.ManufactureEmail)
}

// ValidateProductUpdate checks a product update request, including the
// manufacturer email domain.
func ValidateProductUpdate(req model.ProductUpdateRequest) error {
	return withEmail(ValidateStruct(req), "manufactureEmail", req.ManufactureEmail)
}

// ValidateRegistration checks an account registration request against the
// field rules, the email allow-list and the password policy.
func ValidateRegistration(req model.RegisterRequest) error {
	err := withEmail(ValidateStruct(req), "email", req.Email)
	if req.Password == "" {
		return err
	}
	return merge(err, ValidatePassword(req.Password))
}

func withEmail(structErr error, field, email string) error {
	if hasViolationOn(structErr, field) {
		return structErr
	}

	emailErr := ValidateEmail(email)
	var vErr *model.ValidationError
	if errors.As(emailErr, &vErr) {
		for i := range vErr.Violations {
			vErr.Violations[i].Field = field
		}
	}

	return merge(structErr, emailErr)
}

// merge combines validation errors into one. Any other error is returned as is.
func merge(errs ...error) error {
	var violations []model.Violation
	for _, err := range errs {
		if err == nil {
			continue
		}
		var vErr *model.ValidationError
		if !errors.As(err, &vErr) {
			return err
		}
		violations = append(violations, vErr.Violations...)
	}

	if len(violations) == 0 {
		return nil
	}
	return model.NewValidationError(violations...)
}

func hasViolationOn(err error, field string) bool {
	var vErr *model.ValidationError
	if !errors.As(err, &vErr) {
		return false
	}
	for _, v := range vErr.Violations {
		if strings.EqualFold(v.Field, field) {
			return true
		}
	}
	return false
}
