package validation

import (
	"errors"
	"strings"
	"testing"

	"product-manager/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProductAdd(t *testing.T) {
	tests := []struct {
		name      string
		req       model.ProductAddRequest
		wantCodes []string
	}{
		{
			name: "Valid",
			req: model.ProductAddRequest{
				Name: "Widget", ManufacturePhone: "123", ManufactureEmail: "maker@gmail.com", Count: 1,
			},
		},
		{
			name: "Domain not allowed",
			req: model.ProductAddRequest{
				Name: "Widget", ManufacturePhone: "123", ManufactureEmail: "maker@notallowed.com", Count: 1,
			},
			wantCodes: []string{CodeEmailDomain},
		},
		{
			name: "Malformed email reported once",
			req: model.ProductAddRequest{
				Name: "Widget", ManufacturePhone: "123", ManufactureEmail: "not-an-email", Count: 1,
			},
			wantCodes: []string{"email"},
		},
		{
			name: "Field errors and domain collected together",
			req: model.ProductAddRequest{
				Name: "", ManufacturePhone: "12x", ManufactureEmail: "maker@example.com", Count: 1,
			},
			wantCodes: []string{"required", "digits", CodeEmailDomain},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProductAdd(tt.req)
			if len(tt.wantCodes) == 0 {
				assert.NoError(t, err)
				return
			}

			var vErr *model.ValidationError
			require.True(t, errors.As(err, &vErr))

			codes := make([]string, 0, len(vErr.Violations))
			for _, v := range vErr.Violations {
				codes = append(codes, v.Code)
			}
			assert.ElementsMatch(t, tt.wantCodes, codes)
		})
	}
}

func TestValidateProductUpdate_EmailFieldName(t *testing.T) {
	err := ValidateProductUpdate(model.ProductUpdateRequest{
		ID: uuid.New(), Name: "Widget", ManufacturePhone: "1", ManufactureEmail: "a@yandex.ru", Count: 2,
	})

	var vErr *model.ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Len(t, vErr.Violations, 1)
	assert.Equal(t, "manufactureEmail", vErr.Violations[0].Field)
	assert.Equal(t, CodeEmailDomain, vErr.Violations[0].Code)
}

func TestValidateRegistration(t *testing.T) {
	valid := model.RegisterRequest{
		Name:            "Acme",
		Email:           "acme@hotmail.com",
		PhoneNumber:     "0123456789",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
	}
	assert.NoError(t, ValidateRegistration(valid))

	weak := valid
	weak.Password = "password"
	weak.ConfirmPassword = "password"

	err := ValidateRegistration(weak)
	var vErr *model.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.True(t, vErr.HasCode(CodePasswordRule))

	missing := valid
	missing.Password = ""
	missing.ConfirmPassword = ""

	err = ValidateRegistration(missing)
	require.True(t, errors.As(err, &vErr))
	assert.False(t, vErr.HasCode(CodePasswordRule), "policy is not checked for an empty password")
	assert.True(t, vErr.HasCode("required"))

	long := valid
	long.Email = strings.Repeat("a", 111) + "@gmail.com"

	err = ValidateRegistration(long)
	require.True(t, errors.As(err, &vErr))
	require.Len(t, vErr.Violations, 1)
	assert.Equal(t, "max", vErr.Violations[0].Code)
}

func TestAccountRequests_EmailLength(t *testing.T) {
	long := strings.Repeat("a", 91) + "@gmail.com"

	var vErr *model.ValidationError
	require.True(t, errors.As(ValidateStruct(model.LoginRequest{Email: long, Password: "x"}), &vErr))
	assert.True(t, vErr.HasCode("max"))

	require.True(t, errors.As(ValidateStruct(model.DeleteAccountRequest{Email: long, Password: "x"}), &vErr))
	assert.True(t, vErr.HasCode("max"))

	fits := "maker@" + strings.Repeat("sub.", 21) + "gmail.com"
	require.Len(t, fits, 99)
	assert.NoError(t, ValidateStruct(model.LoginRequest{Email: fits, Password: "x"}))
}
