package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"product-manager/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountHandler_Register(t *testing.T) {
	authResp := &model.AuthenticationResponse{
		Name:       "Maker",
		Email:      ownerEmail,
		Token:      "signed-token",
		Expiration: time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.AuthenticationResponse
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           `{"name":"Maker","email":"maker@gmail.com","phoneNumber":"0123","password":"Secr3t!pw","confirmPassword":"Secr3t!pw"}`,
			mockReturn:     authResp,
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Already registered",
			body:           `{"name":"Maker","email":"maker@gmail.com","phoneNumber":"0123","password":"Secr3t!pw","confirmPassword":"Secr3t!pw"}`,
			mockError:      model.NewConflictError("email already registered"),
			expectService:  true,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Empty body",
			body:           "",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(MockAccountService)
			h := NewAccountHandler(accounts, zerolog.Nop())

			if tt.expectService {
				accounts.On("Register", mock.Anything, mock.AnythingOfType("*model.RegisterRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			w := httptest.NewRecorder()
			h.Register(w, newRequest(http.MethodPost, "/api/account/register", tt.body, ""))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var body model.AuthenticationResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "signed-token", body.Token)
			}
			if !tt.expectService {
				accounts.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAccountHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		mockReturn     *model.AuthenticationResponse
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Success",
			mockReturn:     &model.AuthenticationResponse{Email: ownerEmail, Token: "signed-token"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unknown account",
			mockError:      model.NewNotFoundError("no account"),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Wrong password",
			mockError:      model.NewUnauthorisedError("invalid email or password"),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(MockAccountService)
			h := NewAccountHandler(accounts, zerolog.Nop())
			accounts.On("Login", mock.Anything, &model.LoginRequest{Email: ownerEmail, Password: "Secr3t!pw", RememberMe: true}).
				Return(tt.mockReturn, tt.mockError)

			w := httptest.NewRecorder()
			h.Login(w, newRequest(http.MethodPost, "/api/account/login",
				`{"email":"maker@gmail.com","password":"Secr3t!pw","rememberMe":true}`, ""))

			assert.Equal(t, tt.expectedStatus, w.Code)
			accounts.AssertExpectations(t)
		})
	}
}

func TestAccountHandler_Logout(t *testing.T) {
	h := NewAccountHandler(new(MockAccountService), zerolog.Nop())

	w := httptest.NewRecorder()
	h.Logout(w, newRequest(http.MethodGet, "/api/account/logout", "", ""))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAccountHandler_Delete(t *testing.T) {
	body := `{"email":"maker@gmail.com","password":"Secr3t!pw"}`

	t.Run("Success", func(t *testing.T) {
		accounts := new(MockAccountService)
		h := NewAccountHandler(accounts, zerolog.Nop())
		accounts.On("DeleteAccount", mock.Anything, ownerEmail, &model.DeleteAccountRequest{Email: ownerEmail, Password: "Secr3t!pw"}).
			Return(nil)

		w := httptest.NewRecorder()
		h.Delete(w, newRequest(http.MethodDelete, "/api/account", body, ownerEmail))

		assert.Equal(t, http.StatusNoContent, w.Code)
		accounts.AssertExpectations(t)
	})

	t.Run("Someone else's account", func(t *testing.T) {
		accounts := new(MockAccountService)
		h := NewAccountHandler(accounts, zerolog.Nop())
		accounts.On("DeleteAccount", mock.Anything, "other@gmail.com", mock.Anything).
			Return(model.NewForbiddenError("not your account"))

		w := httptest.NewRecorder()
		h.Delete(w, newRequest(http.MethodDelete, "/api/account", body, "other@gmail.com"))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Wrong password", func(t *testing.T) {
		accounts := new(MockAccountService)
		h := NewAccountHandler(accounts, zerolog.Nop())
		accounts.On("DeleteAccount", mock.Anything, ownerEmail, mock.Anything).
			Return(model.NewValidationError(model.Violation{Field: "password", Code: "password_mismatch"}))

		w := httptest.NewRecorder()
		h.Delete(w, newRequest(http.MethodDelete, "/api/account", body, ownerEmail))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Anonymous", func(t *testing.T) {
		accounts := new(MockAccountService)
		h := NewAccountHandler(accounts, zerolog.Nop())

		w := httptest.NewRecorder()
		h.Delete(w, newRequest(http.MethodDelete, "/api/account", body, ""))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		accounts.AssertNotCalled(t, "DeleteAccount", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAccountHandler_EmailChecks(t *testing.T) {
	accounts := new(MockAccountService)
	h := NewAccountHandler(accounts, zerolog.Nop())
	accounts.On("IsEmailInUse", mock.Anything, ownerEmail).Return(true, nil)
	accounts.On("IsEmailInUse", mock.Anything, "free@gmail.com").Return(false, nil)

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		email    string
		expected string
	}{
		{name: "Register check on taken email", handler: h.RegisterEmailCheck, email: ownerEmail, expected: "false"},
		{name: "Register check on free email", handler: h.RegisterEmailCheck, email: "free@gmail.com", expected: "true"},
		{name: "Login check on known email", handler: h.LoginEmailCheck, email: ownerEmail, expected: "true"},
		{name: "Login check on unknown email", handler: h.LoginEmailCheck, email: "free@gmail.com", expected: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, newRequest(http.MethodGet, "/api/account/email-check?email="+tt.email, "", ""))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.expected, w.Body.String())
		})
	}
}
