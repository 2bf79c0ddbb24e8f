package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a manufacturer account.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PhoneNumber  string    `json:"phoneNumber" db:"phone_number"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,max=40"`
	Email           string `json:"email" validate:"required,max=100,email"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,digits,max=11"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginRequest is the payload for signing in.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,max=100,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// DeleteAccountRequest confirms account removal with the account password.
type DeleteAccountRequest struct {
	Email    string `json:"email" validate:"required,max=100,email"`
	Password string `json:"password" validate:"required"`
}

// AuthenticationResponse is returned after a successful registration or login.
type AuthenticationResponse struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}
}
