package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cercino/vointer/internal/domain"
)

var validate = validator.New()

// check runs struct-tag validation and maps the first failure onto the
// domain error taxonomy.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "required" {
			return domain.ErrMissingField(field)
		}
		return domain.ErrInvalidField(field, fe.Tag())
	}
	return domain.ErrInternal(err)
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Company  string `json:"company" validate:"required"`
}

func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Password = strings.TrimSpace(r.Password)
	r.Company = strings.TrimSpace(r.Company)
	return check(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return check(r)
}

// Step A: request a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return check(r)
}

// Step B: consume the token and set a new password.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *ResetPasswordRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	return check(r)
}
