package dto

import (
	"time"

	"github.com/cercino/vointer/internal/application/calendar"
	"github.com/cercino/vointer/internal/domain"
)

// UserView is the public shape of an account. Password hashes and Google
// credentials never leave the service.
type UserView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Company       string    `json:"company"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewUserView(u *domain.User) UserView {
	return UserView{
		ID:            u.ID,
		Name:          u.Name,
		Company:       u.Company,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

type RegisterResponse struct {
	User UserView `json:"user"`
}

type LoginResponse struct {
	User        UserView `json:"user"`
	AccessToken string   `json:"access_token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// TokenInfoResponse echoes back what a bearer token asserts.
type TokenInfoResponse struct {
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AvailabilityResponse struct {
	TimeZone string                  `json:"time_zone"`
	Busy     []calendar.BusyInterval `json:"busy"`
}
