package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type HealthHandler interface {
	Ping(w http.ResponseWriter, r *http.Request)
	Healthz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	VerifyEmail(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	VerifyToken(w http.ResponseWriter, r *http.Request)
}

type CalendarHandler interface {
	GoogleRedirect(w http.ResponseWriter, r *http.Request)
	GoogleCallback(w http.ResponseWriter, r *http.Request)
	Availability(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health   HealthHandler
	Auth     AuthHandler
	Calendar CalendarHandler

	AuthMW func(http.Handler) http.Handler

	// Global middleware applied to every route, outermost first.
	Global []func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Calendar == nil {
		return nil, fmt.Errorf("nil Calendar handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}

	r := chi.NewRouter()
	for _, mw := range deps.Global {
		r.Use(mw)
	}

	r.Get("/healthz", deps.Health.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", deps.Health.Ping)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.Auth.Register)
			r.Post("/login", deps.Auth.Login)
			r.Get("/verify", deps.Auth.VerifyEmail) // ?token=...
			r.Post("/forgot-password", deps.Auth.ForgotPassword)
			r.Post("/reset-password", deps.Auth.ResetPassword)
			r.With(deps.AuthMW).Post("/verify-token", deps.Auth.VerifyToken)

			// Google consent: the redirect needs a logged-in caller, the
			// callback arrives from Google carrying the signed state.
			r.With(deps.AuthMW).Get("/google", deps.Calendar.GoogleRedirect)
			r.Get("/google/callback", deps.Calendar.GoogleCallback)
		})

		r.Route("/calendar", func(r chi.Router) {
			r.Use(deps.AuthMW)
			r.Get("/availability", deps.Calendar.Availability)
		})
	})

	return r, nil
}
