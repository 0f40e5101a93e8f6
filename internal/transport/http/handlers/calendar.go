package http_handlers

import (
	"net/http"
	"strings"

	"github.com/cercino/vointer/internal/application/calendar"
	"github.com/cercino/vointer/internal/domain"
	"github.com/cercino/vointer/internal/logger"
	"github.com/cercino/vointer/internal/transport/http/dto"
	"github.com/cercino/vointer/internal/transport/http/middleware"
	"github.com/cercino/vointer/internal/transport/http/response"
)

type CalendarHandler struct {
	svc *calendar.Service
}

func NewCalendarHandler(svc *calendar.Service) *CalendarHandler {
	return &CalendarHandler{svc: svc}
}

// GoogleRedirect starts the consent flow for the authenticated user.
// The state parameter is a signed token naming that user, so the
// callback can only attach the grant to the account that asked for it.
func (h *CalendarHandler) GoogleRedirect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	url, err := h.svc.BeginAuthorization(userID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// GoogleCallback lands the consent redirect from Google.
func (h *CalendarHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if denied := q.Get("error"); denied != "" {
		response.WriteError(w, r, domain.ErrInvalidField("error", denied))
		return
	}

	state := strings.TrimSpace(q.Get("state"))
	code := strings.TrimSpace(q.Get("code"))
	if state == "" {
		response.WriteError(w, r, domain.ErrMissingField("state"))
		return
	}
	if code == "" {
		response.WriteError(w, r, domain.ErrMissingField("code"))
		return
	}

	userID, err := h.svc.CompleteAuthorization(r.Context(), state, code)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", userID).
		Msg("google_calendar_connected")

	response.OK(w, dto.MessageResponse{Message: "google calendar connected"})
}

// Availability returns the caller's busy intervals for the coming week.
func (h *CalendarHandler) Availability(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	busy, err := h.svc.Availability(r.Context(), userID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	if busy == nil {
		busy = []calendar.BusyInterval{}
	}

	response.OK(w, dto.AvailabilityResponse{
		TimeZone: calendar.TimeZone,
		Busy:     busy,
	})
}
