package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/cercino/vointer/internal/application/calendar"
	"github.com/cercino/vointer/internal/domain"
)

func newClientForTest() *Client {
	return NewClient("cid", "csecret", "https://api.test/api/auth/google/callback")
}

func TestAuthURL_CarriesStateAndOfflineConsent(t *testing.T) {
	t.Parallel()

	c := newClientForTest()

	raw := c.AuthURL("signed-state")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	q := u.Query()
	if q.Get("state") != "signed-state" {
		t.Fatalf("state missing: %q", raw)
	}
	if q.Get("client_id") != "cid" {
		t.Fatalf("client_id missing: %q", raw)
	}
	if q.Get("access_type") != "offline" || q.Get("prompt") != "consent" {
		t.Fatalf("offline consent not requested: %q", raw)
	}
	if q.Get("scope") != scopeCalendarReadonly {
		t.Fatalf("unexpected scope: %q", q.Get("scope"))
	}
	if q.Get("response_type") != "code" {
		t.Fatalf("unexpected response_type: %q", q.Get("response_type"))
	}
}

func TestExchange_ParsesTokenResponse(t *testing.T) {
	t.Parallel()

	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotForm = r.PostForm
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at",
			"refresh_token": "rt",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	c := newClientForTest()
	c.tokenEndpoint = srv.URL
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	toks, err := c.Exchange(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if toks.AccessToken != "at" || toks.RefreshToken != "rt" {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
	if !toks.Expiry.Equal(base.Add(time.Hour)) {
		t.Fatalf("expires_in not applied: %v", toks.Expiry)
	}

	if gotForm.Get("grant_type") != "authorization_code" {
		t.Fatalf("unexpected grant_type: %v", gotForm)
	}
	if gotForm.Get("code") != "the-code" {
		t.Fatalf("code missing: %v", gotForm)
	}
}

func TestExchange_ProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newClientForTest()
	c.tokenEndpoint = srv.URL

	_, err := c.Exchange(context.Background(), "expired-code")
	if !domain.Is(err, "provider_unavailable") {
		t.Fatalf("expected provider_unavailable, got %v", err)
	}
}

func TestRefresh_OmittedRefreshToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") != "refresh_token" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		// Google does not echo the refresh token back
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fresh",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	c := newClientForTest()
	c.tokenEndpoint = srv.URL

	toks, err := c.Refresh(context.Background(), "rt")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if toks.AccessToken != "fresh" {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
	if toks.RefreshToken != "" {
		t.Fatalf("refresh response must not invent a refresh token")
	}
}

func TestFreeBusy_QueriesPrimaryInStockholmTime(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotReq freeBusyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"calendars": map[string]any{
				"primary": map[string]any{
					"busy": []map[string]string{
						{"start": "2026-03-02T09:00:00+01:00", "end": "2026-03-02T10:00:00+01:00"},
					},
				},
			},
		})
	}))
	defer srv.Close()

	c := newClientForTest()
	c.freeBusyEndpoint = srv.URL

	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	busy, err := c.FreeBusy(context.Background(), "at", from, from.Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("freebusy: %v", err)
	}

	if gotAuth != "Bearer at" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotReq.TimeZone != calendar.TimeZone {
		t.Fatalf("unexpected timezone: %q", gotReq.TimeZone)
	}
	if len(gotReq.Items) != 1 || gotReq.Items[0].ID != "primary" {
		t.Fatalf("must query the primary calendar: %+v", gotReq.Items)
	}

	if len(busy) != 1 {
		t.Fatalf("expected 1 interval, got %d", len(busy))
	}
	if busy[0].End.Sub(busy[0].Start) != time.Hour {
		t.Fatalf("interval not parsed: %+v", busy[0])
	}
}

func TestFreeBusy_MissingPrimary_ProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"calendars": map[string]any{}})
	}))
	defer srv.Close()

	c := newClientForTest()
	c.freeBusyEndpoint = srv.URL

	_, err := c.FreeBusy(context.Background(), "at", time.Now(), time.Now().Add(time.Hour))
	if !domain.Is(err, "provider_unavailable") {
		t.Fatalf("expected provider_unavailable, got %v", err)
	}
}

func TestIsConfigured(t *testing.T) {
	t.Parallel()

	if !newClientForTest().IsConfigured() {
		t.Fatalf("expected configured")
	}
	if NewClient("", "", "").IsConfigured() {
		t.Fatalf("expected unconfigured")
	}
}
