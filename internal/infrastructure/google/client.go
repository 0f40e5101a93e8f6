package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cercino/vointer/internal/application/calendar"
	"github.com/cercino/vointer/internal/domain"
)

const (
	// Read-only calendar access is all the availability feature needs.
	scopeCalendarReadonly = "https://www.googleapis.com/auth/calendar.readonly"

	defaultAuthEndpoint     = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenEndpoint    = "https://oauth2.googleapis.com/token"
	defaultFreeBusyEndpoint = "https://www.googleapis.com/calendar/v3/freeBusy"
)

// Client handles the Google OAuth 2.0 authorization-code grant and the
// calendar free/busy query.
type Client struct {
	clientID     string
	clientSecret string
	redirectURL  string

	authEndpoint     string
	tokenEndpoint    string
	freeBusyEndpoint string

	httpClient *http.Client
	now        func() time.Time
}

func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,

		authEndpoint:     defaultAuthEndpoint,
		tokenEndpoint:    defaultTokenEndpoint,
		freeBusyEndpoint: defaultFreeBusyEndpoint,

		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// IsConfigured returns true if Google OAuth credentials are set.
func (c *Client) IsConfigured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// AuthURL builds the consent redirect. Offline access plus forced consent
// guarantees a refresh token is reissued even when the same principal
// authorizes repeatedly.
func (c *Client) AuthURL(state string) string {
	params := url.Values{
		"client_id":     {c.clientID},
		"redirect_uri":  {c.redirectURL},
		"response_type": {"code"},
		"scope":         {scopeCalendarReadonly},
		"state":         {state},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	return c.authEndpoint + "?" + params.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (domain.GoogleTokens, error) {
	data := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.redirectURL},
	}
	return c.tokenRequest(ctx, data)
}

// Refresh trades a refresh token for a fresh access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.GoogleTokens, error) {
	data := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}
	return c.tokenRequest(ctx, data)
}

func (c *Client) tokenRequest(ctx context.Context, data url.Values) (domain.GoogleTokens, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint,
		strings.NewReader(data.Encode()))
	if err != nil {
		return domain.GoogleTokens{}, domain.ErrInternal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GoogleTokens{}, domain.ErrProviderUnavailable(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.GoogleTokens{}, domain.ErrProviderUnavailable(err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.GoogleTokens{}, domain.ErrProviderUnavailable(
			fmt.Errorf("token endpoint: status %d: %s", resp.StatusCode, body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return domain.GoogleTokens{}, domain.ErrProviderUnavailable(err)
	}
	if tok.AccessToken == "" {
		return domain.GoogleTokens{}, domain.ErrProviderUnavailable(
			fmt.Errorf("token endpoint: empty access_token"))
	}

	out := domain.GoogleTokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if tok.ExpiresIn > 0 {
		out.Expiry = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return out, nil
}

type freeBusyRequest struct {
	TimeMin  string         `json:"timeMin"`
	TimeMax  string         `json:"timeMax"`
	TimeZone string         `json:"timeZone"`
	Items    []freeBusyItem `json:"items"`
}

type freeBusyItem struct {
	ID string `json:"id"`
}

type freeBusyResponse struct {
	Calendars map[string]struct {
		Busy []struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"busy"`
	} `json:"calendars"`
}

// FreeBusy queries the primary calendar's busy intervals for the window.
func (c *Client) FreeBusy(ctx context.Context, accessToken string, from, to time.Time) ([]calendar.BusyInterval, error) {
	payload, err := json.Marshal(freeBusyRequest{
		TimeMin:  from.Format(time.RFC3339),
		TimeMax:  to.Format(time.RFC3339),
		TimeZone: calendar.TimeZone,
		Items:    []freeBusyItem{{ID: "primary"}},
	})
	if err != nil {
		return nil, domain.ErrInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.freeBusyEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.ErrInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.ErrProviderUnavailable(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrProviderUnavailable(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrProviderUnavailable(
			fmt.Errorf("freebusy: status %d: %s", resp.StatusCode, body))
	}

	var fb freeBusyResponse
	if err := json.Unmarshal(body, &fb); err != nil {
		return nil, domain.ErrProviderUnavailable(err)
	}

	primary, ok := fb.Calendars["primary"]
	if !ok {
		return nil, domain.ErrProviderUnavailable(fmt.Errorf("freebusy: no primary calendar in response"))
	}

	out := make([]calendar.BusyInterval, 0, len(primary.Busy))
	for _, b := range primary.Busy {
		out = append(out, calendar.BusyInterval{Start: b.Start, End: b.End})
	}
	return out, nil
}
