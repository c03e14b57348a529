package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"context"

	"github.com/pulsefit/coach-backend/internal/domain"
	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
)

type IntegrationProfile struct {
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
}

// IntegrationActivity is one activity fetched from a third-party service,
// already normalized to the units this backend uses.
type IntegrationActivity struct {
	ExternalID      string    `json:"external_id"`
	Name            string    `json:"name"`
	DurationMinutes float64   `json:"duration_minutes"`
	StartedAt       time.Time `json:"started_at"`
}

// IntegrationClient is the narrow contract against one third-party
// wearable/activity provider. OAuth mechanics beyond these four calls are
// the provider's problem, not ours.
type IntegrationClient interface {
	Provider() string
	ExchangeAuthCode(ctx context.Context, code string) (*domain.Credentials, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.Credentials, error)
	GetUserProfile(ctx context.Context, creds domain.Credentials) (*IntegrationProfile, error)
	GetActivitiesSince(ctx context.Context, creds domain.Credentials, since time.Time) ([]IntegrationActivity, error)
}

type httpIntegrationClient struct {
	log          *logger.Logger
	provider     string
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

func NewHTTPIntegrationClient(log *logger.Logger, provider, baseURL, clientID, clientSecret string) (IntegrationClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("missing base url for provider %q", provider)
	}
	return &httpIntegrationClient{
		log:          log.With("service", "IntegrationClient", "provider", provider),
		provider:     provider,
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *httpIntegrationClient) Provider() string { return c.provider }

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (c *httpIntegrationClient) ExchangeAuthCode(ctx context.Context, code string) (*domain.Credentials, error) {
	return c.tokenCall(ctx, url.Values{
		"grant_type": {"authorization_code"},
		"code":       {code},
	})
}

func (c *httpIntegrationClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.Credentials, error) {
	return c.tokenCall(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
}

func (c *httpIntegrationClient) tokenCall(ctx context.Context, form url.Values) (*domain.Credentials, error) {
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperr.New(apperr.KindUpstream, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok tokenResponse
	if err := c.do(req, &tok); err != nil {
		return nil, err
	}
	creds := &domain.Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if tok.ExpiresIn > 0 {
		expires := time.Now().UTC().Add(time.Duration(tok.ExpiresIn) * time.Second)
		creds.ExpiresAt = &expires
	}
	return creds, nil
}

func (c *httpIntegrationClient) GetUserProfile(ctx context.Context, creds domain.Credentials) (*IntegrationProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/me", nil)
	if err != nil {
		return nil, apperr.New(apperr.KindUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	var profile IntegrationProfile
	if err := c.do(req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *httpIntegrationClient) GetActivitiesSince(ctx context.Context, creds domain.Credentials, since time.Time) ([]IntegrationActivity, error) {
	endpoint := fmt.Sprintf("%s/v1/activities?since=%s", c.baseURL, url.QueryEscape(since.UTC().Format(time.RFC3339)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.New(apperr.KindUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	var activities []IntegrationActivity
	if err := c.do(req, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (c *httpIntegrationClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.New(apperr.KindUpstream, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperr.New(apperr.KindUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.Newf(apperr.KindUpstream, "%s http %d: %s", c.provider, resp.StatusCode, truncate(string(body), 256))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperr.New(apperr.KindUpstream, fmt.Errorf("decode %s response: %w", c.provider, err))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
