// Package api provides the HTTP client for the front desk API boundary.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/jwalitptl/frontdesk/pkg/errors"
	"github.com/jwalitptl/frontdesk/pkg/logger"
	"github.com/jwalitptl/frontdesk/pkg/metrics"

	"github.com/jwalitptl/frontdesk/internal/model"
)

const defaultFallback = "request failed"

// TokenSource supplies the bearer token attached to authenticated requests.
type TokenSource interface {
	Token() string
}

// Client is the JSON client for the front desk API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
	tokens     TokenSource
	metrics    *metrics.Metrics
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithTokenSource sets the bearer token source for authenticated requests.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithMetrics enables request instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client for the given API base URL, e.g.
// "http://127.0.0.1:8000/api/v1".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.NewLogger(nil).WithComponent("api"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// do executes a request and decodes the JSON response into out. A non-2xx
// response becomes a RequestError carrying the server's error text; 204 and
// a nil out skip decoding. bearer overrides the token source when non-empty.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, bearer string, payload, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("api: marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if bearer == "" && c.tokens != nil {
		bearer = c.tokens.Token()
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, "error", time.Since(start))
		c.logger.Debug("request failed", "endpoint", endpoint, "error", err.Error())
		return apperrors.NewTransport(err, defaultFallback)
	}
	defer resp.Body.Close()
	c.observe(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		b, _ := io.ReadAll(resp.Body)
		return apperrors.NewRequest(resp.StatusCode, string(b), defaultFallback)
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func (c *Client) observe(endpoint, status string, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.APIRequests.WithLabelValues(endpoint, status).Inc()
	c.metrics.APILatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// backendTimestamp renders an instant the way the server expects window
// bounds: ISO-8601 with an explicit UTC offset, never "Z".
func backendTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000-07:00")
}

// Staff identity.

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error) {
	var tokens model.TokenResponse
	if err := c.do(ctx, "auth_login", http.MethodPost, "/auth/login", nil, "", req, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.TokenResponse, error) {
	var tokens model.TokenResponse
	if err := c.do(ctx, "auth_register", http.MethodPost, "/auth/register", nil, "", req, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Me fetches the staff profile for an explicit token, so callers can build a
// session before the token is persisted anywhere.
func (c *Client) Me(ctx context.Context, token string) (*model.Profile, error) {
	var profile model.Profile
	if err := c.do(ctx, "auth_me", http.MethodGet, "/auth/me", nil, token, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Patient identity.

func (c *Client) PatientLogin(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error) {
	var tokens model.TokenResponse
	if err := c.do(ctx, "patient_login", http.MethodPost, "/patient/auth/login", nil, "", req, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (c *Client) PatientRegister(ctx context.Context, req model.PatientRegisterRequest) error {
	return c.do(ctx, "patient_register", http.MethodPost, "/patient/auth/register", nil, "", req, nil)
}

func (c *Client) PatientMe(ctx context.Context, token string) (*model.Profile, error) {
	var profile model.Profile
	if err := c.do(ctx, "patient_me", http.MethodGet, "/patient/auth/me", nil, token, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Collections.

// Appointments fetches the staff appointment window [from, to].
func (c *Client) Appointments(ctx context.Context, from, to time.Time) (*model.AppointmentList, error) {
	query := url.Values{}
	query.Set("from_time", backendTimestamp(from))
	query.Set("to_time", backendTimestamp(to))

	var list model.AppointmentList
	if err := c.do(ctx, "appointments", http.MethodGet, "/appointments/", query, "", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// PatientPortalAppointments fetches the caller's own appointments; the
// server determines the scope.
func (c *Client) PatientPortalAppointments(ctx context.Context) (*model.AppointmentList, error) {
	var list model.AppointmentList
	if err := c.do(ctx, "portal_appointments", http.MethodGet, "/patient/portal/appointments", nil, "", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) Patients(ctx context.Context) ([]model.PatientRecord, error) {
	var patients []model.PatientRecord
	if err := c.do(ctx, "patients", http.MethodGet, "/patients", nil, "", nil, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func (c *Client) Patient(ctx context.Context, id string) (*model.PatientDetail, error) {
	var detail model.PatientDetail
	if err := c.do(ctx, "patient_detail", http.MethodGet, "/patients/"+id, nil, "", nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) Alerts(ctx context.Context) ([]model.AlertRecord, error) {
	var alerts []model.AlertRecord
	if err := c.do(ctx, "alerts", http.MethodGet, "/alerts", nil, "", nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (c *Client) UpdateAlert(ctx context.Context, id string, req model.AlertUpdateRequest) error {
	return c.do(ctx, "alert_update", http.MethodPatch, "/alerts/"+id, nil, "", req, nil)
}

// Insurance verification.

func (c *Client) ReverifyInsurance(ctx context.Context, appointmentID int64) (*model.ReverifyResponse, error) {
	path := "/insurance/" + strconv.FormatInt(appointmentID, 10) + "/reverify"
	var result model.ReverifyResponse
	if err := c.do(ctx, "insurance_reverify", http.MethodPost, path, nil, "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) VerifyPayer(ctx context.Context, payerID string, req model.PayerVerificationRequest) (*model.PayerVerificationResponse, error) {
	var result model.PayerVerificationResponse
	if err := c.do(ctx, "payer_verify", http.MethodPost, "/insurance/payer/"+payerID+"/verify", nil, "", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RunSimulation(ctx context.Context) (*model.SimulationResponse, error) {
	var result model.SimulationResponse
	if err := c.do(ctx, "insurance_simulation", http.MethodPost, "/insurance/simulation", nil, "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
