// Package api is the typed client for the remote currency-conversion
// service. All authenticated calls carry the session token as a bearer
// credential, attached once at the transport instead of per call.
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
	"strings"
	"time"

	"github.com/felipeejunges/currency-converter-front/internal/models"
)

// DefaultPageLimit is the fixed page size for conversion history requests.
const DefaultPageLimit = 10

const defaultTimeout = 15 * time.Second

// TokenFunc supplies the current bearer token, or "" when anonymous.
type TokenFunc func() string

// Error is a failed API call: a transport-level non-2xx response with the
// server's message field when one was decodable.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

// bearerTransport injects the Authorization header on every request.
type bearerTransport struct {
	base  http.RoundTripper
	token TokenFunc
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if tok := t.token(); tok != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return t.base.RoundTrip(req)
}

// Client issues requests against the remote currency API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL. token may be nil for a
// client that never authenticates.
func NewClient(baseURL string, token TokenFunc) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &bearerTransport{
				base:  http.DefaultTransport,
				token: token,
			},
		},
	}
}

// LoginResponse is the payload returned by a successful login.
type LoginResponse struct {
	User struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
	Token string `json:"token"`
}

// RegisterRequest is the registration payload. The backend expects the
// fields nested under a "user" envelope; Register wraps them.
type RegisterRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
}

// RegisterResponse is the payload returned by a successful registration.
type RegisterResponse struct {
	User    models.User `json:"user"`
	Message string      `json:"message"`
}

// ConversionRequest is the payload for a conversion submission.
type ConversionRequest struct {
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
	FromValue    float64 `json:"from_value"`
	ForceRefresh bool    `json:"force_refresh,omitempty"`
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]any{
		"user": map[string]string{"email": email, "password": password},
	}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. It does not authenticate the session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/register", map[string]any{"user": req}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout notifies the backend that a session token has been discarded. The
// token is passed explicitly because the caller has already cleared its
// ambient session state by the time the notification goes out.
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	return nil
}

// Currencies fetches the list of supported currencies.
func (c *Client) Currencies(ctx context.Context) ([]models.Currency, error) {
	var resp struct {
		Currencies []models.Currency `json:"currencies"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/currencies", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Currencies, nil
}

// Convert submits a conversion and returns the server-assigned record.
func (c *Client) Convert(ctx context.Context, req ConversionRequest) (*models.Conversion, error) {
	var resp models.Conversion
	if err := c.do(ctx, http.MethodPost, "/api/v1/currencies/conversions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Conversions fetches one page of conversion history.
func (c *Client) Conversions(ctx context.Context, page int) (*models.ConversionHistory, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(DefaultPageLimit))

	var resp models.ConversionHistory
	if err := c.do(ctx, http.MethodGet, "/api/v1/currencies/conversions?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}
