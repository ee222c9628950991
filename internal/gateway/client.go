// Package gateway implements the portal's HTTP client for the backend API.
// It attaches the session's bearer token, translates 401 responses into
// domain.ErrUnauthorized so callers tear the session down, and surfaces the
// backend's own error message where one is present. There are no retries
// and no caching: failures surface once, immediately.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dynamicfusion/expense-portal/internal/api/metrics"
	"github.com/dynamicfusion/expense-portal/internal/core/domain"
	"github.com/dynamicfusion/expense-portal/internal/core/ports"
)

const defaultTimeout = 8 * time.Second

// Client implements ports.BackendClient against a single base URL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// New creates a Client. A non-positive timeout falls back to 8 seconds.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Token exchanges credentials for a bearer token. The backend expects a
// form-encoded body; any non-2xx means login failure.
func (c *Client) Token(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.do(ctx, http.MethodPost, "/token", "",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return "", domain.ErrInvalidCredentials
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", domain.ErrInvalidCredentials
	}
	return tr.AccessToken, nil
}

func (c *Client) SubmitRequest(ctx context.Context, token string, in ports.SubmitRequestInput) (*ports.SubmitResult, error) {
	textField := "description"
	path := "/submit_reimbursement"
	if in.Type == domain.TypePayment {
		textField = "purpose"
		path = "/submit_payment"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("date", in.Date)
	_ = mw.WriteField(textField, in.Text)
	_ = mw.WriteField("amount", in.Amount)
	if in.Proof != nil {
		part, err := mw.CreateFormFile("proof", in.ProofName)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, in.Proof); err != nil {
			return nil, fmt.Errorf("copy attachment: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, path, token, &body, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return nil, c.asAPIError(resp)
	}

	var result ports.SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode submit response: %w", err)
	}
	return &result, nil
}

func (c *Client) MyRequests(ctx context.Context, token string) ([]domain.Request, error) {
	return c.getRequests(ctx, token, "/my_requests")
}

func (c *Client) HistoryRequests(ctx context.Context, token string) ([]domain.Request, error) {
	return c.getRequests(ctx, token, "/history_requests")
}

func (c *Client) PaidRecords(ctx context.Context, token string) ([]domain.Request, error) {
	return c.getRequests(ctx, token, "/admin/paid_records")
}

func (c *Client) AdminRequests(ctx context.Context, token string, typ domain.RequestType) ([]domain.Request, error) {
	return c.getRequests(ctx, token, "/admin/requests?type="+url.QueryEscape(string(typ)))
}

func (c *Client) PendingSummary(ctx context.Context, token string) (*domain.PendingSummary, error) {
	resp, err := c.do(ctx, http.MethodGet, "/admin/pending_summary", token, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return nil, c.asAPIError(resp)
	}

	var summary domain.PendingSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("decode pending summary: %w", err)
	}
	return &summary, nil
}

// UpdateStatus asks the backend to move a request to target. Only the
// desired status is sent; transition dates are assigned server-side.
func (c *Client) UpdateStatus(ctx context.Context, token, requestID string, target domain.Status) error {
	payload, _ := json.Marshal(map[string]string{"status": string(target)})
	resp, err := c.do(ctx, http.MethodPatch, "/admin/requests/"+url.PathEscape(requestID), token,
		bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		drain(resp.Body)
		return domain.ErrRequestNotFound
	}
	if !is2xx(resp.StatusCode) {
		return c.asAPIError(resp)
	}
	drain(resp.Body)
	return nil
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/admin/users", token, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return nil, c.asAPIError(resp)
	}

	var users []domain.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, in ports.CreateUserInput) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("username", in.Username)
	_ = mw.WriteField("password", in.Password)
	_ = mw.WriteField("role", in.Role)
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPost, "/create_user", token, &body, mw.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return c.asAPIError(resp)
	}
	drain(resp.Body)
	return nil
}

func (c *Client) DeleteUser(ctx context.Context, token, username string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(username), token, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		drain(resp.Body)
		return domain.ErrUserNotFound
	}
	if !is2xx(resp.StatusCode) {
		return c.asAPIError(resp)
	}
	drain(resp.Body)
	return nil
}

// Attachment streams a proof file. The caller owns and must close Content.
func (c *Client) Attachment(ctx context.Context, token, filename string) (*ports.Attachment, error) {
	resp, err := c.do(ctx, http.MethodGet, "/attachments/"+url.PathEscape(filename), token, nil, "")
	if err != nil {
		return nil, err
	}

	if !is2xx(resp.StatusCode) {
		defer resp.Body.Close()
		return nil, c.asAPIError(resp)
	}

	length := int64(-1)
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			length = n
		}
	}
	return &ports.Attachment{
		Content:       resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: length,
	}, nil
}

func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", "", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	drain(resp.Body)
	if !is2xx(resp.StatusCode) {
		return fmt.Errorf("backend health: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getRequests(ctx context.Context, token, path string) ([]domain.Request, error) {
	resp, err := c.do(ctx, http.MethodGet, path, token, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return nil, c.asAPIError(resp)
	}

	var records []domain.Request
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// do dispatches one request. A 401 response is consumed here and surfaced
// as domain.ErrUnauthorized — callers must not touch the body after that.
func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	endpoint := metricEndpoint(path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	// A 401 on an authenticated call means the session is dead. On the token
	// endpoint itself a 401 is just bad credentials and falls through.
	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		drain(resp.Body)
		resp.Body.Close()
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "unauthorized").Inc()
		return nil, domain.ErrUnauthorized
	}

	outcome := "ok"
	if !is2xx(resp.StatusCode) {
		outcome = "error"
	}
	metrics.BackendRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	return resp, nil
}

type errorEnvelope struct {
	Detail string `json:"detail"`
}

// asAPIError reads the body and extracts the backend's error message field
// when present, falling back to a generic message.
func (c *Client) asAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := ""
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		msg = env.Detail
	}
	if msg == "" {
		msg = fmt.Sprintf("Server responded with status %d.", resp.StatusCode)
	}
	c.logger.Warn().Int("status", resp.StatusCode).Str("detail", msg).Msg("backend error response")
	return &domain.APIError{Status: resp.StatusCode, Message: msg}
}

// metricEndpoint strips query strings and identifiers so the label set
// stays bounded.
func metricEndpoint(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, prefix := range []string{"/admin/requests/", "/admin/users/", "/attachments/"} {
		if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
			return prefix + ":id"
		}
	}
	return path
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64<<10))
}
