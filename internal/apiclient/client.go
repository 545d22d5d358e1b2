// Package apiclient talks to the course-management REST backend and decodes
// its result envelope.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arguide/backoffice/internal/listctl"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
}

// Client wraps interactions with the backend API.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// New constructs a Client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "backoffice"
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		userAgent:  ua,
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

type tokenKey struct{}

// WithToken sets the bearer token for requests made with ctx. It takes
// precedence over Options.Token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok && token != "" {
		return token
	}
	return c.token
}

// EncodeQuery renders q as page, size and one parameter per applied filter.
func EncodeQuery(q listctl.Query) url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("size", strconv.Itoa(q.PageSize))
	for _, name := range q.FilterNames() {
		values.Set(name, q.Filters[name])
	}
	return values
}

// List fetches one page from path and decodes the list envelope.
func List[T any](ctx context.Context, c *Client, path string, q listctl.Query) (listctl.PageResult[T], error) {
	var res listResult[T]
	if err := c.do(ctx, http.MethodGet, path, EncodeQuery(q), nil, &res); err != nil {
		return listctl.PageResult[T]{}, err
	}
	rows := res.rows()
	if rows == nil {
		rows = []T{}
	}
	return listctl.PageResult[T]{Rows: rows, TotalCount: res.TotalItems}, nil
}

// Get decodes a bare result from path.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

// Mutate sends payload with method (POST/PUT/PATCH) and decodes the bare
// result into out when out is non-nil.
func (c *Client) Mutate(ctx context.Context, method, path string, payload, out any) error {
	return c.do(ctx, method, path, nil, payload, out)
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the session blob returned by the backend.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	User        struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		Role      string `json:"role"`
		CompanyID string `json:"companyId"`
	} `json:"user"`
}

// Login exchanges credentials for an access token and user info.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", nil, Credentials{Email: email, Password: password}, &res)
	if err != nil {
		return LoginResult{}, err
	}
	if res.AccessToken == "" {
		return LoginResult{}, &ServerError{Status: http.StatusBadGateway, Message: "login response carried no token"}
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("apiclient: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("apiclient: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokenFor(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if key := listctl.IdempotencyKey(ctx); key != "" && method != http.MethodGet {
		req.Header.Set("Idempotency-Key", key)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	c.logger.Debug("api call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)))

	if resp.StatusCode >= 400 {
		se := decodeError(resp.StatusCode, data)
		if resp.StatusCode == http.StatusConflict {
			return &ConflictError{Server: se}
		}
		return se
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return &ServerError{Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	if isNull(env.Result) {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return &ServerError{Status: resp.StatusCode, Message: "malformed result: " + err.Error()}
	}
	return nil
}
