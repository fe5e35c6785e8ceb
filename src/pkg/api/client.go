// Package api is the REST client for the blog list backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
)

const (
	loginPath = "/api/login"
	blogsPath = "/api/blogs"

	// RequestIDHeader carries the id that ties client and server logs together.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 64 << 10
)

// Client issues requests against the backend. Safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *log.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: missing scheme or host", baseURL)
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// SetToken installs the bearer token used by mutating requests.
// An empty token removes it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		c.token = ""
		return
	}
	c.token = "Bearer " + token
}

// HasToken reports whether a token is installed.
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// Login exchanges credentials for a user with a token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, "login", http.MethodPost, loginPath, false, creds, &user, http.StatusOK); err != nil {
		return nil, err
	}
	if user.Token == "" {
		return nil, &Error{Kind: ErrNetwork, Op: "login", Message: "response carried no token"}
	}
	return &user, nil
}

// BlogsGetAll fetches the whole list. No token is required.
func (c *Client) BlogsGetAll(ctx context.Context) ([]*model.Blog, error) {
	var blogs []*model.Blog
	if err := c.do(ctx, "list blogs", http.MethodGet, blogsPath, false, nil, &blogs, http.StatusOK); err != nil {
		return nil, err
	}
	if blogs == nil {
		blogs = []*model.Blog{}
	}
	return blogs, nil
}

// BlogCreate submits a new blog.
func (c *Client) BlogCreate(ctx context.Context, info model.BlogInfo) (*model.Blog, error) {
	if strings.TrimSpace(info.Title) == "" || strings.TrimSpace(info.URL) == "" {
		return nil, &Error{Kind: ErrValidation, Op: "create blog", Message: "title and url are required"}
	}
	var blog model.Blog
	if err := c.do(ctx, "create blog", http.MethodPost, blogsPath, true, info, &blog, http.StatusCreated, http.StatusOK); err != nil {
		return nil, err
	}
	return &blog, nil
}

// BlogUpdate applies patch to the blog with the given id.
func (c *Client) BlogUpdate(ctx context.Context, id string, patch model.BlogPatch) (*model.Blog, error) {
	var blog model.Blog
	path := blogsPath + "/" + url.PathEscape(id)
	if err := c.do(ctx, "update blog", http.MethodPut, path, true, patch, &blog, http.StatusOK); err != nil {
		return nil, err
	}
	return &blog, nil
}

// BlogRemove deletes the blog with the given id.
func (c *Client) BlogRemove(ctx context.Context, id string) error {
	path := blogsPath + "/" + url.PathEscape(id)
	return c.do(ctx, "remove blog", http.MethodDelete, path, true, nil, nil, http.StatusNoContent, http.StatusOK)
}

// do performs a single request. out may be nil when no body is expected.
func (c *Client) do(ctx context.Context, op, method, path string, auth bool, in, out interface{}, okStatus ...int) error {
	requestID := uuid.NewString()
	ctx = log.ContextWithRequestID(ctx, requestID)

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: ErrValidation, Op: op, Err: err}
		}
		body = bytes.NewReader(data)
	}

	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return &Error{Kind: ErrNetwork, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		c.mu.RLock()
		token := c.token
		c.mu.RUnlock()
		if token != "" {
			req.Header.Set("Authorization", token)
		}
	}

	start := time.Now()
	c.logger.Debug(ctx, "Sending request", log.Fields{"method": method, "path": path})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(ctx, "Request failed", log.Fields{"op": op, "error": err})
		return &Error{Kind: ErrNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Info(ctx, "Response received", log.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	if !statusIn(resp.StatusCode, okStatus) {
		apiErr := &Error{
			Kind:       kindForStatus(resp.StatusCode),
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
		c.logger.Warn(ctx, "Request rejected", log.Fields{"op": op, "status": resp.StatusCode, "message": apiErr.Message})
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error(ctx, "Failed to decode response", log.Fields{"op": op, "error": err})
		return &Error{Kind: ErrNetwork, Op: op, StatusCode: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	return nil
}

func statusIn(status int, allowed []int) bool {
	for _, s := range allowed {
		if status == s {
			return true
		}
	}
	return false
}

// readErrorMessage extracts {"error": "..."} from a failure body, falling
// back to the raw text.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
