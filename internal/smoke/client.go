package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// AuthContext carries the headers of one authenticated principal. The
// runner keeps separate contexts for the admin and the secondary user
// so cross-principal scenarios never leak credentials into each other.
type AuthContext struct {
	Token  string
	Header http.Header
}

// NewAuthContext builds an AuthContext from a bearer token.
func NewAuthContext(token string) *AuthContext {
	h := make(http.Header)
	h.Set("Authorization", "Bearer "+token)
	return &AuthContext{Token: token, Header: h}
}

// Result is one decoded platform response. The platform wraps every
// payload in an envelope whose interesting part sits under "data";
// list endpoints nest the row slice one level deeper under data.data.
type Result map[string]interface{}

// Data returns the envelope payload as a map, or nil when the payload
// is absent or not an object.
func (r Result) Data() map[string]interface{} {
	m, _ := r["data"].(map[string]interface{})
	return m
}

// Rows returns the row objects of a list response, or nil.
func (r Result) Rows() []map[string]interface{} {
	data := r.Data()
	if data == nil {
		return nil
	}
	raw, _ := data["data"].([]interface{})
	if raw == nil {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			rows = append(rows, m)
		}
	}
	return rows
}

// ID returns the identifier of a single-object response, normalized to
// a string regardless of the JSON number representation.
func (r Result) ID() string {
	return stringField(r.Data(), "id")
}

// stringField reads m[key] as a string identifier. Numeric identifiers
// are normalized to their decimal representation so they survive a
// round-trip through URL paths.
func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// objectField reads m[key] as a nested object, or nil.
func objectField(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	nested, _ := m[key].(map[string]interface{})
	return nested
}

// Client is a thin JSON client for the platform API. It is safe for
// use from multiple goroutines.
type Client struct {
	base   string
	hc     *http.Client
	logger Logger
}

// NewClient creates a client rooted at the given API base URL.
func NewClient(base string, timeout time.Duration, logger Logger) *Client {
	return &Client{
		base:   base,
		hc:     &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Call performs one API request. A non-nil body is JSON-encoded; a
// non-nil auth contributes its headers. Responses outside 2xx become a
// RemoteError carrying the raw body, network failures a TransportError.
// Successful responses are decoded into a Result; an empty body yields
// an empty Result.
func (c *Client) Call(ctx context.Context, method, path string, body interface{}, auth *AuthContext) (Result, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if auth != nil {
		for key, values := range auth.Header {
			for _, value := range values {
				req.Header.Set(key, value)
			}
		}
	}

	c.logger.Debug("→ %s %s\n", method, path)
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	c.logger.Debug("← %s %s: %d\n", method, path, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	result := Result{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("failed to decode response from %s %s: %w", method, path, err)
		}
	}
	return result, nil
}

// Login authenticates a principal and returns its AuthContext.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthContext, error) {
	result, err := c.Call(ctx, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": username,
		"password": password,
	}, nil)
	if err != nil {
		return nil, err
	}
	token := stringField(result.Data(), "token")
	if token == "" {
		return nil, Assertf("login response carried no token for user %s", username)
	}
	return NewAuthContext(token), nil
}
