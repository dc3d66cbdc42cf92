package display

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

	"github.com/PaesslerAG/jsonpath"
)

// DefaultTokenPath locates the token in a login response
const DefaultTokenPath = "$.access_token"

const maxResponseSize = 1 << 20

// Token authorizes screen updates
type Token string

// ScreenUpdate is the screen payload. Empty optional fields are omitted.
type ScreenUpdate struct {
	Content string `json:"content"`
	Label   string `json:"label,omitempty"`
	Name    string `json:"name,omitempty"`
	ModelID string `json:"model_id,omitempty"`
}

// Ack is the device's answer to a screen update. Body is the decoded JSON
// document, or the raw text when the answer is not JSON.
type Ack struct {
	StatusCode int
	Body       any
}

// Client talks to the display backend
type Client struct {
	baseURL   string
	tokenPath string
	http      *http.Client
}

// NewClient creates a client. timeout bounds each request; zero means no
// client-side timeout.
func NewClient(baseURL string, timeout time.Duration, tokenPath string) *Client {
	if tokenPath == "" {
		tokenPath = DefaultTokenPath
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tokenPath: tokenPath,
		http:      &http.Client{Timeout: timeout},
	}
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, username, password string) (Token, error) {
	payload := map[string]string{"login": username, "password": password}

	status, body, err := c.do(ctx, http.MethodPost, c.baseURL+"/login", "", payload)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	if status < 200 || status > 299 {
		return "", &AuthError{StatusCode: status, Err: fmt.Errorf("login rejected: %s", snippet(body))}
	}

	token, err := c.extractToken(body)
	if err != nil {
		return "", &AuthError{StatusCode: status, Err: err}
	}
	return token, nil
}

func (c *Client) extractToken(body []byte) (Token, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("%w: response is not JSON", ErrNoToken)
	}

	val, err := jsonpath.Get(c.tokenPath, doc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	// filter expressions yield a list, keep the first match
	if list, ok := val.([]any); ok {
		if len(list) == 0 {
			return "", ErrNoToken
		}
		val = list[0]
	}

	token, ok := val.(string)
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrNoToken
	}
	return Token(token), nil
}

// UpdateScreen replaces the content of a screen
func (c *Client) UpdateScreen(ctx context.Context, token Token, screenID string, update ScreenUpdate) (Ack, error) {
	addr := fmt.Sprintf("%s/api/screens/%s", c.baseURL, url.PathEscape(screenID))
	payload := map[string]ScreenUpdate{"screen": update}

	status, body, err := c.do(ctx, http.MethodPatch, addr, string(token), payload)
	if err != nil {
		return Ack{}, err
	}
	if status < 200 || status > 299 {
		return Ack{}, &DeviceRejectedError{StatusCode: status, Body: string(body)}
	}

	ack := Ack{StatusCode: status}
	if len(bytes.TrimSpace(body)) == 0 {
		return ack, nil
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		ack.Body = string(body)
	} else {
		ack.Body = doc
	}
	return ack, nil
}

// do sends a JSON request and returns the status and body. Only failures to
// get a response are returned as errors, always as *TransportError.
func (c *Client) do(ctx context.Context, method, addr, authorization string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, addr, bytes.NewReader(data))
	if err != nil {
		return 0, nil, &TransportError{Op: method + " " + addr, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, &TransportError{Op: "read " + req.URL.Path, Err: err}
	}
	return resp.StatusCode, body, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "empty response"
	}
	return s
}
