package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mcoot/trucogame/internal/api/request"
	"github.com/mcoot/trucogame/internal/api/response"
)

// Client is an HTTP client for the room API
type Client struct {
	baseURL    string
	token      string
	verbose    bool
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetVerbose logs each request to stderr
func (c *Client) SetVerbose(v bool) {
	c.verbose = v
}

// SetToken updates the client's token
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError represents an error response from the API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) String() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Do performs an HTTP request
func (c *Client) Do(method, path string, body, result any) error {
	target := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if c.verbose {
		_, _ = fmt.Fprintf(os.Stderr, "> %s %s\n", method, target)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return fmt.Errorf("%s", errResp.Error.String())
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request
func (c *Client) Get(path string, result any) error {
	return c.Do(http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(path string, body, result any) error {
	return c.Do(http.MethodPost, path, body, result)
}

func roomPath(code, action string) string {
	return "/api/v1/rooms/" + url.PathEscape(code) + "/" + action
}

// Join takes a seat in the room under name
func (c *Client) Join(code, name string) (*response.JoinResponse, error) {
	var result response.JoinResponse
	if err := c.Post(roomPath(code, "join"), request.JoinRequest{Name: name}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// State fetches the caller's view of the room
func (c *Client) State(code string) (*response.StateResponse, error) {
	var result response.StateResponse
	if err := c.Get(roomPath(code, "state"), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Play plays the card at index from the caller's hand
func (c *Client) Play(code string, index int, hidden bool) (*response.StateResponse, error) {
	var result response.StateResponse
	body := request.PlayRequest{CardIndex: &index, Hidden: hidden}
	if err := c.Post(roomPath(code, "play"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CallTruco asks for or raises the round value
func (c *Client) CallTruco(code string) (*response.StateResponse, error) {
	var result response.StateResponse
	if err := c.Post(roomPath(code, "truco"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RespondTruco accepts or refuses a pending call
func (c *Client) RespondTruco(code string, accept bool) (*response.StateResponse, error) {
	var result response.StateResponse
	body := request.RespondTrucoRequest{Accept: &accept}
	if err := c.Post(roomPath(code, "truco/respond"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// NewRound deals the next round once the current one is over
func (c *Client) NewRound(code string) (*response.StateResponse, error) {
	var result response.StateResponse
	if err := c.Post(roomPath(code, "new-round"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Leave vacates the caller's seat
func (c *Client) Leave(code string) (*response.LeaveResponse, error) {
	var result response.LeaveResponse
	if err := c.Post(roomPath(code, "leave"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks the server
func (c *Client) Health() (*response.HealthResponse, error) {
	var result response.HealthResponse
	if err := c.Get("/api/v1/health", &result); err != nil {
		return nil, err
	}
	return &result, nil
}
