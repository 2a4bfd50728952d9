package advisor

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

	"github.com/muurk/evlease/internal/version"
)

const (
	// DefaultEndpoint is the public generative language API
	DefaultEndpoint = "https://generativelanguage.googleapis.com"

	// DefaultModel is the model the assistant talks to
	DefaultModel = "gemini-3-flash-preview"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error response is read
	maxErrorBody = 4096
)

// Advisor answers a question about a subject. Implementations may fail; the
// caller decides what the user sees in that case.
type Advisor interface {
	Advise(ctx context.Context, prompt string, subject Subject) (string, error)
}

// Client is an HTTP client for the generateContent endpoint.
type Client struct {
	// Endpoint is the API base URL (e.g., "https://generativelanguage.googleapis.com")
	Endpoint string

	// Model is the model name used in the request path
	Model string

	// APIKey is sent in the x-goog-api-key header
	APIKey string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a client with default endpoint, model and timeout.
func NewClient(apiKey string) *Client {
	return &Client{
		Endpoint:   DefaultEndpoint,
		Model:      DefaultModel,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// ModelName reports the configured model.
func (c *Client) ModelName() string {
	return c.Model
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) generateURL() (string, error) {
	if c.Endpoint == "" {
		return "", NewConfigError("advisor endpoint is not set")
	}
	base, err := url.Parse(strings.TrimRight(c.Endpoint, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", NewConfigError(fmt.Sprintf("invalid advisor endpoint %q", c.Endpoint))
	}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", base.String(), url.PathEscape(c.Model)), nil
}

// Advise sends the prompt with its subject context and returns the model text.
// There are no retries; a failed request returns a typed *AdviceError.
func (c *Client) Advise(ctx context.Context, prompt string, subject Subject) (string, error) {
	if c.APIKey == "" {
		return "", NewConfigError("no API key configured")
	}

	endpoint, err := c.generateURL()
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: Prompt(subject, prompt)}},
		}},
	})
	if err != nil {
		return "", NewParseError("failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", NewNetworkError("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", NewNetworkError("assistant unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewNetworkError("failed to read response", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", NewParseError("failed to parse response JSON", err)
	}

	var text strings.Builder
	for _, cand := range parsed.Candidates {
		for _, p := range cand.Content.Parts {
			text.WriteString(p.Text)
		}
		if text.Len() > 0 {
			break
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", NewEmptyError("response contained no text")
	}
	return text.String(), nil
}

func statusError(resp *http.Response) *AdviceError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
	var apiErr apiErrorResponse
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewAuthError(resp.StatusCode, message)
	default:
		return NewHTTPError(resp.StatusCode, message)
	}
}
