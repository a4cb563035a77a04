package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"adventure-agent/internal/domain"
)

// chatRequest is the minimal request shape for the Chat Completions endpoint.
type chatRequest struct {
	Model     string               `json:"model"`
	Messages  []domain.ChatMessage `json:"messages"`
	MaxTokens int                  `json:"max_tokens,omitempty"`
}

// chatResponse is the minimal response shape returned by the Chat Completions
// endpoint.
type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Choices []struct {
		Index   int                `json:"index"`
		Message domain.ChatMessage `json:"message"`
	} `json:"choices"`
}

// Getter resolves the API key by logical name.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused OpenAI-compatible client for chat completions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	getter     Getter
	keyName    string

	keyOnce sync.Once
	apiKey  string
	keyErr  error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = strings.TrimSpace(baseURL)
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client that resolves its API key through the given
// Getter. The key is fetched on the first completion and reused for the
// lifetime of the process.
func NewClient(getter Getter, keyName string, opts ...Option) (*Client, error) {
	if getter == nil {
		return nil, errors.New("openai: key getter must not be nil")
	}
	keyName = strings.TrimSpace(keyName)
	if keyName == "" {
		return nil, errors.New("openai: key name must not be empty")
	}
	c := &Client{
		baseURL:    "https://api.openai.com/v1",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		getter:     getter,
		keyName:    keyName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete sends messages to the Chat Completions endpoint and returns the
// generated text. Absent output (no choices, empty content) is returned as an
// empty string without error; the caller decides whether silence is a no-op.
func (c *Client) Complete(ctx context.Context, model string, messages []domain.ChatMessage, maxTokens int) (string, error) {
	if model == "" {
		return "", errors.New("openai: model must not be empty")
	}
	if len(messages) == 0 {
		return "", errors.New("openai: messages must not be empty")
	}

	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return "", fmt.Errorf("openai: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}

	var payload chatResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("openai: decode response: %w", decErr)
	}
	if len(payload.Choices) == 0 {
		return "", nil
	}
	return payload.Choices[0].Message.Content, nil
}

// resolveAPIKey fetches the API key on the first call and returns the cached
// result on every subsequent call within the same process lifetime.
func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	c.keyOnce.Do(func() {
		key, err := c.getter.GetParameter(ctx, c.keyName)
		if err != nil {
			c.keyErr = fmt.Errorf("openai: fetch api key: %w", err)
			return
		}
		if strings.TrimSpace(key) == "" {
			c.keyErr = errors.New("openai: api key is empty")
			return
		}
		c.apiKey = key
	})
	return c.apiKey, c.keyErr
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
