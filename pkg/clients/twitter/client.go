package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"launchdeck/pkg/models"
)

const defaultBaseURL = "https://api.twitter.com"

// APIError is a structured rejection returned by the posting API. Transport
// and protocol failures are returned as plain errors instead.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
	Messages   []string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("twitter returned status %d: %s", e.StatusCode, e.Detail)
	}
	if len(e.Messages) > 0 {
		return fmt.Sprintf("twitter returned status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("twitter returned status %d", e.StatusCode)
}

// Client posts to the X/Twitter v2 API on behalf of one account, signing
// requests with that account's OAuth1 user credentials.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout overrides the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// NewClient builds a posting client from an account's stored credentials.
// It fails when any of the four secrets is missing.
func NewClient(creds models.PostingCredentials, opts ...Option) (*Client, error) {
	if missing := creds.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("incomplete posting credentials: missing %s", strings.Join(missing, ", "))
	}

	oauthConfig := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)

	httpClient := oauthConfig.Client(oauth1.NoContext, token)
	httpClient.Timeout = 15 * time.Second

	c := &Client{
		baseURL: defaultBaseURL,
		client:  httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type createTweetRequest struct {
	Text string `json:"text"`
}

type createTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"errors"`
}

// CreateTweet posts text and returns the id assigned by the API.
// A decodable API-level rejection is returned as *APIError; anything else
// (network failure, undecodable body) is a plain error.
func (c *Client) CreateTweet(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(createTweetRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("marshal tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post tweet: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded createTweetResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr != nil {
			return "", fmt.Errorf("twitter returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return "", apiError(resp.StatusCode, decoded)
	}

	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if decoded.Data.ID == "" {
		// 2xx without an id is still a rejection as far as callers care.
		return "", apiError(resp.StatusCode, decoded)
	}
	return decoded.Data.ID, nil
}

func apiError(status int, decoded createTweetResponse) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Title:      decoded.Title,
		Detail:     decoded.Detail,
	}
	for _, e := range decoded.Errors {
		msg := e.Message
		if msg == "" {
			msg = e.Detail
		}
		if msg != "" {
			apiErr.Messages = append(apiErr.Messages, msg)
		}
	}
	return apiErr
}
