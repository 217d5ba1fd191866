package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Provider generates text from a prompt. Implementations wrap a hosted
// generative-AI endpoint.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a one-shot completion request
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

const maxRetries = 3

// doWithRetry issues a request, retrying on 429 and 5xx responses with a
// short linear backoff. The request is rebuilt per attempt because bodies
// are consumed.
func doWithRetry(ctx context.Context, client *http.Client, build func() (*http.Request, error)) (*http.Response, error) {
	var lastStatus int
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastStatus = resp.StatusCode
			_ = resp.Body.Close()
			continue
		}

		return resp, nil
	}
	return nil, fmt.Errorf("request failed after %d attempts, last status %d", maxRetries+1, lastStatus)
}
