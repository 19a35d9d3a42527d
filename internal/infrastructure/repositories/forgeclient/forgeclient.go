// Package forgeclient provides the HTTP client shared by every forge API
// implementation.
package forgeclient

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	retryMax     = 3
	retryWaitMin = 1 * time.Second
	retryWaitMax = 15 * time.Second
)

// NewHTTPClient returns a client that retries transient failures (5xx and
// 429) with exponential backoff. Forge APIs rate-limit aggressively, and a
// scheduled run should ride out short windows instead of failing the job.
func NewHTTPClient() *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.Logger = nil
	return client.StandardClient()
}
