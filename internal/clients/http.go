// Package clients fetches the third-party payloads the bot answers with: the
// garbage-truck realtime feed, weather forecasts, COVID-19 screening counts,
// the public-toilet registry and lottery results.
//
// Every client owns an http.Client with an explicit timeout and builds its
// requests with http.NewRequestWithContext, so a slow upstream can never hold
// a webhook delivery open past its deadline. There are no retries.
package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	httpMaxIdleConns    = 10
	httpIdleConnTimeout = 30 * time.Second
	maxBodyBytes        = 32 << 20
)

// ErrUpstreamStatus is wrapped by every non-2xx response error.
var ErrUpstreamStatus = errors.New("unexpected upstream status")

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        httpMaxIdleConns,
		MaxIdleConnsPerHost: httpMaxIdleConns,
		IdleConnTimeout:     httpIdleConnTimeout,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// get performs a GET and returns the body of a 2xx response.
func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "nearbot/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d from %s", ErrUpstreamStatus, resp.StatusCode, req.URL.Host)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
