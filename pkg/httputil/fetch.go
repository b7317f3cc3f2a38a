package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxFetchBytes caps the size of a fetched ingest document.
const maxFetchBytes = 32 << 20

// defaultClient bounds the total time of a single request attempt.
var defaultClient = &http.Client{Timeout: 30 * time.Second}

// Fetch downloads url with the default retry policy. Server errors and
// transport failures are retried; client errors (4xx) fail fast.
func Fetch(ctx context.Context, url string) ([]byte, error) {
	return FetchWithClient(ctx, defaultClient, url)
}

// FetchWithClient is Fetch with a caller-supplied client.
func FetchWithClient(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	return fetch(ctx, client, url, 3, time.Second)
}

func fetch(ctx context.Context, client *http.Client, url string, attempts int, delay time.Duration) ([]byte, error) {
	var body []byte
	err := Retry(ctx, attempts, delay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return &RetryableError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return &RetryableError{Err: fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)}
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
		if err != nil {
			return &RetryableError{Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
