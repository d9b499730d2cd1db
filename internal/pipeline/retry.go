package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"go-data-explorer/internal/model"
)

// errNotRetryable marks fetch failures that another attempt cannot fix.
var errNotRetryable = errors.New("not retryable")

// fetchWithRetry GETs url and returns the whole body. Transport errors and
// 5xx/429 responses are retried with exponential backoff.
func fetchWithRetry(ctx context.Context, client *http.Client, url string, cfg model.RetryConfig, logger *slog.Logger) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries+1; attempt++ {
		body, err := fetchOnce(ctx, client, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if errors.Is(err, errNotRetryable) || ctx.Err() != nil || attempt > cfg.MaxRetries {
			break
		}

		delay := nextRetryDelay(cfg, attempt)
		logger.Warn("fetch failed, retrying",
			slog.String("url", url),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

func fetchOnce(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid source url: %w: %w", err, errNotRetryable)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to GET source: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("source responded %s", resp.Status)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("source responded %s: %w", resp.Status, errNotRetryable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read source body: %w", err)
	}
	return body, nil
}

// nextRetryDelay calculates exponential backoff capped at MaxDelay
func nextRetryDelay(cfg model.RetryConfig, attempt int) time.Duration {
	factor := cfg.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(factor, float64(attempt-1)))
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}
