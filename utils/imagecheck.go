package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

var ErrImageUnreachable = errors.New("image URL is not reachable")

// ImageChecker confirms that image URLs answer a HEAD request before a trend
// referencing them is stored.
type ImageChecker struct {
	Client   *http.Client
	Attempts int
	Interval time.Duration
}

func NewImageChecker(attempts int, interval time.Duration) *ImageChecker {
	if attempts < 1 {
		attempts = 1
	}
	return &ImageChecker{
		Client:   &http.Client{Timeout: 5 * time.Second},
		Attempts: attempts,
		Interval: interval,
	}
}

// CheckAll verifies every URL in order and stops at the first unreachable one.
func (ic *ImageChecker) CheckAll(ctx context.Context, urls []string) error {
	for _, u := range urls {
		if err := ic.Check(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (ic *ImageChecker) Check(ctx context.Context, url string) error {
	backoff := retry.WithMaxRetries(uint64(ic.Attempts-1), retry.NewConstant(ic.Interval))

	var lastErr error
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			// A malformed URL will not get better with retries.
			lastErr = err
			return err
		}
		resp, err := ic.Client.Do(req)
		if err != nil {
			lastErr = err
			return retry.RetryableError(err)
		}
		resp.Body.Close()
		if resp.StatusCode >= http.StatusBadRequest {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			return retry.RetryableError(lastErr)
		}
		return nil
	})
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return fmt.Errorf("%w: %s (%v)", ErrImageUnreachable, url, lastErr)
	}
	return nil
}
