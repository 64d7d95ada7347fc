package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/user/moviedash-go/internal/config"
	"github.com/user/moviedash-go/internal/metrics"
	"golang.org/x/time/rate"
)

// statusError is a non-200 HTTP response
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP status %d", e.code)
}

// retryable reports whether a failed request may succeed on another attempt
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// HTTPFetcher implements Fetcher over plain HTTP
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	config  *config.FetchConfig
}

// NewHTTPFetcher creates a new HTTP fetcher instance
func NewHTTPFetcher(cfg *config.FetchConfig) (*HTTPFetcher, error) {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}

	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}

	return &HTTPFetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		config:  cfg,
	}, nil
}

// Fetch downloads the dataset and writes it to dest atomically
func (f *HTTPFetcher) Fetch(ctx context.Context, sourceURL, dest string) (*Result, error) {
	start := time.Now()

	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset URL: %w", err)
	}

	log.Info().Str("url", sourceURL).Str("dest", dest).Msg("Fetching dataset")

	body, contentType, err := f.fetchWithRetry(ctx, sourceURL)
	if err != nil {
		metrics.RecordError("fetch")
		return nil, err
	}

	finalURL := sourceURL
	if isHTML(contentType, body) {
		link, err := FindCSVLink(bytes.NewReader(body), base)
		if err != nil {
			metrics.RecordError("fetch")
			return nil, err
		}
		log.Info().Str("index", sourceURL).Str("url", link).Msg("Following CSV link from index page")

		body, _, err = f.fetchWithRetry(ctx, link)
		if err != nil {
			metrics.RecordError("fetch")
			return nil, err
		}
		finalURL = link
	}

	if err := writeAtomic(dest, body); err != nil {
		metrics.RecordError("fetch")
		return nil, err
	}

	duration := time.Since(start)
	metrics.RecordFetchDuration(duration)
	log.Info().
		Str("url", finalURL).
		Int("bytes", len(body)).
		Dur("duration", duration).
		Msg("Dataset fetched")

	return &Result{
		URL:      finalURL,
		Path:     dest,
		Bytes:    int64(len(body)),
		Duration: duration,
	}, nil
}

// fetchWithRetry fetches a URL with rate limiting and exponential backoff retry
func (f *HTTPFetcher) fetchWithRetry(ctx context.Context, targetURL string) ([]byte, string, error) {
	var lastErr error

	for attempt := 0; attempt <= f.config.MaxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, "", fmt.Errorf("rate limiter error: %w", err)
		}

		body, contentType, err := f.fetch(ctx, targetURL)
		if err == nil {
			return body, contentType, nil
		}

		lastErr = err
		if !retryable(err) {
			return nil, "", fmt.Errorf("fetch %s: %w", targetURL, err)
		}

		if attempt < f.config.MaxRetries {
			backoff := f.config.Backoff << attempt
			log.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", backoff).Str("url", targetURL).Msg("Fetch failed, retrying")
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// fetch performs a single HTTP request
func (f *HTTPFetcher) fetch(ctx context.Context, targetURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request error: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/csv,text/plain,text/html;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	log.Debug().
		Int("status", resp.StatusCode).
		Str("url", targetURL).
		Str("finalURL", resp.Request.URL.String()).
		Msg("HTTP response")

	if resp.StatusCode != http.StatusOK {
		return nil, "", &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read body error: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// writeAtomic writes data next to path and renames it into place
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".moviedash-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move dataset into place: %w", err)
	}
	return nil
}

// GetLimiter returns the rate limiter for testing purposes
func (f *HTTPFetcher) GetLimiter() *rate.Limiter {
	return f.limiter
}
