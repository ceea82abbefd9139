// internal/adapters/searchapi/client.go
package searchapi

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"trip_hotel/internal/adapters/observability"
	"trip_hotel/internal/domain"
)

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

// New returns a client for the hotel search endpoint at base
// (e.g. "http://localhost:8080").
func New(base string, rps int) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("search API base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

// Search fetches one page. A cancelled ctx aborts the HTTP call and returns ctx.Err().
func (c *Client) Search(ctx context.Context, q domain.SearchQuery) (domain.SearchPage, error) {
	var out domain.SearchPage
	start := time.Now()
	status, err := c.get(ctx, c.base+"/v1/hotels?"+q.Values().Encode(), &out)
	observability.ObserveExternal("search", "/v1/hotels", status, time.Since(start))
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Debug().Err(err).Str("err_type", observability.LabelErr(err)).Int("page", q.Page).Msg("search request failed")
		}
		return domain.SearchPage{}, err
	}
	if out.Items == nil && status != http.StatusNoContent {
		return domain.SearchPage{}, fmt.Errorf("search page %d: missing data: %w", q.Page, domain.ErrMalformedPayload)
	}
	if err := out.Validate(); err != nil {
		return domain.SearchPage{}, err
	}
	return out, nil
}

func (c *Client) Hotel(ctx context.Context, id int64) (domain.HotelView, error) {
	var out domain.HotelView
	start := time.Now()
	status, err := c.get(ctx, fmt.Sprintf("%s/v1/hotels/%d", c.base, id), &out)
	observability.ObserveExternal("search", "/v1/hotels/{id}", status, time.Since(start))
	return out, err
}

// ---- Internals ----

var ErrRateLimited = errors.New("search api: rate limited")

// StatusError is a non-retryable, non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status %d: %s", e.Code, e.Body)
}

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
// It returns the last HTTP status seen (0 when no response arrived).
func (c *Client) get(ctx context.Context, url string, out any) (int, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return 0, err
	}

	var lastErr error
	status := 0
	for i := 0; i < 3; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "trip-hotel/1.0")
		req.Header.Set("X-Request-Id", uuid.NewString())

		resp, err := c.hc.Do(req)
		if err != nil {
			// network error or context canceled
			if ctx.Err() != nil {
				return status, ctx.Err()
			}
			lastErr = err
			if i < 2 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return status, ctx.Err()
			}
			return status, lastErr
		}
		status = resp.StatusCode

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				if ctx.Err() != nil {
					return status, ctx.Err()
				}
				return status, fmt.Errorf("decode: %v: %w", err, domain.ErrMalformedPayload)
			}
			return status, nil

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return status, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return status, domain.ErrNotFound

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = ErrRateLimited
			}
			if i < 2 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return status, ctx.Err()
			}
			return status, lastErr

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return status, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		}
	}

	return status, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (100ms, 200ms, ...) with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
