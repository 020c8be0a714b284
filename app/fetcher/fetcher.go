package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	slogctx "github.com/veqryn/slog-context"
)

// ErrNotHTML is returned when a response's Content-Type is not an HTML type.
var ErrNotHTML = errors.New("response is not HTML")

// ErrBotChallenge is returned when a page looks like an anti-bot interstitial
// and carries no usable content.
var ErrBotChallenge = errors.New("bot challenge page detected")

// RetryableError wraps a transient failure (connection error or one of the
// retryable HTTP statuses). The fetcher retries these with backoff.
type RetryableError struct {
	StatusCode int
	Err        error
}

func (e *RetryableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transient failure (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transient failure: %v", e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

var retryableStatuses = []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout}

// ChallengeDetector reports whether a response body looks like an anti-bot
// challenge page. Detectors only flag the page; the fetch still succeeds if
// enough visible text is present despite the challenge markup.
type ChallengeDetector func(body string) bool

// CloudflareChallenge matches the wording of Cloudflare's
// "checking your browser" interstitial.
func CloudflareChallenge(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "cloudflare") &&
		(strings.Contains(lower, "checking your browser") || strings.Contains(lower, "please wait"))
}

// A challenge page with less visible text than this is treated as a failed fetch.
const challengeTextThreshold = 100

const (
	connectTimeout = 10 * time.Second
	requestTimeout = 25 * time.Second
)

type Fetcher struct {
	UserAgent   string
	MaxAttempts int
	Detector    ChallengeDetector
	// Backoff returns the pause before retrying attempt n (0-indexed).
	Backoff func(attempt int) time.Duration
}

func New(userAgent string) *Fetcher {
	return &Fetcher{
		UserAgent:   userAgent,
		MaxAttempts: 5,
		Detector:    CloudflareChallenge,
		Backoff:     defaultBackoff,
	}
}

func defaultBackoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// Fetch retrieves and parses a single page. Transient failures are retried
// with exponential backoff up to MaxAttempts; all other failures are
// returned as-is so the caller can decide whether to skip the page.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var lastErr error

	for attempt := 0; attempt < f.MaxAttempts; attempt++ {
		doc, err := f.fetchOnce(pageURL)
		if err == nil {
			return doc, nil
		}

		var retryable *RetryableError
		if !errors.As(err, &retryable) {
			return nil, err
		}
		lastErr = err

		if attempt < f.MaxAttempts-1 {
			wait := f.Backoff(attempt)
			slogctx.Warn(ctx, "Retrying fetch after transient failure", "url", pageURL, "attempt", attempt+1, "wait", wait, "error", err)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("fetch failed after %d attempts: %w", f.MaxAttempts, lastErr)
}

func (f *Fetcher) fetchOnce(pageURL string) (*goquery.Document, error) {
	collector := colly.NewCollector()
	collector.IgnoreRobotsTxt = true
	collector.UserAgent = f.UserAgent
	collector.WithTransport(&http.Transport{
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	})
	collector.SetRequestTimeout(requestTimeout)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Upgrade-Insecure-Requests", "1")
		r.Headers.Set("Sec-Fetch-Dest", "document")
		r.Headers.Set("Sec-Fetch-Mode", "navigate")
		r.Headers.Set("Sec-Fetch-Site", "none")
		r.Headers.Set("Cache-Control", "max-age=0")
		r.Headers.Set("Referer", pageURL)
	})

	var (
		body        []byte
		contentType string
		statusCode  int
	)

	collector.OnResponse(func(resp *colly.Response) {
		body = resp.Body
		contentType = resp.Headers.Get("Content-Type")
	})

	collector.OnError(func(resp *colly.Response, err error) {
		if resp != nil {
			statusCode = resp.StatusCode
		}
	})

	if err := collector.Visit(pageURL); err != nil {
		if statusCode == 0 || slices.Contains(retryableStatuses, statusCode) {
			// Connection-level failures surface without a status code.
			return nil, &RetryableError{StatusCode: statusCode, Err: err}
		}
		return nil, err
	}

	collector.Wait()

	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("%w: Content-Type %q for %v", ErrNotHTML, contentType, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML from %v: %w", pageURL, err)
	}

	if f.Detector != nil && f.Detector(string(body)) {
		if len(strings.TrimSpace(doc.Text())) < challengeTextThreshold {
			return nil, ErrBotChallenge
		}
	}

	return doc, nil
}
