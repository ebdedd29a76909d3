package refcheck

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/starford/professor/internal/metrics"
)

// Failure reasons recorded on an Outcome.
const (
	ReasonInvalidURL       = "invalid URL format"
	ReasonTimeout          = "timeout"
	ReasonTrustedTimeout   = "timeout (trusted domain)"
	ReasonConnectionFailed = "connection failed"
	ReasonTooManyRedirects = "too many redirects"

	maxReasonLen = 100
	maxRedirects = 10
	maxBodyDrain = 64 << 10
)

const (
	DefaultUserAgent = "Mozilla/5.0 (compatible; Professor/1.0; +educational)"
	acceptHeader     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

var errTooManyRedirects = errors.New("stopped after too many redirects")

// Outcome is the result of probing one URL.
type Outcome struct {
	URL        string `json:"url"`
	Reachable  bool   `json:"is_reachable"`
	StatusCode int    `json:"status_code,omitempty"`
	Reason     string `json:"failure_reason,omitempty"`
}

// TrustPolicy reports whether a host gets leniency on timeouts.
type TrustPolicy interface {
	Contains(host string) bool
}

// Config holds link checker configuration.
type Config struct {
	Timeout        time.Duration     // Per-request timeout (default 10s)
	MaxConcurrency int               // Checks in flight per CheckAll call (default 5)
	UserAgent      string            // Sent on every probe
	RateLimit      float64           // Requests per second across all checks, 0 disables
	Transport      http.RoundTripper // Optional; defaults to a pooled clone of http.DefaultTransport
}

// Checker probes URLs for liveness through one shared pooled client.
type Checker struct {
	cfg     Config
	client  *http.Client
	trusted TrustPolicy
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewChecker creates a Checker. trusted may be nil, in which case no host
// gets timeout leniency.
func NewChecker(cfg Config, trusted TrustPolicy, logger *slog.Logger) *Checker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 5
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := cfg.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.MaxIdleConnsPerHost = cfg.MaxConcurrency
		transport = t
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Checker{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		trusted: trusted,
		limiter: limiter,
		logger:  logger,
	}
}

// CheckAll probes every URL concurrently, at most MaxConcurrency at a time,
// and returns once all checks have finished. out[i] belongs to urls[i].
func (c *Checker) CheckAll(ctx context.Context, urls []string) []Outcome {
	if len(urls) == 0 {
		return []Outcome{}
	}

	out := make([]Outcome, len(urls))
	sem := semaphore.NewWeighted(int64(c.cfg.MaxConcurrency))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Go(func() {
			if err := sem.Acquire(ctx, 1); err != nil {
				out[i] = Outcome{URL: u, Reason: truncate(err.Error())}
				return
			}
			defer sem.Release(1)
			out[i] = c.Check(ctx, u)
		})
	}
	wg.Wait()
	return out
}

// Check probes a single URL. Network failures never escape as errors; they
// are folded into the returned Outcome.
func (c *Checker) Check(ctx context.Context, rawURL string) Outcome {
	start := time.Now()
	out := c.check(ctx, rawURL)
	metrics.LinkCheckDuration.Observe(time.Since(start).Seconds())
	metrics.LinkChecks.WithLabelValues(outcomeLabel(out)).Inc()
	if !out.Reachable {
		c.logger.Debug("reference link unreachable",
			slog.String("url", rawURL),
			slog.Int("status", out.StatusCode),
			slog.String("reason", out.Reason))
	}
	return out
}

func (c *Checker) check(ctx context.Context, rawURL string) Outcome {
	host, ok := hostOf(rawURL)
	if !ok {
		return Outcome{URL: rawURL, Reason: ReasonInvalidURL}
	}
	trusted := c.trusted != nil && c.trusted.Contains(host)

	status, err := c.probe(ctx, http.MethodHead, rawURL)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = c.probe(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		return classify(rawURL, err, trusted)
	}
	return Outcome{URL: rawURL, Reachable: status < http.StatusBadRequest, StatusCode: status}
}

func (c *Checker) probe(ctx context.Context, method, rawURL string) (int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return 0, err
	}
	defer resp.Body.Close()
	// Drain a bounded amount so the connection can go back to the pool.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyDrain))
	return resp.StatusCode, nil
}

// hostOf returns the lowercased host of an absolute URL.
func hostOf(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	return host, true
}

func classify(rawURL string, err error, trusted bool) Outcome {
	switch {
	case errors.Is(err, errTooManyRedirects):
		return Outcome{URL: rawURL, Reason: ReasonTooManyRedirects}
	case isTimeout(err):
		if trusted {
			return Outcome{URL: rawURL, Reachable: true, Reason: ReasonTrustedTimeout}
		}
		return Outcome{URL: rawURL, Reason: ReasonTimeout}
	case isConnectionFailure(err):
		return Outcome{URL: rawURL, Reason: ReasonConnectionFailed}
	default:
		return Outcome{URL: rawURL, Reason: truncate(err.Error())}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxReasonLen {
		return s
	}
	return string([]rune(s)[:maxReasonLen])
}

func outcomeLabel(o Outcome) string {
	switch {
	case o.Reachable && o.Reason == ReasonTrustedTimeout:
		return "trusted_timeout"
	case o.Reachable:
		return "reachable"
	case o.StatusCode > 0:
		return "http_error"
	case o.Reason == ReasonTimeout:
		return "timeout"
	case o.Reason == ReasonConnectionFailed:
		return "connection_failed"
	case o.Reason == ReasonTooManyRedirects:
		return "too_many_redirects"
	case o.Reason == ReasonInvalidURL:
		return "invalid_url"
	default:
		return "error"
	}
}
