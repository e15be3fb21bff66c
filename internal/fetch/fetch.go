// Package fetch retrieves resolved archive files over HTTP(S) or FTP with
// retry on transient failures, per-host rate limiting, and payload size
// validation. Files are written through a temporary path and renamed into
// place so an interrupted transfer never leaves a truncated output behind.
package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/observingClouds/satdownload/internal/resilience"
)

// Credentials hold the username/password for archives that require
// authenticated access. They are passed in explicitly; the fetcher never
// reads ambient process state.
type Credentials struct {
	Username string
	Password string
}

// IsZero reports whether no credentials were supplied.
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Password == ""
}

// Options configures the Fetcher.
type Options struct {
	UserAgent   string
	Timeout     time.Duration
	Retry       resilience.RetryConfig
	Credentials Credentials

	// HostRate limits requests per second per archive host.
	HostRate  rate.Limit
	HostBurst int
}

// Fetcher downloads archive files. It is safe for concurrent use.
type Fetcher struct {
	client *http.Client
	opts   Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Fetcher with the given options.
func New(opts Options) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "satdownload/1.0"
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = resilience.DefaultRetryConfig()
	}
	if opts.HostRate == 0 {
		opts.HostRate = 4
	}
	if opts.HostBurst == 0 {
		opts.HostBurst = 8
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(f.opts.HostRate, f.opts.HostBurst)
		f.limiters[host] = lim
	}
	return lim
}

// AlreadySatisfied reports whether dest already holds the expected file:
// it exists, is non-empty, and matches the declared size when one is known
// (wantSize < 0 means unknown). Re-runs skip such units without a fetch.
func (f *Fetcher) AlreadySatisfied(wantSize int64, dest string) bool {
	info, err := os.Stat(dest)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return false
	}
	return wantSize < 0 || info.Size() == wantSize
}

// Fetch retrieves rawURL into dest and returns the bytes written. wantSize
// is the size declared by the catalog, or -1 when unknown. Transient
// failures (including size mismatches) are retried with backoff up to the
// configured budget; not-found and authentication rejections are returned
// immediately as NotFoundError / AuthError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, wantSize int64, dest string) (int64, error) {
	cfg := f.opts.Retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger(hostOf(rawURL), "fetch")
	}

	n, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (int64, error) {
		return f.fetchOnce(ctx, rawURL, wantSize, dest)
	})
	if err != nil {
		var nf *NotFoundError
		var ae *AuthError
		if errors.As(err, &nf) || errors.As(err, &ae) {
			return 0, err
		}
		return 0, &TransientFetchError{URL: rawURL, Attempts: cfg.MaxAttempts, Err: err}
	}

	zap.L().Debug("fetched",
		zap.String("url", rawURL),
		zap.String("dest", dest),
		zap.Int64("bytes", n),
	)
	return n, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string, wantSize int64, dest string) (int64, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, eris.Wrapf(err, "fetch: parse url %q", rawURL)
	}

	switch u.Scheme {
	case "http", "https":
		return f.httpFetch(ctx, rawURL, u.Host, wantSize, dest)
	case "ftp":
		return f.ftpFetch(ctx, rawURL, wantSize, dest)
	default:
		return 0, eris.Errorf("fetch: unsupported scheme %q in %s", u.Scheme, rawURL)
	}
}

func (f *Fetcher) httpFetch(ctx context.Context, rawURL, host string, wantSize int64, dest string) (int64, error) {
	if err := f.limiterFor(host).Wait(ctx); err != nil {
		return 0, eris.Wrap(err, "fetch: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	if !f.opts.Credentials.IsZero() {
		req.SetBasicAuth(f.opts.Credentials.Username, f.opts.Credentials.Password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, eris.Wrapf(err, "fetch: get %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to the body copy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return 0, &NotFoundError{URL: rawURL}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return 0, &AuthError{URL: rawURL, Status: resp.StatusCode}
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return 0, resilience.NewTransientError(eris.Errorf("http %d from %s", resp.StatusCode, rawURL), resp.StatusCode)
	default:
		return 0, eris.Errorf("fetch: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return writeBody(resp.Body, resp.ContentLength, wantSize, dest)
}

// writeBody copies the payload to a temp file next to dest, validates it is
// non-empty and matches the declared/expected size, then renames it into
// place. Validation failures are transient so the transfer is retried.
func writeBody(r io.Reader, declared, wantSize int64, dest string) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".satdownload-*")
	if err != nil {
		return 0, eris.Wrapf(err, "fetch: create temp file near %s", dest)
	}
	tmpName := tmp.Name()
	discard := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		discard()
		return 0, resilience.NewTransientError(eris.Wrap(err, "fetch: read payload"), 0)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, eris.Wrap(err, "fetch: close temp file")
	}

	if n == 0 {
		_ = os.Remove(tmpName)
		return 0, resilience.NewTransientError(eris.New("fetch: empty payload"), 0)
	}
	if wantSize >= 0 && n != wantSize {
		_ = os.Remove(tmpName)
		return 0, resilience.NewTransientError(eris.Errorf("fetch: size mismatch: got %d bytes, catalog declared %d", n, wantSize), 0)
	}
	if wantSize < 0 && declared >= 0 && n != declared {
		_ = os.Remove(tmpName)
		return 0, resilience.NewTransientError(eris.Errorf("fetch: size mismatch: got %d bytes, server declared %d", n, declared), 0)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return 0, eris.Wrap(err, "fetch: chmod temp file")
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return 0, eris.Wrapf(err, "fetch: rename into %s", dest)
	}
	return n, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
