// Package resolver turns a requested instant plus a product selector into
// the remote locations believed to hold matching data. Two strategies
// exist: deterministic URL construction for archives with a predictable
// layout, and catalog lookup with closest-timestamp matching for archives
// that must be listed.
package resolver

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/observingClouds/satdownload/internal/catalog"
	"github.com/observingClouds/satdownload/internal/resilience"
)

// Locator is a resolved remote address bound to one instant and selector.
type Locator struct {
	URL       string
	Timestamp time.Time
	// Size is the declared payload size, or -1 when unknown.
	Size int64
}

// Resolver maps (instant, selector) to zero or more locators. An empty
// result means the archive holds no matching data for the unit; it is
// reported as skipped, not as an error.
type Resolver interface {
	Resolve(ctx context.Context, ts time.Time, selector string) ([]Locator, error)
}

// Pattern resolves deterministically from a URL template containing
// strftime tokens and an optional {selector} placeholder. No network
// access is involved.
type Pattern struct {
	URLTemplate string
}

// Resolve expands the template for the instant and selector.
func (p *Pattern) Resolve(_ context.Context, ts time.Time, selector string) ([]Locator, error) {
	if p.URLTemplate == "" {
		return nil, eris.New("resolver: empty url template")
	}
	u := strftime.Format(p.URLTemplate, ts.UTC())
	u = strings.ReplaceAll(u, "{selector}", selector)
	return []Locator{{URL: u, Timestamp: ts, Size: -1}}, nil
}

// MatchFunc reports whether a catalog entry can serve the given selector
// (e.g. the GOES16 channel encoded in the filename).
type MatchFunc func(e catalog.Entry, selector string) bool

// Catalog resolves by listing the archive near the requested instant and
// picking the matching entry whose timestamp is closest, within Tolerance.
// Ties are broken toward the earlier entry. Listings for an identical
// (date, hour) pair are coalesced within a run; nothing is cached across
// runs since archive catalogs change between invocations.
type Catalog struct {
	Lister catalog.Lister
	// Tolerance is the maximum accepted |entry time - requested time|.
	Tolerance time.Duration
	// Match restricts entries to those serving the selector; nil accepts all.
	Match MatchFunc
	// Filter drops entries before matching (e.g. mesoregion scenes); nil
	// keeps all.
	Filter func(catalog.Entry) bool
	// Retry wraps the listing call; zero value uses the defaults.
	Retry resilience.RetryConfig

	mu    sync.Mutex
	sf    singleflight.Group
	cache map[string][]catalog.Entry
}

// Resolve returns the closest matching entry within tolerance, or an
// empty slice when the archive has nothing near the instant.
func (c *Catalog) Resolve(ctx context.Context, ts time.Time, selector string) ([]Locator, error) {
	entries, err := c.list(ctx, ts)
	if err != nil {
		return nil, err
	}

	var best *catalog.Entry
	var bestDelta time.Duration
	for i := range entries {
		e := entries[i]
		if c.Filter != nil && !c.Filter(e) {
			continue
		}
		if c.Match != nil && !c.Match(e, selector) {
			continue
		}
		delta := e.Timestamp.Sub(ts)
		if delta < 0 {
			delta = -delta
		}
		if delta > c.Tolerance {
			continue
		}
		// Equal deltas break toward the earlier entry; listings are not
		// guaranteed to arrive sorted.
		if best == nil || delta < bestDelta ||
			(delta == bestDelta && e.Timestamp.Before(best.Timestamp)) {
			best = &entries[i]
			bestDelta = delta
		}
	}

	if best == nil {
		zap.L().Debug("resolver: no entry within tolerance",
			zap.Time("requested", ts),
			zap.String("selector", selector),
			zap.Duration("tolerance", c.Tolerance),
		)
		return nil, nil
	}

	return []Locator{{URL: best.URL, Timestamp: best.Timestamp, Size: best.Size}}, nil
}

// list fetches the listing covering ts. Lookups for the same (date, hour)
// are coalesced: sequential repeats hit the cache, concurrent repeats
// share one in-flight call.
func (c *Catalog) list(ctx context.Context, ts time.Time) ([]catalog.Entry, error) {
	key := ts.UTC().Format("2006010215")

	c.mu.Lock()
	if c.cache == nil {
		c.cache = make(map[string][]catalog.Entry)
	}
	if entries, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return entries, nil
	}
	c.mu.Unlock()

	v, err, _ := c.sf.Do(key, func() (any, error) {
		cfg := c.Retry
		if cfg.OnRetry == nil {
			cfg.OnRetry = resilience.RetryLogger("catalog", "list")
		}
		entries, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]catalog.Entry, error) {
			return c.Lister.List(ctx, ts)
		})
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[key] = entries
		c.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "resolver: catalog listing")
	}
	return v.([]catalog.Entry), nil
}
