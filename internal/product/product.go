// Package product binds each supported satellite product to its archive:
// the resolver strategy that locates files, the authentication it needs,
// and the filename tokens its output templates may use.
package product

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/observingClouds/satdownload/internal/catalog"
	"github.com/observingClouds/satdownload/internal/config"
	"github.com/observingClouds/satdownload/internal/outname"
	"github.com/observingClouds/satdownload/internal/region"
	"github.com/observingClouds/satdownload/internal/resolver"
)

// Params carries the per-invocation knobs a product resolver may need.
type Params struct {
	Region *region.Region
	// Product overrides the configured archive product (GOES16 only),
	// e.g. ABI-L2-CMIPF.
	Product string
	// Mesoregion selects the mesoscale scene (1 or 2) for GOES16 meso
	// products; 0 means no scene filtering.
	Mesoregion int
}

// Product describes one supported satellite product.
type Product struct {
	Name            string
	Description     string
	NeedsAuth       bool
	DefaultTemplate string
	// Tokens are the {...} placeholders valid in output templates.
	Tokens []string
	// SelectorToken names the token filled from the unit selector
	// ({channel}, {variable}); empty when the product has no selector.
	SelectorToken string
	// Coverage bounds the area the product observes; nil means global. A
	// requested region outside it can never yield data, so runs reject it
	// up front.
	Coverage *region.Region
	// NewResolver builds the resolver for one run.
	NewResolver func(ctx context.Context, cfg *config.Config, p Params) (resolver.Resolver, error)
}

// Values returns the template values for one unit: region bounds, the
// selector token, and the GOES16 product/mesoregion tokens when set.
func (p *Product) Values(params Params, selector string) outname.Values {
	vals := outname.Values{}
	if params.Region != nil {
		for k, v := range params.Region.TokenValues() {
			vals[k] = v
		}
	}
	if p.SelectorToken != "" {
		vals[p.SelectorToken] = selector
	}
	if params.Product != "" {
		vals["product"] = params.Product
	}
	if params.Mesoregion > 0 {
		vals["mesoregion"] = strconv.Itoa(params.Mesoregion)
	}
	return vals
}

// Registry holds the known products in registration order.
type Registry struct {
	order  []string
	byName map[string]*Product
}

// Register adds a product; duplicate names panic since registration is
// static.
func (r *Registry) Register(p *Product) {
	if r.byName == nil {
		r.byName = make(map[string]*Product)
	}
	if _, dup := r.byName[p.Name]; dup {
		panic("product: duplicate registration of " + p.Name)
	}
	r.order = append(r.order, p.Name)
	r.byName[p.Name] = p
}

// Lookup returns the product registered under name.
func (r *Registry) Lookup(name string) (*Product, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, eris.Errorf("product: unknown product %q (known: %s)", name, strings.Join(r.order, ", "))
	}
	return p, nil
}

// Names returns the registered product names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// BuiltIn returns the registry of supported products.
func BuiltIn() *Registry {
	r := &Registry{}
	r.Register(goes16())
	r.Register(airs())
	r.Register(gridsat())
	return r
}

func goes16() *Product {
	return &Product{
		Name:            "goes16",
		Description:     "GOES-16 ABI imagery from the public object-store archive",
		DefaultTemplate: "GOES16_%Y%m%d_%H%M_C{channel}.nc",
		Tokens:          []string{"channel", "product", "mesoregion", "N1", "N2", "E1", "E2"},
		SelectorToken:   "channel",
		// GOES-East full disk: the Americas and adjacent oceans as seen
		// from 75.2W.
		Coverage: &region.Region{LatMin: -81.33, LatMax: 81.33, LonMin: -156.3, LonMax: 6.3},
		NewResolver: func(ctx context.Context, cfg *config.Config, p Params) (resolver.Resolver, error) {
			prod := p.Product
			if prod == "" {
				prod = cfg.GOES16.Product
			}
			lister, err := catalog.NewS3Lister(ctx, catalog.S3Options{
				Bucket:   cfg.GOES16.Bucket,
				Product:  prod,
				Region:   cfg.GOES16.AWSRegion,
				Endpoint: cfg.GOES16.Endpoint,
			})
			if err != nil {
				return nil, err
			}
			c := &resolver.Catalog{
				Lister:    lister,
				Tolerance: cfg.GOES16.Tolerance(),
				Match:     matchChannel,
			}
			if p.Mesoregion > 0 {
				c.Filter = mesoregionFilter(p.Mesoregion)
			}
			return c, nil
		},
	}
}

func airs() *Product {
	return &Product{
		Name:            "airs",
		Description:     "AIRS Level-3 daily retrievals from the EOSDIS OPeNDAP archive",
		NeedsAuth:       true,
		DefaultTemplate: "AIRS_%Y%m%d_{variable}.hdf",
		Tokens:          []string{"variable", "N1", "N2", "E1", "E2"},
		SelectorToken:   "variable",
		NewResolver: func(_ context.Context, cfg *config.Config, _ Params) (resolver.Resolver, error) {
			lister := catalog.NewOpendapLister(cfg.AIRS.BaseURL, cfg.Download.UserAgent, cfg.Download.Timeout())
			return &resolver.Catalog{
				Lister:    lister,
				Tolerance: cfg.AIRS.Tolerance(),
			}, nil
		},
	}
}

func gridsat() *Product {
	return &Product{
		Name:            "gridsat",
		Description:     "Gridsat-B1 infrared brightness-temperature grids",
		DefaultTemplate: "GRIDSAT-B1_%Y%m%d_%H.nc",
		Tokens:          []string{"N1", "N2", "E1", "E2"},
		NewResolver: func(_ context.Context, cfg *config.Config, _ Params) (resolver.Resolver, error) {
			var lister catalog.Lister
			if strings.HasPrefix(cfg.Gridsat.ArchiveURL, "ftp://") {
				lister = catalog.NewFTPLister(cfg.Gridsat.ArchiveURL, cfg.Download.Timeout())
			} else {
				lister = catalog.NewThreddsLister(cfg.Gridsat.ArchiveURL, cfg.Download.UserAgent, cfg.Download.Timeout())
			}
			return &resolver.Catalog{
				Lister:    lister,
				Tolerance: cfg.Gridsat.Tolerance(),
			}, nil
		},
	}
}

// GOES16 filenames encode the scan mode and channel, e.g.
// OR_ABI-L1b-RadF-M6C13_G16_s20193510630....
var (
	channelRe = regexp.MustCompile(`-M\d+C(\d{2})_`)
	sceneRe   = regexp.MustCompile(`(?:Rad|CMIP)M(\d)-`)
)

// matchChannel accepts entries whose encoded channel equals the selector.
// An empty selector accepts everything; with a selector set, entries
// without a channel code (some L2 products carry none) are rejected.
func matchChannel(e catalog.Entry, selector string) bool {
	if selector == "" {
		return true
	}
	m := channelRe.FindStringSubmatch(e.Name)
	if m == nil {
		return false
	}
	want, err := strconv.Atoi(selector)
	if err != nil {
		return false
	}
	return m[1] == fmt.Sprintf("%02d", want)
}

// mesoregionFilter keeps mesoscale entries of scene n; entries without a
// scene code pass through untouched.
func mesoregionFilter(n int) func(catalog.Entry) bool {
	want := strconv.Itoa(n)
	return func(e catalog.Entry) bool {
		m := sceneRe.FindStringSubmatch(e.Name)
		if m == nil {
			return true
		}
		return m[1] == want
	}
}
