package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/observingClouds/satdownload/internal/download"
	"github.com/observingClouds/satdownload/internal/fetch"
	"github.com/observingClouds/satdownload/internal/outname"
	"github.com/observingClouds/satdownload/internal/product"
	"github.com/observingClouds/satdownload/internal/region"
	"github.com/observingClouds/satdownload/internal/resilience"
	"github.com/observingClouds/satdownload/internal/timerange"
)

var products = product.BuiltIn()

// sharedFlags are the flags every product subcommand accepts.
type sharedFlags struct {
	date        string
	region      []string
	windowStart int
	windowEnd   int
	step        int
	output      string
	workers     int
	manifest    string
}

func addSharedFlags(cmd *cobra.Command, f *sharedFlags) {
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "date or range, YYYYMMDD or YYYYMMDD-YYYYMMDD (required)")
	cmd.Flags().StringSliceVarP(&f.region, "region", "r", nil, "bounding box as lat-min,lat-max,lon-min,lon-max")
	cmd.Flags().IntVar(&f.windowStart, "window-start", 0, "first minute of day to request")
	cmd.Flags().IntVar(&f.windowEnd, "window-end", 0, "last minute of day to request")
	cmd.Flags().IntVar(&f.step, "step", 60, "minutes between requests within the window")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output filename template (strftime tokens + {...} placeholders)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "concurrent downloads (default from config)")
	cmd.Flags().StringVar(&f.manifest, "manifest", "", "write a YAML run manifest to this path")
	_ = cmd.MarkFlagRequired("date")
}

// runDownload is the shared body of every product subcommand.
func runDownload(cmd *cobra.Command, f *sharedFlags, prodName string, selectors []string, params product.Params, creds fetch.Credentials) error {
	ctx := cmd.Context()

	prod, err := products.Lookup(prodName)
	if err != nil {
		return err
	}

	if creds.IsZero() {
		creds = fetch.Credentials{
			Username: cfg.Credentials.Username,
			Password: cfg.Credentials.Password,
		}
	}
	if prod.NeedsAuth && creds.IsZero() {
		return eris.Errorf("%s requires credentials: pass -u/-p or set SATDOWNLOAD_CREDENTIALS_USERNAME / _PASSWORD", prodName)
	}

	if len(f.region) > 0 {
		reg, err := region.Parse(f.region)
		if err != nil {
			return err
		}
		if prod.Coverage != nil && !reg.Intersects(*prod.Coverage) {
			return eris.Errorf("region %v does not overlap the %s coverage area", f.region, prodName)
		}
		params.Region = &reg
	}

	spec, err := timerange.New(f.date, f.windowStart, f.windowEnd, f.step)
	if err != nil {
		return err
	}

	rawTemplate := f.output
	if rawTemplate == "" {
		rawTemplate = prod.DefaultTemplate
	}
	tmpl, err := outname.New(rawTemplate, prod.Tokens)
	if err != nil {
		return err
	}

	res, err := prod.NewResolver(ctx, cfg, params)
	if err != nil {
		return err
	}

	fetcher := fetch.New(fetch.Options{
		UserAgent:   cfg.Download.UserAgent,
		Timeout:     cfg.Download.Timeout(),
		Retry:       resilience.RetryConfig{MaxAttempts: cfg.Download.MaxRetries},
		Credentials: creds,
		HostRate:    rate.Limit(cfg.Download.HostRate),
		HostBurst:   cfg.Download.HostBurst,
	})

	workers := f.workers
	if workers == 0 {
		workers = cfg.Download.Workers
	}

	engine := &download.Engine{
		Resolver: res,
		Fetcher:  fetcher,
		Namer:    tmpl,
		Values: func(u download.Unit) outname.Values {
			return prod.Values(params, u.Selector)
		},
		Workers: workers,
	}

	summary, err := engine.Run(ctx, spec, selectors)
	if err != nil {
		return eris.Wrap(err, "download run")
	}

	if f.manifest != "" {
		if err := download.NewManifest(prodName, summary).Write(f.manifest); err != nil {
			zap.L().Error("manifest write failed", zap.String("path", f.manifest), zap.Error(err))
		}
	}

	printSummary(cmd.OutOrStdout(), summary)

	if summary.HasFailures() {
		return eris.Errorf("%d of %d units failed", summary.Failed, len(summary.Results))
	}
	return nil
}

func printSummary(w io.Writer, s *download.Summary) {
	fmt.Fprintf(w, "written %d, already present %d, skipped %d, failed %d\n",
		s.Written, s.Already, s.Skipped, s.Failed)
	for _, r := range s.Results {
		if r.Outcome != download.OutcomeFailed {
			continue
		}
		fmt.Fprintf(w, "  failed %s: %s: %v\n", r.Unit, errKind(r.Err), r.Err)
	}
}

// errKind labels a unit failure for the summary line.
func errKind(err error) string {
	var (
		notFound  *fetch.NotFoundError
		auth      *fetch.AuthError
		transient *fetch.TransientFetchError
		template  *outname.TemplateError
	)
	switch {
	case errors.As(err, &notFound):
		return "not-found"
	case errors.As(err, &auth):
		return "auth"
	case errors.As(err, &transient):
		return "transient"
	case errors.As(err, &template):
		return "template"
	default:
		return "resolve"
	}
}
