package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/observingClouds/satdownload/internal/resilience"
)

// airsFileRe matches Level-3 granule names in an OPeNDAP directory page,
// e.g. AIRS.2020.01.01.L3.RetStd_IR001.v6.0.31.0.G20002124321.hdf. The
// date is encoded right after the instrument prefix.
var airsFileRe = regexp.MustCompile(`AIRS\.(\d{4})\.(\d{2})\.(\d{2})\.[A-Za-z0-9_.]+\.hdf`)

// OpendapLister crawls an OPeNDAP yearly directory page and extracts the
// daily granule names with a filename regex, the only listing the server
// offers. The trailing sequence of a granule name cannot be constructed
// from the date alone, so a listing is unavoidable.
type OpendapLister struct {
	client    *http.Client
	baseURL   string // yearly layout: baseURL + "YYYY/"
	userAgent string
}

// NewOpendapLister creates a lister for the given dataset root URL
// (trailing slash expected).
func NewOpendapLister(baseURL, userAgent string, timeout time.Duration) *OpendapLister {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OpendapLister{
		client:    &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		userAgent: userAgent,
	}
}

// List fetches the directory page for ts's year and returns one entry per
// granule found on it.
func (l *OpendapLister) List(ctx context.Context, ts time.Time) ([]Entry, error) {
	yearURL := fmt.Sprintf("%s%d/", l.baseURL, ts.Year())

	zap.L().Debug("opendap: listing", zap.String("url", yearURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, yearURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "opendap lister: create request")
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "opendap lister: get %s", yearURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(eris.Errorf("opendap lister: http %d from %s", resp.StatusCode, yearURL), resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound {
		// No listing for this year means no data, not an error.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("opendap lister: unexpected status %d from %s", resp.StatusCode, yearURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "opendap lister: read listing"), 0)
	}

	return parseOpendapListing(string(body), yearURL), nil
}

// parseOpendapListing extracts unique granule entries from a directory
// page. Each granule name appears several times on the page (data, DDS,
// DAS links); duplicates are dropped.
func parseOpendapListing(page, yearURL string) []Entry {
	seen := make(map[string]bool)
	var entries []Entry
	for _, m := range airsFileRe.FindAllStringSubmatch(page, -1) {
		name := m[0]
		if seen[name] {
			continue
		}
		seen[name] = true

		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		entries = append(entries, Entry{
			Name:      name,
			URL:       yearURL + name,
			Timestamp: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
			Size:      -1,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.Before(entries[j].Timestamp) })
	return entries
}
