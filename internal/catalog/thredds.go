package catalog

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/observingClouds/satdownload/internal/resilience"
)

// ThreddsLister reads a THREDDS yearly catalog.xml and turns its dataset
// elements into entries served from the fileServer endpoint.
type ThreddsLister struct {
	client *http.Client
	// catalogFmt is a printf format with one %d verb for the year, e.g.
	// https://host/thredds/catalog/cdr/gridsat/%d/catalog.xml
	catalogFmt string
	userAgent  string
}

// NewThreddsLister creates a lister for the given yearly catalog URL
// format.
func NewThreddsLister(catalogFmt, userAgent string, timeout time.Duration) *ThreddsLister {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &ThreddsLister{
		client:     &http.Client{Timeout: timeout},
		catalogFmt: catalogFmt,
		userAgent:  userAgent,
	}
}

type threddsDataset struct {
	Name     string           `xml:"name,attr"`
	URLPath  string           `xml:"urlPath,attr"`
	Datasets []threddsDataset `xml:"dataset"`
}

type threddsCatalog struct {
	XMLName  xml.Name         `xml:"catalog"`
	Datasets []threddsDataset `xml:"dataset"`
}

// List fetches and parses the catalog for ts's year.
func (l *ThreddsLister) List(ctx context.Context, ts time.Time) ([]Entry, error) {
	catalogURL := fmt.Sprintf(l.catalogFmt, ts.Year())

	zap.L().Debug("thredds: reading catalog", zap.String("url", catalogURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, catalogURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "thredds lister: create request")
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "thredds lister: get %s", catalogURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(eris.Errorf("thredds lister: http %d from %s", resp.StatusCode, catalogURL), resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("thredds lister: unexpected status %d from %s", resp.StatusCode, catalogURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "thredds lister: read catalog"), 0)
	}

	entries, err := parseThreddsCatalog(body, fileServerBase(catalogURL))
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// fileServerBase derives the fileServer root from a catalog URL: THREDDS
// serves the raw files under /fileServer/ parallel to /catalog/.
func fileServerBase(catalogURL string) string {
	idx := strings.Index(catalogURL, "/thredds/catalog/")
	if idx < 0 {
		return strings.TrimSuffix(catalogURL, "catalog.xml")
	}
	return catalogURL[:idx] + "/thredds/fileServer/"
}

func parseThreddsCatalog(body []byte, fileServer string) ([]Entry, error) {
	var cat threddsCatalog
	if err := xml.Unmarshal(body, &cat); err != nil {
		return nil, eris.Wrap(err, "thredds lister: parse catalog xml")
	}

	var entries []Entry
	var walk func([]threddsDataset)
	walk = func(ds []threddsDataset) {
		for _, d := range ds {
			if d.URLPath != "" {
				if stamp, err := ParseGridsatName(d.Name); err == nil {
					entries = append(entries, Entry{
						Name:      d.Name,
						URL:       fileServer + d.URLPath,
						Timestamp: stamp,
						Size:      -1,
					})
				}
			}
			walk(d.Datasets)
		}
	}
	walk(cat.Datasets)
	return entries, nil
}

// gridsatNameRe matches brightness-temperature grid filenames like
// GRIDSAT-B1.2019.12.17.00.v02r01.nc.
var gridsatNameRe = regexp.MustCompile(`GRIDSAT-B1\.(\d{4})\.(\d{2})\.(\d{2})\.(\d{2})\.[A-Za-z0-9]+\.nc`)

// ParseGridsatName extracts the observation instant from a Gridsat-B1
// filename.
func ParseGridsatName(name string) (time.Time, error) {
	m := gridsatNameRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, eris.Errorf("no gridsat stamp in %q", name)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 {
		return time.Time{}, eris.Errorf("implausible gridsat stamp in %q", name)
	}
	return time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC), nil
}
