package catalog

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPLister lists a yearly directory on an FTP mirror of the Gridsat-B1
// archive. Used when the configured archive URL has an ftp scheme.
type FTPLister struct {
	// dirFmt is a printf format with one %d verb for the year, e.g.
	// ftp://host/cdr/gridsat/%d/
	dirFmt  string
	timeout time.Duration
}

// NewFTPLister creates a lister for the given yearly directory URL format.
func NewFTPLister(dirFmt string, timeout time.Duration) *FTPLister {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &FTPLister{dirFmt: dirFmt, timeout: timeout}
}

// List connects to the mirror, lists the year directory for ts, and
// returns one entry per file whose name carries a Gridsat stamp.
func (l *FTPLister) List(ctx context.Context, ts time.Time) ([]Entry, error) {
	dirURL := fmt.Sprintf(l.dirFmt, ts.Year())
	u, err := url.Parse(dirURL)
	if err != nil || u.Scheme != "ftp" {
		return nil, eris.Errorf("ftp lister: bad directory url %q", dirURL)
	}
	host := u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	zap.L().Debug("ftp: listing", zap.String("host", host), zap.String("dir", u.Path))

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(l.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "ftp lister: dial")
	}
	defer conn.Quit() //nolint:errcheck

	if err := conn.Login("anonymous", "anonymous@"); err != nil {
		return nil, eris.Wrap(err, "ftp lister: login")
	}

	listing, err := conn.List(u.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "ftp lister: list %s", u.Path)
	}

	base := strings.TrimSuffix(dirURL, "/")
	var entries []Entry
	for _, item := range listing {
		if item.Type != ftp.EntryTypeFile {
			continue
		}
		stamp, err := ParseGridsatName(item.Name)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:      item.Name,
			URL:       base + "/" + item.Name,
			Timestamp: stamp,
			Size:      int64(item.Size),
		})
	}
	return entries, nil
}
