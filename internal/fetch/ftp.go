package fetch

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"net/url"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// parseFTPURL extracts host (with port) and path from an FTP URL.
func parseFTPURL(rawURL string) (host string, path string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrap(err, "parse ftp url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("expected ftp scheme, got %q", u.Scheme)
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	path = u.Path
	if path == "" {
		return "", "", eris.New("empty path in ftp url")
	}

	return host, path, nil
}

// classifyFTPError maps terminal FTP replies onto the fetch error taxonomy.
// Transient 4xx replies pass through and are retried by the caller.
func classifyFTPError(err error, rawURL string) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch tpErr.Code {
		case ftp.StatusFileUnavailable:
			return &NotFoundError{URL: rawURL}
		case ftp.StatusNotLoggedIn:
			return &AuthError{URL: rawURL, Status: tpErr.Code}
		}
	}
	return eris.Wrapf(err, "ftp: %s", rawURL)
}

func (f *Fetcher) ftpFetch(ctx context.Context, rawURL string, wantSize int64, dest string) (int64, error) {
	host, path, err := parseFTPURL(rawURL)
	if err != nil {
		return 0, err
	}

	if err := f.limiterFor(host).Wait(ctx); err != nil {
		return 0, eris.Wrap(err, "fetch: rate limiter wait")
	}

	zap.L().Debug("ftp: connecting", zap.String("host", host), zap.String("path", path))

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return 0, eris.Wrap(err, "ftp dial")
	}
	defer conn.Quit() //nolint:errcheck

	user, pass := "anonymous", "anonymous@"
	if !f.opts.Credentials.IsZero() {
		user, pass = f.opts.Credentials.Username, f.opts.Credentials.Password
	}
	if err := conn.Login(user, pass); err != nil {
		return 0, classifyFTPError(err, rawURL)
	}

	// SIZE is optional; servers that lack it leave the size unknown.
	declared := int64(-1)
	if size, sizeErr := conn.FileSize(path); sizeErr == nil {
		declared = size
	}

	resp, err := conn.Retr(path)
	if err != nil {
		return 0, classifyFTPError(err, rawURL)
	}
	defer resp.Close() //nolint:errcheck

	return writeBody(resp, declared, wantSize, dest)
}
