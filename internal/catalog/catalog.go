// Package catalog lists remote archive directories so the resolver can
// pick the file closest to a requested instant. One lister exists per
// archive layout: the GOES16 object-store bucket, the AIRS OPeNDAP yearly
// index, and the Gridsat-B1 THREDDS catalog or FTP mirror.
package catalog

import (
	"context"
	"time"
)

// Entry is one file found in a remote listing.
type Entry struct {
	// Name is the bare remote filename.
	Name string
	// URL is the address the entry can be fetched from.
	URL string
	// Timestamp is the observation instant encoded in the filename.
	Timestamp time.Time
	// Size is the payload size in bytes, or -1 when the listing does not
	// declare one.
	Size int64
}

// Lister returns the entries of the remote directory that covers ts.
// Implementations scope the listing as narrowly as the archive layout
// allows (an hour prefix for GOES16, a year for AIRS and Gridsat).
type Lister interface {
	List(ctx context.Context, ts time.Time) ([]Entry, error)
}
