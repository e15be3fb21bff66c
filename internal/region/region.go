// Package region holds the geographic bounding box requested on the
// command line and its filename-token representation.
package region

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Region is a geographic bounding box. Longitudes are normalized to
// [-180,180) on construction.
type Region struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// Parse builds a Region from the four -r arguments (lat0 lat1 lon0 lon1),
// matching the argument order of the product commands.
func Parse(args []string) (Region, error) {
	if len(args) != 4 {
		return Region{}, eris.Errorf("region: want 4 values lat0,lat1,lon0,lon1, got %d", len(args))
	}
	vals := make([]float64, 4)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return Region{}, eris.Wrapf(err, "region: bad value %q", a)
		}
		vals[i] = v
	}
	return New(vals[0], vals[1], vals[2], vals[3])
}

// New validates and normalizes a bounding box.
func New(latMin, latMax, lonMin, lonMax float64) (Region, error) {
	if latMin < -90 || latMax > 90 {
		return Region{}, eris.Errorf("region: latitudes %g..%g outside [-90,90]", latMin, latMax)
	}
	if latMin >= latMax {
		return Region{}, eris.Errorf("region: latMin %g must be below latMax %g", latMin, latMax)
	}
	return Region{
		LatMin: latMin,
		LatMax: latMax,
		LonMin: normalizeLon(lonMin),
		LonMax: normalizeLon(lonMax),
	}, nil
}

func normalizeLon(lon float64) float64 {
	for lon >= 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}

// Bounds returns the box as a go-geom XY bounds (x=lon, y=lat).
func (r Region) Bounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(r.LonMin, r.LatMin, r.LonMax, r.LatMax)
}

// Intersects reports whether the two boxes share any area.
func (r Region) Intersects(o Region) bool {
	return r.Bounds().Overlaps(geom.XY, o.Bounds())
}

// TokenValues returns the region's output-filename tokens (N1, N2 for the
// latitude bounds, E1, E2 for the longitude bounds).
func (r Region) TokenValues() map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return map[string]string{
		"N1": f(r.LatMin),
		"N2": f(r.LatMax),
		"E1": f(r.LonMin),
		"E2": f(r.LonMax),
	}
}
