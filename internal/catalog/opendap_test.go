package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const opendapPage = `<html><body>
<a href="AIRS.2020.01.01.L3.RetStd_IR001.v6.0.31.0.G20002124321.hdf.html">AIRS.2020.01.01.L3.RetStd_IR001.v6.0.31.0.G20002124321.hdf</a>
<a href="AIRS.2020.01.01.L3.RetStd_IR001.v6.0.31.0.G20002124321.hdf.das">das</a>
<a href="AIRS.2020.01.02.L3.RetStd_IR002.v6.0.31.0.G20003124523.hdf.html">AIRS.2020.01.02.L3.RetStd_IR002.v6.0.31.0.G20003124523.hdf</a>
<a href="nothing-else.txt">junk</a>
</body></html>`

func TestOpendapList(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(opendapPage))
	}))
	defer srv.Close()

	l := NewOpendapLister(srv.URL+"/opendap/AIRS3STD.006/", "test-agent", 5*time.Second)
	entries, err := l.List(context.Background(), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "/opendap/AIRS3STD.006/2020/", gotPath)

	require.Len(t, entries, 2) // duplicates collapsed, junk ignored
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), entries[0].Timestamp)
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), entries[1].Timestamp)
	assert.Equal(t, srv.URL+"/opendap/AIRS3STD.006/2020/AIRS.2020.01.01.L3.RetStd_IR001.v6.0.31.0.G20002124321.hdf", entries[0].URL)
	assert.Equal(t, int64(-1), entries[0].Size)
}

func TestOpendapList_YearMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := NewOpendapLister(srv.URL+"/", "test-agent", 5*time.Second)
	entries, err := l.List(context.Background(), time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpendapList_ServerErrorTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	l := NewOpendapLister(srv.URL+"/", "test-agent", 5*time.Second)
	_, err := l.List(context.Background(), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
}
