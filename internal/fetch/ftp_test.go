package fetch

import (
	"errors"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFTPURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantHost string
		wantPath string
		wantErr  bool
	}{
		{
			name:     "standard ftp url",
			url:      "ftp://ftp.ncei.noaa.gov/cdr/gridsat/2019/GRIDSAT-B1.2019.12.17.00.v02r01.nc",
			wantHost: "ftp.ncei.noaa.gov:21",
			wantPath: "/cdr/gridsat/2019/GRIDSAT-B1.2019.12.17.00.v02r01.nc",
		},
		{
			name:     "ftp url with port",
			url:      "ftp://archive.example.com:2121/data/file.nc",
			wantHost: "archive.example.com:2121",
			wantPath: "/data/file.nc",
		},
		{
			name:    "http scheme rejected",
			url:     "https://example.com/file.nc",
			wantErr: true,
		},
		{
			name:    "empty path",
			url:     "ftp://ftp.example.com",
			wantErr: true,
		},
		{
			name:    "invalid url",
			url:     "://bad",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, path, err := parseFTPURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestClassifyFTPError(t *testing.T) {
	url := "ftp://host/file.nc"

	err := classifyFTPError(&textproto.Error{Code: 550, Msg: "no such file"}, url)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, url, nf.URL)

	err = classifyFTPError(&textproto.Error{Code: 530, Msg: "not logged in"}, url)
	var ae *AuthError
	require.True(t, errors.As(err, &ae))

	// 4xx replies stay transient for the retry loop.
	err = classifyFTPError(&textproto.Error{Code: 421, Msg: "service not available"}, url)
	assert.False(t, errors.As(err, &nf))
	assert.False(t, errors.As(err, &ae))
}
