package outname

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var goesTokens = []string{"channel", "product", "mesoregion", "N1", "N2", "E1", "E2"}

func TestRender_DateTokensOnly(t *testing.T) {
	tmpl, err := New("out_%Y%m%d_%H%M.nc", nil)
	require.NoError(t, err)

	ts := time.Date(2019, 12, 17, 0, 0, 0, 0, time.UTC)
	path, err := tmpl.Render(ts, nil)
	require.NoError(t, err)
	assert.Equal(t, "out_20191217_0000.nc", path)
}

func TestRender_MixedTokens(t *testing.T) {
	tmpl, err := New("goes16_{channel}_{N1}-{N2}N_%Y%m%d_%H%M.nc", goesTokens)
	require.NoError(t, err)

	ts := time.Date(2020, 2, 5, 14, 30, 0, 0, time.UTC)
	path, err := tmpl.Render(ts, Values{"channel": "13", "N1": "10", "N2": "20"})
	require.NoError(t, err)
	assert.Equal(t, "goes16_13_10-20N_20200205_1430.nc", path)
	assert.NotContains(t, path, "{")
}

func TestRender_Pure(t *testing.T) {
	tmpl, err := New("{channel}_%Y%m%d.nc", goesTokens)
	require.NoError(t, err)

	ts := time.Date(2019, 12, 17, 0, 0, 0, 0, time.UTC)
	vals := Values{"channel": "13"}
	a, err := tmpl.Render(ts, vals)
	require.NoError(t, err)
	b, err := tmpl.Render(ts, vals)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNew_UnknownToken(t *testing.T) {
	_, err := New("out_{nosuch}.nc", goesTokens)
	var te *TemplateError
	require.Error(t, err)
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "{nosuch}", te.Token)
}

func TestNew_UnterminatedToken(t *testing.T) {
	_, err := New("out_{channel.nc", goesTokens)
	var te *TemplateError
	require.Error(t, err)
	assert.True(t, errors.As(err, &te))
}

func TestNew_EmptyTemplate(t *testing.T) {
	_, err := New("", goesTokens)
	require.Error(t, err)
}

func TestRender_MissingValue(t *testing.T) {
	tmpl, err := New("out_{channel}.nc", goesTokens)
	require.NoError(t, err)

	_, err = tmpl.Render(time.Now(), Values{})
	var te *TemplateError
	require.Error(t, err)
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "{channel}", te.Token)
}

func TestRenderAndPrepare_CreatesParents(t *testing.T) {
	dir := t.TempDir()
	tmpl, err := New(filepath.Join(dir, "%Y", "%m", "out_{channel}.nc"), goesTokens)
	require.NoError(t, err)

	ts := time.Date(2019, 12, 17, 0, 0, 0, 0, time.UTC)
	path, err := tmpl.RenderAndPrepare(ts, Values{"channel": "13"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2019", "12", "out_13.nc"), path)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestTokens(t *testing.T) {
	tmpl, err := New("{N1}_{E1}_{channel}.nc", goesTokens)
	require.NoError(t, err)
	assert.Equal(t, []string{"N1", "E1", "channel"}, tmpl.Tokens())
}
