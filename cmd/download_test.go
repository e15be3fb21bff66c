package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/observingClouds/satdownload/internal/config"
	"github.com/observingClouds/satdownload/internal/download"
	"github.com/observingClouds/satdownload/internal/fetch"
	"github.com/observingClouds/satdownload/internal/outname"
	"github.com/observingClouds/satdownload/internal/product"
)

func TestErrKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", &fetch.NotFoundError{URL: "https://x/y"}, "not-found"},
		{"auth", &fetch.AuthError{URL: "https://x/y", Status: 401}, "auth"},
		{"transient", &fetch.TransientFetchError{URL: "https://x/y", Attempts: 3, Err: eris.New("boom")}, "transient"},
		{"template", &outname.TemplateError{Token: "{channel}", Reason: "has no value for this unit"}, "template"},
		{"other", eris.New("listing exploded"), "resolve"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errKind(tt.err))
		})
	}
}

func TestRunDownload_RejectsRegionOutsideCoverage(t *testing.T) {
	orig := cfg
	cfg = &config.Config{}
	t.Cleanup(func() { cfg = orig })

	f := &sharedFlags{
		date:   "20191217",
		region: []string{"10", "20", "100", "120"}, // south Asia, invisible from GOES-East
	}
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	err := runDownload(cmd, f, "goes16", []string{"13"}, product.Params{}, fetch.Credentials{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coverage")
}

func TestPrintSummary(t *testing.T) {
	ts := time.Date(2019, 12, 17, 6, 0, 0, 0, time.UTC)
	s := &download.Summary{
		Written: 2,
		Skipped: 1,
		Failed:  1,
		Results: []download.Result{
			{Unit: download.Unit{Index: 0, Timestamp: ts, Selector: "13"}, Outcome: download.OutcomeWritten},
			{Unit: download.Unit{Index: 1, Timestamp: ts, Selector: "14"}, Outcome: download.OutcomeWritten},
			{Unit: download.Unit{Index: 2, Timestamp: ts, Selector: "15"}, Outcome: download.OutcomeSkipped},
			{
				Unit:    download.Unit{Index: 3, Timestamp: ts, Selector: "16"},
				Outcome: download.OutcomeFailed,
				Err:     &fetch.AuthError{URL: "https://x/y", Status: 403},
			},
		},
	}

	var buf strings.Builder
	printSummary(&buf, s)

	out := buf.String()
	assert.Contains(t, out, "written 2, already present 0, skipped 1, failed 1")
	assert.Contains(t, out, "failed 2019-12-17T06:00/16: auth:")
}
