package download

import (
	"fmt"
	"time"
)

// Outcome classifies what happened to one download unit.
type Outcome string

const (
	// OutcomeWritten means the file was fetched and written.
	OutcomeWritten Outcome = "written"
	// OutcomeAlready means the destination already held the file, so no
	// fetch was performed.
	OutcomeAlready Outcome = "already"
	// OutcomeSkipped means the archive had no data for the unit.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the unit failed after retries.
	OutcomeFailed Outcome = "failed"
)

// Unit is one (timestamp, selector) request. Index is its position in
// expansion order and fixes where its result is reported.
type Unit struct {
	Index     int
	Timestamp time.Time
	Selector  string
}

func (u Unit) String() string {
	return fmt.Sprintf("%s/%s", u.Timestamp.UTC().Format("2006-01-02T15:04"), u.Selector)
}

// Result is the recorded outcome of one unit.
type Result struct {
	Unit    Unit
	Outcome Outcome
	// Path is the destination file for written/already units.
	Path string
	// Bytes is the payload size for written units.
	Bytes int64
	// Err is set for failed units.
	Err error
}

// Summary aggregates a run. Results are ordered by increasing timestamp
// and, within a timestamp, by selector registration order, regardless of
// completion order.
type Summary struct {
	Written int
	Already int
	Skipped int
	Failed  int
	Results []Result
}

// HasFailures reports whether any unit failed after retries. Skipped and
// already-satisfied units never fail a run.
func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}
