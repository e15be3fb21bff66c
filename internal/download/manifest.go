package download

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Manifest is the optional YAML record of a run, written when --manifest
// is given. Re-runs are naturally idempotent through the already-satisfied
// check; the manifest exists for bookkeeping, not resumption.
type Manifest struct {
	RunID     string         `yaml:"run_id"`
	Product   string         `yaml:"product"`
	CreatedAt time.Time      `yaml:"created_at"`
	Written   int            `yaml:"written"`
	Already   int            `yaml:"already"`
	Skipped   int            `yaml:"skipped"`
	Failed    int            `yaml:"failed"`
	Units     []ManifestUnit `yaml:"units"`
}

// ManifestUnit records one unit's outcome.
type ManifestUnit struct {
	Timestamp time.Time `yaml:"timestamp"`
	Selector  string    `yaml:"selector,omitempty"`
	Outcome   Outcome   `yaml:"outcome"`
	Path      string    `yaml:"path,omitempty"`
	Bytes     int64     `yaml:"bytes,omitempty"`
	Error     string    `yaml:"error,omitempty"`
}

// NewManifest converts a run summary into a manifest with a fresh run ID.
func NewManifest(product string, s *Summary) *Manifest {
	m := &Manifest{
		RunID:     uuid.NewString(),
		Product:   product,
		CreatedAt: time.Now().UTC(),
		Written:   s.Written,
		Already:   s.Already,
		Skipped:   s.Skipped,
		Failed:    s.Failed,
		Units:     make([]ManifestUnit, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		mu := ManifestUnit{
			Timestamp: r.Unit.Timestamp,
			Selector:  r.Unit.Selector,
			Outcome:   r.Outcome,
			Path:      r.Path,
			Bytes:     r.Bytes,
		}
		if r.Err != nil {
			mu.Error = r.Err.Error()
		}
		m.Units = append(m.Units, mu)
	}
	return m
}

// Write marshals the manifest to path.
func (m *Manifest) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "manifest: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "manifest: write %s", path)
	}
	return nil
}
