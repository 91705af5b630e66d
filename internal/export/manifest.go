package export

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hyperifyio/lattes/internal/batch"
)

// ManifestMeta captures run details that aid reproducibility.
type ManifestMeta struct {
	RunID       string    `json:"run_id"`
	Version     string    `json:"version"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	Documents   int       `json:"documents"`
	Records     int       `json:"records"`
	Skipped     int       `json:"skipped"`
	StartedAt   time.Time `json:"started_at"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Manifest is the machine-readable sidecar of one export.
type Manifest struct {
	Meta      ManifestMeta     `json:"meta"`
	Documents []batch.Document `json:"documents"`
	Skipped   []batch.Skip     `json:"skipped"`
}

// NewManifest summarizes rep. A fresh run ID is generated for every call.
func NewManifest(meta ManifestMeta, rep batch.Report) Manifest {
	meta.RunID = uuid.NewString()
	meta.Documents = len(rep.Documents)
	meta.Records = len(rep.Records)
	meta.Skipped = len(rep.Skipped)
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now().UTC()
	}
	m := Manifest{Meta: meta, Documents: rep.Documents, Skipped: rep.Skipped}
	if m.Documents == nil {
		m.Documents = []batch.Document{}
	}
	if m.Skipped == nil {
		m.Skipped = []batch.Skip{}
	}
	return m
}

// ManifestPath returns the sidecar path next to an output file.
func ManifestPath(outputPath string) string {
	return outputPath + ".manifest.json"
}

// WriteManifest writes m next to outputPath and returns the sidecar path.
func WriteManifest(outputPath string, m Manifest) (string, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	path := ManifestPath(outputPath)
	return path, writeFile(path, append(b, '\n'))
}
