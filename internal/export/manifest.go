package export

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stackchef/chefvault/internal/payload"
)

// Manifest describes a completed export for integrity checking.
type Manifest struct {
	ExportedAt  time.Time `json:"exported_at"`
	Filename    string    `json:"filename"`
	RecipeCount int       `json:"recipe_count"`
	SizeBytes   int       `json:"size_bytes"`
	SHA256      string    `json:"sha256"`
}

// ManifestName derives the sidecar name from the artifact name.
func ManifestName(artifact string) string {
	return strings.TrimSuffix(artifact, ".json") + ".manifest.json"
}

// NewManifest creates a manifest for an encoded payload.
func NewManifest(count int, data []byte) *Manifest {
	return &Manifest{
		ExportedAt:  time.Now().UTC(),
		Filename:    payload.ExportFileName,
		RecipeCount: count,
		SizeBytes:   len(data),
		SHA256:      fmt.Sprintf("%x", sha256.Sum256(data)),
	}
}

// Encode marshals the manifest for delivery.
func (m *Manifest) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
