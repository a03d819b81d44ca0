// Package payload implements the canonical CyberChef export payload codec.
//
// The payload is the only bit-exact contract of the subsystem: a UTF-8 JSON
// array of recipe objects. Encoding is deterministic, so repeated exports of
// an unchanged collection are byte-identical and users can diff export files.
// Decoding is strict: anything that cannot form a valid recipe collection is
// rejected with ErrMalformedPayload instead of being silently dropped.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stackchef/chefvault/internal/types"
)

// Fixed constants of the subsystem. The file name is never derived from
// recipe contents.
const (
	// ExportFileName is the exact name of the exported artifact.
	ExportFileName = "CyberChefExport.json"
	// ExportContentType is the MIME type declared on the artifact.
	ExportContentType = "application/json"
	// StorageKey is the persistence key the recipe collection lives under,
	// matching the localStorage key used by CyberChef itself.
	StorageKey = "savedRecipes"
)

// ErrMalformedPayload is returned when text cannot be decoded as a valid
// export payload. Callers check it with errors.Is.
var ErrMalformedPayload = errors.New("malformed recipe payload")

// Encode serializes a recipe collection to its canonical textual form:
// a two-space indented JSON array with HTML escaping disabled and a trailing
// newline. A nil or empty collection encodes as an empty array, not an error.
func Encode(recipes []types.Recipe) ([]byte, error) {
	if recipes == nil {
		recipes = []types.Recipe{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recipes); err != nil {
		return nil, fmt.Errorf("encoding recipe collection: %w", err)
	}
	return buf.Bytes(), nil
}

// rawRecipe mirrors types.Recipe with pointer fields so that missing and
// present-but-empty values are distinguishable after unmarshaling.
type rawRecipe struct {
	ID        *int64     `json:"id"`
	Name      *string    `json:"name"`
	Body      *string    `json:"recipe"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// Decode parses payload text into a recipe collection.
//
// The text must be a JSON array whose elements each carry an integral "id",
// a non-empty "name", and a "recipe" string. Unknown extra fields are
// tolerated and dropped. Duplicate ids within one payload are rejected: such
// a payload cannot form a valid collection. All rejections wrap
// ErrMalformedPayload.
func Decode(data []byte) ([]types.Recipe, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array of recipes", ErrMalformedPayload)
	}

	var raw []rawRecipe
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	recipes := make([]types.Recipe, 0, len(raw))
	seen := make(map[int64]bool, len(raw))
	for i, r := range raw {
		if r.ID == nil {
			return nil, fmt.Errorf("%w: element %d: missing required field %q", ErrMalformedPayload, i, "id")
		}
		if r.Name == nil {
			return nil, fmt.Errorf("%w: element %d: missing required field %q", ErrMalformedPayload, i, "name")
		}
		if r.Body == nil {
			return nil, fmt.Errorf("%w: element %d: missing required field %q", ErrMalformedPayload, i, "recipe")
		}

		recipe := types.Recipe{
			ID:        *r.ID,
			Name:      *r.Name,
			Body:      *r.Body,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
		if err := recipe.Validate(); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformedPayload, i, err)
		}
		if seen[recipe.ID] {
			return nil, fmt.Errorf("%w: element %d: duplicate id %d", ErrMalformedPayload, i, recipe.ID)
		}
		seen[recipe.ID] = true
		recipes = append(recipes, recipe)
	}

	return recipes, nil
}
