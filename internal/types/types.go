// Package types defines core data structures for the chefvault recipe store.
package types

import (
	"fmt"
	"time"
)

// Recipe is a named, user-authored sequence of CyberChef operation steps.
// Body carries the serialized step sequence and is opaque to this subsystem:
// it is produced and consumed by the CyberChef execution engine and never
// parsed here.
type Recipe struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Body      string     `json:"recipe"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Validate checks if the recipe has valid field values.
func (r *Recipe) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("id must be a positive integer (got %d)", r.ID)
	}
	if len(r.Name) == 0 {
		return fmt.Errorf("name is required")
	}
	if len(r.Name) > 500 {
		return fmt.Errorf("name must be 500 characters or less (got %d)", len(r.Name))
	}
	return nil
}

// Equal reports whether two recipes have the same id, name, body, and
// timestamps. Timestamps compare by instant, so a recipe survives a
// serialization round trip even when the wall-clock representation changes
// time zone.
func (r *Recipe) Equal(other *Recipe) bool {
	if r.ID != other.ID || r.Name != other.Name || r.Body != other.Body {
		return false
	}
	return timesEqual(r.CreatedAt, other.CreatedAt) && timesEqual(r.UpdatedAt, other.UpdatedAt)
}

// Clone returns a deep copy of the recipe.
func (r *Recipe) Clone() Recipe {
	c := *r
	if r.CreatedAt != nil {
		t := *r.CreatedAt
		c.CreatedAt = &t
	}
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		c.UpdatedAt = &t
	}
	return c
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// ValidateCollection checks every recipe and the collection-wide invariant
// that ids are unique.
func ValidateCollection(recipes []Recipe) error {
	seen := make(map[int64]bool, len(recipes))
	for i := range recipes {
		if err := recipes[i].Validate(); err != nil {
			return fmt.Errorf("recipe %d: %w", i, err)
		}
		if seen[recipes[i].ID] {
			return fmt.Errorf("recipe %d: duplicate id %d", i, recipes[i].ID)
		}
		seen[recipes[i].ID] = true
	}
	return nil
}

// CollectionsEqual reports whether two collections hold equal recipes in the
// same order.
func CollectionsEqual(a, b []Recipe) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(&b[i]) {
			return false
		}
	}
	return true
}

// CloneCollection returns a deep copy of the collection.
func CloneCollection(recipes []Recipe) []Recipe {
	if recipes == nil {
		return nil
	}
	out := make([]Recipe, len(recipes))
	for i := range recipes {
		out[i] = recipes[i].Clone()
	}
	return out
}
