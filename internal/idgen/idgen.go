// Package idgen allocates recipe identifiers.
package idgen

import "github.com/stackchef/chefvault/internal/types"

// Next returns the next free id for the collection: one past the highest id
// in use, or 1 for an empty collection. Ids are never reused, so deleting
// the highest recipe makes its id available again only by accident of this
// scheme; callers that need stability across deletes should not rely on it.
func Next(recipes []types.Recipe) int64 {
	var max int64
	for i := range recipes {
		if recipes[i].ID > max {
			max = recipes[i].ID
		}
	}
	return max + 1
}

// Taken reports whether id is already used in the collection.
func Taken(recipes []types.Recipe, id int64) bool {
	for i := range recipes {
		if recipes[i].ID == id {
			return true
		}
	}
	return false
}
