package catalog

import (
	"github.com/google/uuid"

	"catalog-backend/models"
)

// ValidateParent checks that assigning parentID to the category with the
// given id keeps the parent graph a forest. It walks the parent chain from
// the candidate parent using only the in-memory category set, so it works
// the same against any storage engine. A nil parentID (root-level) is
// always valid.
func ValidateParent(categories []models.Category, id uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return &ReferenceError{Reason: "category cannot be its own parent"}
	}

	parents := make(map[uuid.UUID]*uuid.UUID, len(categories))
	for i := range categories {
		parents[categories[i].ID] = categories[i].ParentID
	}

	if _, ok := parents[*parentID]; !ok {
		return &ReferenceError{Reason: "parent category not found"}
	}

	// Follow the chain upward from the candidate parent. Reaching the edited
	// category means the assignment would close a cycle. The step bound
	// guards against pre-existing corruption in the stored data.
	current := parentID
	for steps := 0; current != nil && steps <= len(categories); steps++ {
		if *current == id {
			return &ReferenceError{Reason: "category cannot be moved under its own descendant"}
		}
		next, ok := parents[*current]
		if !ok {
			break
		}
		current = next
	}

	return nil
}
