package batch

import (
	"fmt"

	"pwsi/core/apperr"
)

// Per-item update results.
const (
	Updated       = "Updated"
	NoElement     = "No element"
	NameNotUnique = "New name not unique"
	LinkNotUnique = "New link not unique"
	WrongParent   = "Wrong parent"
)

// Rejected is the id reported for an item that could not be added.
const Rejected int64 = -1

// IDTaken is the update result for a new id that already belongs to another
// record of the named resource.
func IDTaken(resource string) string {
	return "Can't update id to existed " + resource
}

// Check rejects an empty batch.
func Check[T any](items []T) error {
	if len(items) == 0 {
		return fmt.Errorf("empty list: %w", apperr.ErrEmptyBatch)
	}
	return nil
}

// Added escalates an add batch where no item was inserted.
func Added(ids []int64) error {
	for _, id := range ids {
		if id != Rejected {
			return nil
		}
	}
	return fmt.Errorf("elements already exist: %w", apperr.ErrConflict)
}

// Changed escalates an update batch where no item was updated. A missing
// element anywhere in the batch makes it not found; a batch rejected only
// for uniqueness or id collisions is a conflict.
func Changed(results []string) error {
	missing, conflict := false, false
	for _, r := range results {
		switch r {
		case Updated:
			return nil
		case NoElement, WrongParent:
			missing = true
		default:
			conflict = true
		}
	}
	if conflict && !missing {
		return fmt.Errorf("no unique values to update: %w", apperr.ErrConflict)
	}
	return fmt.Errorf("no elements to update: %w", apperr.ErrNotFound)
}

// Deleted escalates a delete batch where nothing was removed.
func Deleted(results []bool) error {
	for _, ok := range results {
		if ok {
			return nil
		}
	}
	return fmt.Errorf("no elements to delete: %w", apperr.ErrNotFound)
}
