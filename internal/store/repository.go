// Package store defines the key/value event store contract (C4) and its
// in-memory reference implementation: a shared map of ArtifactId to
// event, guarded by a single mutex, safe for concurrent callers on one
// process.
package store

import (
	"github.com/meta-secret/meta-secret/internal/model"
)

// Repository is the minimal polymorphic key/value store every backend
// must implement. No backend-specific semantics leak across this
// boundary.
type Repository interface {
	// Save appends event at its key's ArtifactId. It returns Conflict if
	// that id is already occupied.
	Save(event model.KvLogEvent) (model.ArtifactId, error)

	// FindOne looks up the event stored at id.
	FindOne(id model.ArtifactId) (model.KvLogEvent, bool, error)

	// GetKey reports whether an event exists at id, without fetching its
	// value — the navigation primitive used to walk tails.
	GetKey(id model.ArtifactId) (model.ArtifactId, bool, error)

	// Delete removes the event stored at id, if any.
	Delete(id model.ArtifactId) error
}
