// Package objects implements the persistent-object layer (C5): per-
// object traversal, tail lookup, free-id allocation, and unit/genesis
// bootstrap for queue-shaped objects.
package objects

import (
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/store"
)

// Navigator is a stateful cursor over one object's artifact sequence. It
// advances by checking whether the next artifact id exists in the
// repository.
type Navigator struct {
	repo    store.Repository
	current model.ArtifactId
}

// NewNavigator starts a cursor at startId.
func NewNavigator(repo store.Repository, startId model.ArtifactId) *Navigator {
	return &Navigator{repo: repo, current: startId}
}

// Next returns the next existing artifact id after the cursor's current
// position, or ok=false when the tail has been reached. On success the
// cursor advances to the returned id.
func (n *Navigator) Next() (model.ArtifactId, bool, error) {
	candidate := n.current.Next()
	key, ok, err := n.repo.GetKey(candidate)
	if err != nil {
		return model.ArtifactId{}, false, err
	}
	if !ok {
		return model.ArtifactId{}, false, nil
	}
	n.current = key
	return key, true, nil
}

// FindTailId walks from d's unit id until GetKey returns nothing; the
// last seen id is the tail. Returns ok=false if the object does not
// exist at all.
func FindTailId(repo store.Repository, d model.ObjectDescriptor) (model.ArtifactId, bool, error) {
	unitId := model.UnitId(d)
	if _, ok, err := repo.GetKey(unitId); err != nil {
		return model.ArtifactId{}, false, err
	} else if !ok {
		return model.ArtifactId{}, false, nil
	}

	tail := unitId
	nav := NewNavigator(repo, unitId)
	for {
		next, ok, err := nav.Next()
		if err != nil {
			return model.ArtifactId{}, false, err
		}
		if !ok {
			return tail, true, nil
		}
		tail = next
	}
}

// FindFreeId returns the artifact id a writer should append at next:
// tail.Next(), or d's unit id if the object has no events yet.
func FindFreeId(repo store.Repository, d model.ObjectDescriptor) (model.ArtifactId, error) {
	tail, ok, err := FindTailId(repo, d)
	if err != nil {
		return model.ArtifactId{}, err
	}
	if !ok {
		return model.UnitId(d), nil
	}
	return tail.Next(), nil
}

// FindObjectEvents enumerates every event from start to the object's
// tail, inclusive.
func FindObjectEvents(repo store.Repository, start model.ArtifactId) ([]model.KvLogEvent, error) {
	var events []model.KvLogEvent

	event, ok, err := repo.FindOne(start)
	if err != nil {
		return nil, err
	}
	if !ok {
		return events, nil
	}
	events = append(events, event)

	nav := NewNavigator(repo, start)
	for {
		next, ok, err := nav.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return events, nil
		}
		event, ok, err := repo.FindOne(next)
		if err != nil {
			return nil, err
		}
		if !ok {
			return events, nil
		}
		events = append(events, event)
	}
}
