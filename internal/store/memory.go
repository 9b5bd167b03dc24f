package store

import (
	"sync"

	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
)

// MemoryRepository is the in-memory reference Repository: a mutex-
// protected map from ArtifactId's canonical string to event.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]model.KvLogEvent
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]model.KvLogEvent)}
}

func (r *MemoryRepository) Save(event model.KvLogEvent) (model.ArtifactId, error) {
	key := event.Key.ObjId.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[key]; exists {
		return model.ArtifactId{}, metaerrors.ErrConflict
	}
	r.data[key] = event
	return event.Key.ObjId, nil
}

func (r *MemoryRepository) FindOne(id model.ArtifactId) (model.KvLogEvent, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.data[id.String()]
	return event, ok, nil
}

func (r *MemoryRepository) GetKey(id model.ArtifactId) (model.ArtifactId, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.data[id.String()]; !ok {
		return model.ArtifactId{}, false, nil
	}
	return id, true, nil
}

func (r *MemoryRepository) Delete(id model.ArtifactId) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.data, id.String())
	return nil
}
