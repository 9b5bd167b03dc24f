package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meta-secret/meta-secret/internal/model"
)

func testEvent(d model.ObjectDescriptor, seq uint64, value any) model.KvLogEvent {
	return model.KvLogEvent{
		Key: model.KvKey{
			ObjId:   model.ArtifactId{Fqdn: d.Fqdn(), SeqId: seq},
			ObjDesc: d,
		},
		Stage: model.StageRegular,
		Value: value,
	}
}

func TestSaveFindOne(t *testing.T) {
	repo := NewMemoryRepository()
	d := model.VaultLogDescriptor("test_vault")
	event := testEvent(d, 1, "hello")

	id, err := repo.Save(event)
	require.NoError(t, err)
	require.Equal(t, event.Key.ObjId, id)

	found, ok, err := repo.FindOne(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, event, found)
}

// TestConflictingAppend exercises S6/P4: a second save at an already
// occupied ArtifactId is rejected with Conflict.
func TestConflictingAppend(t *testing.T) {
	repo := NewMemoryRepository()
	d := model.VaultLogDescriptor("test_vault")

	_, err := repo.Save(testEvent(d, 1, "first"))
	require.NoError(t, err)

	_, err = repo.Save(testEvent(d, 1, "second"))
	require.Error(t, err)
}

func TestGetKeyMissing(t *testing.T) {
	repo := NewMemoryRepository()
	d := model.VaultLogDescriptor("test_vault")

	_, ok, err := repo.GetKey(model.UnitId(d))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteThenGetKeyMissing(t *testing.T) {
	repo := NewMemoryRepository()
	d := model.VaultLogDescriptor("test_vault")
	id := model.UnitId(d)

	_, err := repo.Save(testEvent(d, 1, "value"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(id))

	_, ok, err := repo.GetKey(id)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConcurrentSaves(t *testing.T) {
	repo := NewMemoryRepository()
	d := model.VaultLogDescriptor("concurrent_vault")

	const n = 50
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(seq uint64) {
			_, err := repo.Save(testEvent(d, seq, seq))
			results <- err
		}(uint64(i + 1))
	}

	for i := 0; i < n; i++ {
		require.NoError(t, <-results)
	}
}
