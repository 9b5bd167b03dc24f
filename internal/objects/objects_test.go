package objects

import (
	"testing"

	"github.com/stretchr/testify/require"

	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/store"
)

// TestUnitGenesisBootstrap exercises P6: after InitQueue the first two
// events have seq-ids 1 and 2 with the documented payload shapes, and
// re-running init is a no-op.
func TestUnitGenesisBootstrap(t *testing.T) {
	repo := store.NewMemoryRepository()
	d := model.VaultLogDescriptor("test_vault")

	require.NoError(t, InitQueue(repo, d, "test_vault", "founder"))

	unit, ok, err := repo.FindOne(model.UnitId(d))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, model.StageUnit, unit.Stage)
	require.Equal(t, "test_vault", unit.Value)

	genesis, ok, err := repo.FindOne(model.UnitId(d).Next())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, model.StageGenesis, genesis.Stage)
	require.Equal(t, "founder", genesis.Value)

	// Re-running is a no-op: no error, no overwrite.
	require.NoError(t, InitQueue(repo, d, "different_name", "different_founder"))
	unitAgain, _, err := repo.FindOne(model.UnitId(d))
	require.NoError(t, err)
	require.Equal(t, "test_vault", unitAgain.Value)
}

func TestFindTailIdEmptyObject(t *testing.T) {
	repo := store.NewMemoryRepository()
	d := model.VaultLogDescriptor("empty_vault")

	_, ok, err := FindTailId(repo, d)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestAppendMonotonicity exercises P4: after save, find_free_id strictly
// increases by exactly one.
func TestAppendMonotonicity(t *testing.T) {
	repo := store.NewMemoryRepository()
	d := model.VaultLogDescriptor("test_vault")
	require.NoError(t, InitQueue(repo, d, "test_vault", "founder"))

	freeBefore, err := FindFreeId(repo, d)
	require.NoError(t, err)
	require.Equal(t, uint64(3), freeBefore.SeqId)

	id, err := Append(repo, d, "third")
	require.NoError(t, err)
	require.Equal(t, freeBefore, id)

	freeAfter, err := FindFreeId(repo, d)
	require.NoError(t, err)
	require.Equal(t, freeBefore.SeqId+1, freeAfter.SeqId)
}

func TestFindObjectEvents(t *testing.T) {
	repo := store.NewMemoryRepository()
	d := model.VaultLogDescriptor("test_vault")
	require.NoError(t, InitQueue(repo, d, "test_vault", "founder"))
	_, err := Append(repo, d, "third")
	require.NoError(t, err)

	events, err := FindObjectEvents(repo, model.UnitId(d))
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, model.StageUnit, events[0].Stage)
	require.Equal(t, model.StageGenesis, events[1].Stage)
	require.Equal(t, model.StageRegular, events[2].Stage)
}

// TestConflictingAppendRetries exercises S6: two writers compute the
// same free id; exactly one succeeds, the other retries at k+1.
func TestConflictingAppendRetries(t *testing.T) {
	repo := store.NewMemoryRepository()
	d := model.VaultLogDescriptor("test_vault")
	require.NoError(t, InitQueue(repo, d, "test_vault", "founder"))

	freeId, err := FindFreeId(repo, d)
	require.NoError(t, err)

	event := model.KvLogEvent{Key: model.KvKey{ObjId: freeId, ObjDesc: d}, Stage: model.StageRegular, Value: "writer-a"}
	_, err = repo.Save(event)
	require.NoError(t, err)

	_, err = repo.Save(event)
	require.True(t, metaerrors.Is(err, metaerrors.KindConflict))

	retryId, err := FindFreeId(repo, d)
	require.NoError(t, err)
	require.Equal(t, freeId.SeqId+1, retryId.SeqId)
}
