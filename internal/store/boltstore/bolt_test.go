package boltstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meta-secret/meta-secret/internal/model"
)

func TestSaveFindOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	d := model.VaultLogDescriptor("test_vault")
	event := model.KvLogEvent{
		Key:   model.KvKey{ObjId: model.UnitId(d), ObjDesc: d},
		Stage: model.StageUnit,
		Value: "test_vault",
	}

	id, err := s.Save(event)
	require.NoError(t, err)

	found, ok, err := s.FindOne(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, event.Stage, found.Stage)
}

func TestConflictingAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	d := model.VaultLogDescriptor("test_vault")
	event := model.KvLogEvent{Key: model.KvKey{ObjId: model.UnitId(d), ObjDesc: d}, Stage: model.StageUnit}

	_, err = s.Save(event)
	require.NoError(t, err)

	_, err = s.Save(event)
	require.Error(t, err)
}

// TestReopenRoundTrip exercises S7: unit and genesis events saved
// through the bbolt Repository backend are found again at the same ids,
// with the same stages, after the file is reopened from a fresh handle.
func TestReopenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	d := model.VaultLogDescriptor("test_vault")

	s, err := Open(path)
	require.NoError(t, err)

	founder := model.UserData{VaultName: "test_vault", Device: model.DeviceData{DeviceName: "founder"}}
	unit := model.KvLogEvent{Key: model.KvKey{ObjId: model.UnitId(d), ObjDesc: d}, Stage: model.StageUnit, Value: model.VaultName("test_vault")}
	genesis := model.KvLogEvent{Key: model.KvKey{ObjId: model.UnitId(d).Next(), ObjDesc: d}, Stage: model.StageGenesis, Value: founder}

	_, err = s.Save(unit)
	require.NoError(t, err)
	_, err = s.Save(genesis)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	found1, ok, err := reopened.FindOne(model.UnitId(d))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, model.StageUnit, found1.Stage)

	found2, ok, err := reopened.FindOne(model.UnitId(d).Next())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, model.StageGenesis, found2.Stage)
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	d := model.VaultLogDescriptor("test_vault")
	id := model.UnitId(d)
	_, err = s.Save(model.KvLogEvent{Key: model.KvKey{ObjId: id, ObjDesc: d}, Stage: model.StageUnit})
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))

	_, ok, err := s.GetKey(id)
	require.NoError(t, err)
	require.False(t, ok)
}
