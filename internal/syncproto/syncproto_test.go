package syncproto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meta-secret/meta-secret/internal/action"
	metacrypto "github.com/meta-secret/meta-secret/internal/crypto"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/store"
)

func TestSyncRequestTaggedUnionRoundTrip(t *testing.T) {
	user := model.UserData{VaultName: "v", Device: model.DeviceData{DeviceName: "d"}}
	tail := model.ArtifactId{Fqdn: model.ObjectFqdn{ObjType: "vaultLog", ObjInstance: "v"}, SeqId: 3}

	original := VaultRequest(user, &tail)
	body, err := json.Marshal(original)
	require.NoError(t, err)
	require.Contains(t, string(body), `"__tag":"vault"`)

	var decoded SyncRequest
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Equal(t, RequestVault, decoded.Kind)
	require.Equal(t, tail, *decoded.VaultTail)
}

func TestSyncRequestUnknownTagRejected(t *testing.T) {
	var decoded SyncRequest
	err := json.Unmarshal([]byte(`{"__tag":"bogus"}`), &decoded)
	require.Error(t, err)
}

func TestDataSyncResponseTaggedUnionRoundTrip(t *testing.T) {
	tail := model.ArtifactId{Fqdn: model.ObjectFqdn{ObjType: "deviceLog", ObjInstance: "x"}, SeqId: 1}
	original := ServerTailResponseOf(&tail, nil)

	body, err := json.Marshal(original)
	require.NoError(t, err)
	require.Contains(t, string(body), `"__tag":"serverTailResponse"`)

	var decoded DataSyncResponse
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Equal(t, ResponseServerTail, decoded.Kind)
	require.Equal(t, tail, *decoded.DeviceLogTail)
	require.Nil(t, decoded.SsDeviceLogTail)
}

func newSyncUser(t *testing.T, vaultName model.VaultName, deviceName string) model.UserData {
	t.Helper()
	km, err := metacrypto.GenerateKeyManager()
	require.NoError(t, err)
	t.Cleanup(func() { km.Close() })
	return model.UserData{VaultName: vaultName, Device: model.DeviceData{DeviceName: deviceName}, OpenBox: km.ToOpenBox()}
}

func TestHandleServerTailRequestEmpty(t *testing.T) {
	repo := store.NewMemoryRepository()
	user := newSyncUser(t, "v", "d1")

	resp, err := HandleMetaRequest(repo, ServerTailRequest(user))
	require.NoError(t, err)
	require.Equal(t, ResponseServerTail, resp.Kind)
	require.Nil(t, resp.DeviceLogTail)
	require.Nil(t, resp.SsDeviceLogTail)
}

func TestHandleVaultRequestReturnsSnapshotAfterSignUp(t *testing.T) {
	repo := store.NewMemoryRepository()
	candidate := newSyncUser(t, "sync_vault", "d1")

	require.NoError(t, action.AcceptSignUp(repo, candidate))

	resp, err := HandleMetaRequest(repo, VaultRequest(candidate, nil))
	require.NoError(t, err)
	require.Equal(t, ResponseEvents, resp.Kind)
	require.NotEmpty(t, resp.Events)
}

func TestHandlePushEventRejectsStaleArtifactId(t *testing.T) {
	repo := store.NewMemoryRepository()
	candidate := newSyncUser(t, "sync_vault2", "d1")
	require.NoError(t, action.AcceptSignUp(repo, candidate))

	deviceLogDesc := model.DeviceLogDescriptor(candidate.UserId())
	staleId := model.UnitId(deviceLogDesc)
	event := model.KvLogEvent{
		Key:   model.KvKey{ObjId: staleId, ObjDesc: deviceLogDesc},
		Stage: model.StageUnit,
		Value: candidate.UserId(),
	}

	// Bootstrap the device log out of band so staleId is no longer free.
	require.NoError(t, pushBootstrap(repo, deviceLogDesc, candidate))

	err := HandlePushEvent(repo, candidate, event)
	require.Error(t, err)
}

func pushBootstrap(repo store.Repository, d model.ObjectDescriptor, author model.UserData) error {
	unitId := model.UnitId(d)
	if _, ok, err := repo.GetKey(unitId); err != nil {
		return err
	} else if ok {
		return nil
	}
	if _, err := repo.Save(model.KvLogEvent{Key: model.KvKey{ObjId: unitId, ObjDesc: d}, Stage: model.StageUnit, Value: author.UserId()}); err != nil {
		return err
	}
	_, err := repo.Save(model.KvLogEvent{Key: model.KvKey{ObjId: unitId.Next(), ObjDesc: d}, Stage: model.StageGenesis, Value: author})
	return err
}
