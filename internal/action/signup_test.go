package action

import (
	"testing"

	"github.com/stretchr/testify/require"

	metacrypto "github.com/meta-secret/meta-secret/internal/crypto"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/store"
)

func newTestUser(t *testing.T, vaultName model.VaultName, deviceName string) (model.UserData, *metacrypto.KeyManager) {
	t.Helper()
	km, err := metacrypto.GenerateKeyManager()
	require.NoError(t, err)

	user := model.UserData{
		VaultName: vaultName,
		Device:    model.DeviceData{DeviceName: deviceName},
		OpenBox:   km.ToOpenBox(),
	}
	return user, km
}

// TestSignUpBootstrap exercises S2: after accepting a sign-up, the
// server repo contains a VaultLog bootstrap, a Vault snapshot with the
// candidate as sole member, and a VaultStatus queue for that user.
func TestSignUpBootstrap(t *testing.T) {
	repo := store.NewMemoryRepository()
	candidate, km := newTestUser(t, "test_vault", "client_device")
	defer km.Close()

	require.NoError(t, AcceptSignUp(repo, candidate))

	vaultLogDesc := model.VaultLogDescriptor("test_vault")
	unit, ok, err := repo.FindOne(model.UnitId(vaultLogDesc))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, model.StageUnit, unit.Stage)

	genesis, ok, err := repo.FindOne(model.UnitId(vaultLogDesc).Next())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, model.StageGenesis, genesis.Stage)

	createEvent, ok, err := repo.FindOne(model.UnitId(vaultLogDesc).Next().Next())
	require.NoError(t, err)
	require.True(t, ok)
	payload, ok := createEvent.Value.(model.VaultLogPayload)
	require.True(t, ok)
	require.Equal(t, model.VaultActionCreate, payload.Action.Kind)

	vault, err := latestVault(repo, "test_vault")
	require.NoError(t, err)
	require.True(t, vault.IsMember(candidate.DeviceId()))

	statusDesc := model.VaultStatusDescriptor(candidate.UserId())
	_, ok, err = repo.GetKey(model.UnitId(statusDesc))
	require.NoError(t, err)
	require.True(t, ok)
}
