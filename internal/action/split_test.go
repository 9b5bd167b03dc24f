package action

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/shamir"
	"github.com/meta-secret/meta-secret/internal/store"
)

// TestSplitAndRecoverQuorum exercises S5: a secret split (n=3, t=2)
// across three devices recovers once at least two providers have
// delivered their re-encrypted shares; with only one, recovery reports
// InsufficientShares.
func TestSplitAndRecoverQuorum(t *testing.T) {
	repo := store.NewMemoryRepository()

	a, kmA := newTestUser(t, "shared_vault", "device_a")
	defer kmA.Close()
	b, kmB := newTestUser(t, "shared_vault", "device_b")
	defer kmB.Close()
	c, kmC := newTestUser(t, "shared_vault", "device_c")
	defer kmC.Close()
	d, kmD := newTestUser(t, "shared_vault", "device_d")
	defer kmD.Close()

	require.NoError(t, AcceptSignUp(repo, a))
	for _, member := range []model.UserData{b, c} {
		require.NoError(t, AcceptMembership(repo, a, member))
		event, ok, err := repo.FindOne(model.UnitId(model.DeviceLogDescriptor(a.UserId())))
		require.NoError(t, err)
		require.True(t, ok)
		_ = event
	}

	// Apply the two membership-promotion actions directly (simulating
	// the server having processed A's DeviceLog tail).
	applyDeviceLogTail(t, repo, a.UserId(), "shared_vault")

	vault, err := latestVault(repo, "shared_vault")
	require.NoError(t, err)
	require.True(t, vault.IsMember(b.DeviceId()))
	require.True(t, vault.IsMember(c.DeviceId()))

	plaintext := []byte("db-root-password")
	cfg := shamir.SharedSecretConfig{NumberOfShares: 3, Threshold: 2}
	passId, err := Split(repo, kmA, a, "db-root", plaintext, cfg, []model.UserData{a, b, c})
	require.NoError(t, err)

	// D submits a claim naming A, B, C as providers.
	require.NoError(t, CreateClaim(repo, d, passId, []model.DeviceId{a.DeviceId(), b.DeviceId(), c.DeviceId()}))

	// Only A provides its share: insufficient.
	require.NoError(t, ProvideShare(repo, kmA, a, a.DeviceId(), d, passId))
	_, err = Recover(repo, kmD, d, passId, []model.DeviceId{a.DeviceId(), b.DeviceId(), c.DeviceId()}, cfg.Threshold)
	require.Error(t, err)

	// B also provides its share: quorum reached.
	require.NoError(t, ProvideShare(repo, kmB, b, a.DeviceId(), d, passId))
	recovered, err := Recover(repo, kmD, d, passId, []model.DeviceId{a.DeviceId(), b.DeviceId(), c.DeviceId()}, cfg.Threshold)
	require.NoError(t, err)
	require.Equal(t, plaintext, recovered)
}

// applyDeviceLogTail walks every event in userId's DeviceLog and applies
// any VaultActionEvent payloads to the vault, simulating server-side
// VaultLog processing for test purposes.
func applyDeviceLogTail(t *testing.T, repo store.Repository, userId model.UserId, vaultName model.VaultName) {
	t.Helper()
	d := model.DeviceLogDescriptor(userId)
	id := model.UnitId(d).Next().Next()
	for {
		event, ok, err := repo.FindOne(id)
		require.NoError(t, err)
		if !ok {
			return
		}
		if action, ok := event.Value.(model.VaultActionEvent); ok {
			require.NoError(t, ApplyVaultAction(repo, vaultName, action.Action))
		}
		id = id.Next()
	}
}
