package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meta-secret/meta-secret/internal/action"
	metacrypto "github.com/meta-secret/meta-secret/internal/crypto"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/store"
	"github.com/meta-secret/meta-secret/internal/syncproto"
)

func TestGatewaySyncOnceFetchesServerState(t *testing.T) {
	serverRepo := store.NewMemoryRepository()

	km, err := metacrypto.GenerateKeyManager()
	require.NoError(t, err)
	defer km.Close()
	candidate := model.UserData{VaultName: "gw_vault", Device: model.DeviceData{DeviceName: "laptop"}, OpenBox: km.ToOpenBox()}

	require.NoError(t, action.AcceptSignUp(serverRepo, candidate))

	mux := http.NewServeMux()
	syncproto.RegisterRoutes(mux, serverRepo)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	localRepo := store.NewMemoryRepository()
	gw := New(localRepo, srv.URL)

	require.NoError(t, gw.SyncOnce(context.Background(), candidate))

	vaultLogDesc := model.VaultLogDescriptor("gw_vault")
	_, ok, err := localRepo.GetKey(model.UnitId(vaultLogDesc))
	require.NoError(t, err)
	require.True(t, ok, "gateway should have pulled the VaultLog bootstrap into the local repository")
}

func TestGatewaySyncOnceIsIdempotent(t *testing.T) {
	serverRepo := store.NewMemoryRepository()

	km, err := metacrypto.GenerateKeyManager()
	require.NoError(t, err)
	defer km.Close()
	candidate := model.UserData{VaultName: "gw_vault2", Device: model.DeviceData{DeviceName: "phone"}, OpenBox: km.ToOpenBox()}
	require.NoError(t, action.AcceptSignUp(serverRepo, candidate))

	mux := http.NewServeMux()
	syncproto.RegisterRoutes(mux, serverRepo)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	localRepo := store.NewMemoryRepository()
	gw := New(localRepo, srv.URL)

	require.NoError(t, gw.SyncOnce(context.Background(), candidate))
	require.NoError(t, gw.SyncOnce(context.Background(), candidate))
}
