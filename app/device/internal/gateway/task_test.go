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

func TestTaskRoutesSyncRequestToGateway(t *testing.T) {
	serverRepo := store.NewMemoryRepository()

	km, err := metacrypto.GenerateKeyManager()
	require.NoError(t, err)
	defer km.Close()
	candidate := model.UserData{VaultName: "task_vault", Device: model.DeviceData{DeviceName: "laptop"}, OpenBox: km.ToOpenBox()}
	require.NoError(t, action.AcceptSignUp(serverRepo, candidate))

	mux := http.NewServeMux()
	syncproto.RegisterRoutes(mux, serverRepo)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	localRepo := store.NewMemoryRepository()
	gw := New(localRepo, srv.URL)
	task := NewTask(gw)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go task.Run(ctx)

	resp, err := task.Client().Call(ctx, Request{Kind: ReqSync, Self: candidate})
	require.NoError(t, err)
	require.NoError(t, resp.Err)

	vaultLogDesc := model.VaultLogDescriptor("task_vault")
	_, ok, err := localRepo.GetKey(model.UnitId(vaultLogDesc))
	require.NoError(t, err)
	require.True(t, ok, "task should have routed the sync request through to the gateway")
}

func TestTaskStopsOnContextCancel(t *testing.T) {
	localRepo := store.NewMemoryRepository()
	gw := New(localRepo, "http://127.0.0.1:0")
	task := NewTask(gw)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		task.Run(ctx)
		close(done)
	}()

	cancel()
	<-done
}
