// Package gateway implements the device-side sync cycle (C9): talking to
// a relay server over the sync protocol, applying returned events
// through the local repository's normal save path, and pushing local
// DeviceLog/SsDeviceLog events the server has not yet observed. The
// front-end (CLI today) never talks to the relay directly — it only
// ever asks the gateway to run a cycle.
package gateway

import (
	"context"
	"net/http"

	"github.com/meta-secret/meta-secret/internal/config"
	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/objects"
	metanet "github.com/meta-secret/meta-secret/internal/net"
	"github.com/meta-secret/meta-secret/internal/retry"
	"github.com/meta-secret/meta-secret/internal/store"
	"github.com/meta-secret/meta-secret/internal/syncproto"
)

// Gateway drives one device's sync cycle against its local repository
// and a relay server client.
type Gateway struct {
	local   store.Repository
	client  *metanet.Client
	retrier *retry.TypedRetrier[struct{}]
}

// New builds a Gateway over local (the device's own Repository, any
// backend) talking to the relay server reachable at relayAddr. Each
// individual RPC is bounded by config.SyncTimeout; the overall cycle
// (across retries) by config.SyncMaxElapsed via the backoff retrier.
func New(local store.Repository, relayAddr string) *Gateway {
	httpClient := &http.Client{Timeout: config.SyncTimeout()}
	client := metanet.NewClient(relayAddr, httpClient)
	retrier := retry.NewTypedRetrier[struct{}](retry.NewExponentialRetrier("gateway-sync", config.SyncMaxElapsed()))
	return &Gateway{local: local, client: client, retrier: retrier}
}

// SyncOnce runs a single sync cycle for self: ServerTail, then Vault,
// then Ss pulls are applied locally, and any of self's own local
// DeviceLog/SsDeviceLog events the server has not yet observed are
// pushed. Transient transport failures are retried with exponential
// backoff; no event is discarded on a retried failure.
func (g *Gateway) SyncOnce(ctx context.Context, self model.UserData) error {
	_, err := g.retrier.RetryWithBackoff(ctx, func() (struct{}, error) {
		return struct{}{}, g.syncOnceAttempt(ctx, self)
	})
	return err
}

func (g *Gateway) syncOnceAttempt(ctx context.Context, self model.UserData) error {
	serverTail, err := g.request(ctx, syncproto.ServerTailRequest(self))
	if err != nil {
		return err
	}

	if err := g.pushMissingDeviceLogEvents(ctx, self, serverTail.DeviceLogTail); err != nil {
		return err
	}
	if err := g.pushMissingSsDeviceLogEvents(ctx, self, serverTail.SsDeviceLogTail); err != nil {
		return err
	}

	vaultTail, err := g.localTail(model.VaultLogDescriptor(self.VaultName))
	if err != nil {
		return err
	}
	vaultResp, err := g.request(ctx, syncproto.VaultRequest(self, vaultTail))
	if err != nil {
		return err
	}
	if err := g.applyEvents(vaultResp.Events); err != nil {
		return err
	}

	ssLogTail, err := g.localTail(model.SsLogDescriptor(self.VaultName))
	if err != nil {
		return err
	}
	ssResp, err := g.request(ctx, syncproto.SsRequest(self, ssLogTail))
	if err != nil {
		return err
	}
	return g.applyEvents(ssResp.Events)
}

func (g *Gateway) request(ctx context.Context, req syncproto.SyncRequest) (syncproto.DataSyncResponse, error) {
	var resp syncproto.DataSyncResponse
	err := g.client.PostJSON(ctx, "/meta_request", req, &resp)
	return resp, err
}

// PushEvent pushes a single event self has already written locally —
// typically an SsDistribution or SsDistributionStatus singleton
// produced by split or accept-recovery, which (unlike DeviceLog and
// SsDeviceLog queue entries) SyncOnce never discovers and pushes on
// its own. A Conflict response means the server already has it, which
// is treated as success.
func (g *Gateway) PushEvent(ctx context.Context, self model.UserData, event model.KvLogEvent) error {
	var resp map[string]string
	err := g.client.PostJSON(ctx, "/event", pushEventBody{Sender: self, Event: event}, &resp)
	if metaerrors.Is(err, metaerrors.KindConflict) {
		return nil
	}
	return err
}

// applyEvents saves every returned event through the normal save path,
// which enforces free-id per object: a stale or out-of-order event is
// rejected as Conflict rather than silently applied, and already-present
// events (re-delivered by an overlapping sync window) are tolerated.
func (g *Gateway) applyEvents(events []model.KvLogEvent) error {
	for _, event := range events {
		if _, ok, err := g.local.GetKey(event.Key.ObjId); err != nil {
			return err
		} else if ok {
			continue
		}
		if _, err := g.local.Save(event); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gateway) localTail(d model.ObjectDescriptor) (*model.ArtifactId, error) {
	tail, ok, err := objects.FindTailId(g.local, d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &tail, nil
}

// pushMissingDeviceLogEvents pushes every locally-present DeviceLog event
// after serverTail (nil meaning the server has observed nothing yet).
func (g *Gateway) pushMissingDeviceLogEvents(ctx context.Context, self model.UserData, serverTail *model.ArtifactId) error {
	return g.pushTail(ctx, self, model.DeviceLogDescriptor(self.UserId()), serverTail)
}

// pushMissingSsDeviceLogEvents pushes every locally-present SsDeviceLog
// event after serverTail.
func (g *Gateway) pushMissingSsDeviceLogEvents(ctx context.Context, self model.UserData, serverTail *model.ArtifactId) error {
	return g.pushTail(ctx, self, model.SsDeviceLogDescriptor(self.DeviceId()), serverTail)
}

func (g *Gateway) pushTail(ctx context.Context, self model.UserData, d model.ObjectDescriptor, serverTail *model.ArtifactId) error {
	start := model.UnitId(d)
	if serverTail != nil {
		start = serverTail.Next()
	}
	if _, ok, err := g.local.GetKey(start); err != nil {
		return err
	} else if !ok {
		return nil
	}

	events, err := objects.FindObjectEvents(g.local, start)
	if err != nil {
		return err
	}
	for _, event := range events {
		var resp map[string]string
		if err := g.client.PostJSON(ctx, "/event", pushEventBody{Sender: self, Event: event}, &resp); err != nil {
			return err
		}
	}
	return nil
}

type pushEventBody struct {
	Sender model.UserData   `json:"sender"`
	Event  model.KvLogEvent `json:"event"`
}
