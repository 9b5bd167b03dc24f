package syncproto

import (
	"github.com/meta-secret/meta-secret/internal/action"
	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/objects"
	"github.com/meta-secret/meta-secret/internal/store"
)

// HandleMetaRequest answers one pull-side SyncRequest against repo,
// implementing the Vault/Ss/ServerTail variants.
func HandleMetaRequest(repo store.Repository, req SyncRequest) (DataSyncResponse, error) {
	switch req.Kind {
	case RequestVault:
		return handleVaultRequest(repo, req)
	case RequestSs:
		return handleSsRequest(repo, req)
	case RequestServerTail:
		return handleServerTailRequest(repo, req)
	default:
		return DataSyncResponse{}, metaerrors.New(metaerrors.KindInvalidCast, "unknown sync request kind")
	}
}

// handleVaultRequest returns VaultLog events after req.VaultTail, the
// latest Vault snapshot, and the sender's VaultStatus queue.
func handleVaultRequest(repo store.Repository, req SyncRequest) (DataSyncResponse, error) {
	var events []model.KvLogEvent

	vaultLogDesc := model.VaultLogDescriptor(req.Sender.VaultName)
	start := model.UnitId(vaultLogDesc)
	if req.VaultTail != nil {
		start = req.VaultTail.Next()
	}
	logEvents, err := objects.FindObjectEvents(repo, start)
	if err != nil {
		return DataSyncResponse{}, err
	}
	events = append(events, logEvents...)

	vaultDesc := model.VaultDescriptor(req.Sender.VaultName)
	if tail, ok, err := objects.FindTailId(repo, vaultDesc); err != nil {
		return DataSyncResponse{}, err
	} else if ok {
		if snapshot, ok, err := repo.FindOne(tail); err != nil {
			return DataSyncResponse{}, err
		} else if ok {
			events = append(events, snapshot)
		}
	}

	statusDesc := model.VaultStatusDescriptor(req.Sender.UserId())
	statusEvents, err := objects.FindObjectEvents(repo, model.UnitId(statusDesc))
	if err != nil {
		return DataSyncResponse{}, err
	}
	events = append(events, statusEvents...)

	return EventsResponse(events), nil
}

// handleSsRequest returns SsLog events after req.SsLogTail, plus every
// SsDistribution event currently addressed to the sender's device. The
// repository exposes no enumeration operation, so distributions are
// discovered by two rounds of directly computing candidate
// SsDistributionIds rather than scanning: (1) walking the SsLog's
// claims to find shares a provider has re-encrypted toward a recovery
// requester, and (2) walking the vault's current membership and known
// secret ids to find a member's own original share from whichever
// member last ran split — a provider has nothing to re-encrypt in
// ProvideShare until this first pull lands it locally.
func handleSsRequest(repo store.Repository, req SyncRequest) (DataSyncResponse, error) {
	var events []model.KvLogEvent
	seen := make(map[string]bool)

	addIfPresent := func(distId model.SsDistributionId) error {
		key := distId.String()
		if seen[key] {
			return nil
		}
		seen[key] = true

		distEvent, ok, err := repo.FindOne(model.UnitId(model.SsDistributionDescriptor(distId)))
		if err != nil {
			return err
		}
		if ok {
			events = append(events, distEvent)
		}
		return nil
	}

	ssLogDesc := model.SsLogDescriptor(req.Sender.VaultName)
	start := model.UnitId(ssLogDesc)
	if req.SsLogTail != nil {
		start = req.SsLogTail.Next()
	}
	logEvents, err := objects.FindObjectEvents(repo, start)
	if err != nil {
		return DataSyncResponse{}, err
	}
	events = append(events, logEvents...)

	allClaimEvents, err := objects.FindObjectEvents(repo, model.UnitId(ssLogDesc))
	if err != nil {
		return DataSyncResponse{}, err
	}

	senderDevice := req.Sender.DeviceId()
	for _, claimEvent := range allClaimEvents {
		var claim model.SsClaim
		switch v := claimEvent.Value.(type) {
		case model.SsClaim:
			claim = v
		case model.SsLogPayload:
			claim = v.Claim
		default:
			continue
		}
		for _, provider := range claim.SenderMembers {
			link := model.DeviceLink{Sender: provider, Receiver: senderDevice}
			if err := addIfPresent(model.SsDistributionId{PassId: claim.PassId, DeviceLink: link}); err != nil {
				return DataSyncResponse{}, err
			}
		}
	}

	vault, err := latestVaultSnapshot(repo, req.Sender.VaultName)
	if err != nil {
		return DataSyncResponse{}, err
	}
	if vault != nil {
		for _, passId := range vault.Secrets {
			for _, membership := range vault.Users {
				candidateSender := membership.User.DeviceId()
				if candidateSender == senderDevice {
					continue
				}
				link := model.DeviceLink{Sender: candidateSender, Receiver: senderDevice}
				if err := addIfPresent(model.SsDistributionId{PassId: passId, DeviceLink: link}); err != nil {
					return DataSyncResponse{}, err
				}
			}
		}
	}

	return EventsResponse(events), nil
}

// latestVaultSnapshot returns the vault's current snapshot, or nil if
// the vault does not exist yet.
func latestVaultSnapshot(repo store.Repository, vaultName model.VaultName) (*model.VaultData, error) {
	d := model.VaultDescriptor(vaultName)
	tail, ok, err := objects.FindTailId(repo, d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	event, ok, err := repo.FindOne(tail)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	vault, ok := event.Value.(model.VaultData)
	if !ok {
		return nil, metaerrors.New(metaerrors.KindInvalidCast, "vault snapshot has unexpected payload shape")
	}
	return &vault, nil
}

// handleServerTailRequest reports the DeviceLog and SsDeviceLog tails the
// server has observed for the sender, so the client's gateway knows
// which local events remain to be pushed.
func handleServerTailRequest(repo store.Repository, req SyncRequest) (DataSyncResponse, error) {
	deviceLogDesc := model.DeviceLogDescriptor(req.Sender.UserId())
	deviceLogTail, ok, err := objects.FindTailId(repo, deviceLogDesc)
	if err != nil {
		return DataSyncResponse{}, err
	}
	var deviceLogTailPtr *model.ArtifactId
	if ok {
		deviceLogTailPtr = &deviceLogTail
	}

	ssDeviceLogDesc := model.SsDeviceLogDescriptor(req.Sender.DeviceId())
	ssDeviceLogTail, ok, err := objects.FindTailId(repo, ssDeviceLogDesc)
	if err != nil {
		return DataSyncResponse{}, err
	}
	var ssDeviceLogTailPtr *model.ArtifactId
	if ok {
		ssDeviceLogTailPtr = &ssDeviceLogTail
	}

	return ServerTailResponseOf(deviceLogTailPtr, ssDeviceLogTailPtr), nil
}

// HandlePushEvent implements the POST /event push path: validate that
// event's artifact id is the server's current free id for its
// descriptor (rejecting stale pushes as Conflict without partial apply),
// append it, and synthesize the corresponding VaultLog/SsLog queue entry
// plus any resulting Vault snapshot and VaultStatus updates. sender
// supplies the vault-name context a DeviceLog/SsDeviceLog key alone does
// not carry.
func HandlePushEvent(repo store.Repository, sender model.UserData, event model.KvLogEvent) error {
	freeId, err := objects.FindFreeId(repo, event.Key.ObjDesc)
	if err != nil {
		return err
	}
	if freeId != event.Key.ObjId {
		return metaerrors.ErrConflict
	}

	if _, err := repo.Save(event); err != nil {
		return err
	}

	if event.Stage != model.StageRegular {
		return nil
	}

	switch event.Key.ObjDesc.Kind {
	case model.ObjDeviceLog:
		actionEvent, ok := event.Value.(model.VaultActionEvent)
		if !ok {
			return metaerrors.New(metaerrors.KindInvalidCast, "device log regular event has unexpected payload shape")
		}

		vaultLogDesc := model.VaultLogDescriptor(sender.VaultName)
		if _, ok, err := repo.GetKey(model.UnitId(vaultLogDesc)); err != nil {
			return err
		} else if !ok {
			// First event ever seen for this vault: bootstrap VaultLog's
			// unit/genesis pair before appending the synthesized action,
			// matching AcceptSignUp's own bootstrap shape.
			if err := objects.InitQueue(repo, vaultLogDesc, sender.VaultName, actionEvent.Author); err != nil {
				return err
			}
		}
		if _, err := objects.Append(repo, vaultLogDesc, model.VaultLogPayload{Action: actionEvent.Action}); err != nil {
			return err
		}
		return action.ApplyVaultAction(repo, sender.VaultName, actionEvent.Action)

	case model.ObjSsDeviceLog:
		payload, ok := event.Value.(model.SsDeviceLogPayload)
		if !ok || payload.Claim == nil {
			return nil
		}
		ssLogDesc := model.SsLogDescriptor(sender.VaultName)
		if _, ok, err := repo.GetKey(model.UnitId(ssLogDesc)); err != nil {
			return err
		} else if !ok {
			return objects.InitQueue(repo, ssLogDesc, sender.VaultName, *payload.Claim)
		}
		_, err := objects.Append(repo, ssLogDesc, model.SsLogPayload{Claim: *payload.Claim})
		return err

	default:
		return nil
	}
}
