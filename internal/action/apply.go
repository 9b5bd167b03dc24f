package action

import (
	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/objects"
	"github.com/meta-secret/meta-secret/internal/store"
)

// latestVault loads the most recent Vault snapshot for a vault, or a
// freshly created empty one if none exists yet.
func latestVault(repo store.Repository, vaultName model.VaultName) (model.VaultData, error) {
	d := model.VaultDescriptor(vaultName)
	tail, ok, err := objects.FindTailId(repo, d)
	if err != nil {
		return model.VaultData{}, err
	}
	if !ok {
		return model.NewVaultData(vaultName), nil
	}

	event, ok, err := repo.FindOne(tail)
	if err != nil {
		return model.VaultData{}, err
	}
	if !ok {
		return model.NewVaultData(vaultName), nil
	}

	vault, ok := event.Value.(model.VaultData)
	if !ok {
		return model.VaultData{}, metaerrors.New(metaerrors.KindInvalidCast, "vault snapshot has unexpected payload shape")
	}
	return vault, nil
}

// ApplyVaultAction interprets one VaultAction against the vault's latest
// snapshot, producing a rewritten Vault snapshot (and, for membership
// changes, a VaultStatus update for the affected user) appended via the
// persistent object layer. This is the server-side semantics spec.md
// §4.6 describes for processing a VaultLog queue entry.
func ApplyVaultAction(repo store.Repository, vaultName model.VaultName, vaultAction model.VaultAction) error {
	vault, err := latestVault(repo, vaultName)
	if err != nil {
		return err
	}

	switch vaultAction.Kind {
	case model.VaultActionCreate:
		vault.SetMembership(vaultAction.Candidate.DeviceId(), model.Member(vaultAction.Candidate))
		if err := appendVaultSnapshot(repo, vault); err != nil {
			return err
		}
		return appendVaultStatus(repo, vaultAction.Candidate.UserId(), model.Member(vaultAction.Candidate))

	case model.VaultActionUpdateMembership:
		resolved, err := resolveMembershipUpdate(vault, vaultAction)
		if err != nil {
			return err
		}
		subject := vaultAction.Update.User
		vault.SetMembership(subject.DeviceId(), resolved)
		if err := appendVaultSnapshot(repo, vault); err != nil {
			return err
		}
		return appendVaultStatus(repo, subject.UserId(), resolved)

	case model.VaultActionAddMetaPass:
		if !vault.IsMember(vaultAction.Sender.DeviceId()) {
			return metaerrors.ErrNotAMember
		}
		vault.AddSecret(*vaultAction.MetaPassId)
		return appendVaultSnapshot(repo, vault)

	default:
		return metaerrors.New(metaerrors.KindInvalidCast, "unknown vault action kind")
	}
}

// resolveMembershipUpdate enforces spec.md §4.5's join policy: only
// members may promote or decline others. A non-member's own request
// (sender == subject) is always downgraded to Outsider(Pending)
// regardless of the membership state it asked for; only an existing
// member's action is honored verbatim.
func resolveMembershipUpdate(vault model.VaultData, vaultAction model.VaultAction) (model.UserMembership, error) {
	sender := vaultAction.Sender
	subject := vaultAction.Update.User

	if sender.DeviceId() == subject.DeviceId() {
		if vault.IsMember(sender.DeviceId()) {
			return *vaultAction.Update, nil
		}
		return model.Outsider(subject, model.OutsiderPending), nil
	}

	if !vault.IsMember(sender.DeviceId()) {
		return model.UserMembership{}, metaerrors.ErrNotAMember
	}
	return *vaultAction.Update, nil
}

func appendVaultSnapshot(repo store.Repository, vault model.VaultData) error {
	_, err := objects.Append(repo, model.VaultDescriptor(vault.VaultName), vault)
	return err
}

func appendVaultStatus(repo store.Repository, userId model.UserId, membership model.UserMembership) error {
	d := model.VaultStatusDescriptor(userId)
	if _, ok, err := repo.GetKey(model.UnitId(d)); err != nil {
		return err
	} else if !ok {
		if err := objects.InitQueue(repo, d, userId, membership); err != nil {
			return err
		}
		return nil
	}
	_, err := objects.Append(repo, d, model.VaultStatusPayload{Membership: membership})
	return err
}
