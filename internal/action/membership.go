package action

import (
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/objects"
	"github.com/meta-secret/meta-secret/internal/store"
)

// RequestJoin writes an UpdateMembership{sender=self, update=Member(self)}
// action to candidate's own DeviceLog: a non-member asking to join a
// vault. A self-authored request from a device that is not yet a member
// is downgraded to Outsider(Pending) when the server processes it (see
// ApplyVaultAction) regardless of the membership state requested — only
// an existing member's action can promote or decline another device.
func RequestJoin(repo store.Repository, candidate model.UserData) error {
	d := model.DeviceLogDescriptor(candidate.UserId())
	vaultAction := model.UpdateMembershipAction(candidate, model.Member(candidate))

	if err := bootstrapDeviceLog(repo, d, candidate); err != nil {
		return err
	}
	_, err := objects.Append(repo, d, model.VaultActionEvent{Author: candidate, Action: vaultAction})
	return err
}

// AcceptMembership is issued by an existing member (sender) to promote
// candidate to full membership. Membership enforcement happens when the
// server processes this action against the vault's latest snapshot —
// see ApplyVaultAction.
func AcceptMembership(repo store.Repository, sender, candidate model.UserData) error {
	return issueUpdateMembership(repo, sender, model.Member(candidate))
}

// DeclineMembership is issued by an existing member (sender) to mark
// candidate's join request as declined.
func DeclineMembership(repo store.Repository, sender, candidate model.UserData) error {
	return issueUpdateMembership(repo, sender, model.Outsider(candidate, model.OutsiderDeclined))
}

func issueUpdateMembership(repo store.Repository, sender model.UserData, update model.UserMembership) error {
	d := model.DeviceLogDescriptor(sender.UserId())
	vaultAction := model.UpdateMembershipAction(sender, update)

	if err := bootstrapDeviceLog(repo, d, sender); err != nil {
		return err
	}
	_, err := objects.Append(repo, d, model.VaultActionEvent{Author: sender, Action: vaultAction})
	return err
}

func bootstrapDeviceLog(repo store.Repository, d model.ObjectDescriptor, author model.UserData) error {
	if _, ok, err := repo.GetKey(model.UnitId(d)); err != nil {
		return err
	} else if ok {
		return nil
	}
	return objects.InitQueue(repo, d, author.UserId(), author)
}
