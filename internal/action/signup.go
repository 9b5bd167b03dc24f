// Package action implements the action algebra (C6): sign-up,
// join/accept/decline membership, cluster distribution (split), and
// recovery, each turning a user intent into one or more causally
// ordered events appended through the persistent object layer (C5).
package action

import (
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/objects"
	"github.com/meta-secret/meta-secret/internal/store"
)

// AcceptSignUp creates a brand-new vault for candidate: a VaultLog
// bootstrap (unit/genesis/create) and a Vault snapshot carrying a
// single Member(candidate). It acts directly against whichever repo it
// is given. HandlePushEvent does not call it: when a device's DeviceLog
// Create action first reaches the server, HandlePushEvent writes the
// same unit/genesis/create shape itself.
func AcceptSignUp(repo store.Repository, candidate model.UserData) error {
	vaultLogDesc := model.VaultLogDescriptor(candidate.VaultName)

	if err := objects.InitQueue(repo, vaultLogDesc, candidate.VaultName, candidate); err != nil {
		return err
	}

	createAction := model.CreateVaultAction(candidate)
	if _, err := objects.Append(repo, vaultLogDesc, model.VaultLogPayload{Action: createAction}); err != nil {
		return err
	}

	return ApplyVaultAction(repo, candidate.VaultName, createAction)
}

// SignUp is the device-side half of sign-up: candidate writes a Create
// VaultAction to its own DeviceLog, same as RequestJoin writes an
// UpdateMembership action. The vault itself only comes into existence
// once this event reaches the server and HandlePushEvent bootstraps
// VaultLog from it (InitQueue, then the Create append and
// ApplyVaultAction).
func SignUp(repo store.Repository, candidate model.UserData) error {
	d := model.DeviceLogDescriptor(candidate.UserId())
	createAction := model.CreateVaultAction(candidate)

	if err := bootstrapDeviceLog(repo, d, candidate); err != nil {
		return err
	}
	_, err := objects.Append(repo, d, model.VaultActionEvent{Author: candidate, Action: createAction})
	return err
}
