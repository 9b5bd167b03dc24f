package action

import "github.com/meta-secret/meta-secret/internal/model"

// AppStateKind tags the variant of a GenericAppState.
type AppStateKind string

const (
	StateEmpty  AppStateKind = "empty"
	StateLocal  AppStateKind = "local"
	StateVault  AppStateKind = "vault"
)

// VaultStateKind is the sub-state once a device has associated itself
// with a vault.
type VaultStateKind string

const (
	VaultStateNotExists VaultStateKind = "notExists"
	VaultStateOutsider  VaultStateKind = "outsider"
	VaultStateMember    VaultStateKind = "member"
)

// GenericAppState models a device's local progression: Empty ->
// Local(device) -> Vault(NotExists|Outsider|Member). Transitions occur
// only when a non-idempotent action succeeds and an event is persisted.
type GenericAppState struct {
	Kind       AppStateKind
	Device     *model.UserData
	VaultState VaultStateKind
	Membership *model.UserMembership
}

// EmptyState is the initial state before any device credentials exist.
func EmptyState() GenericAppState {
	return GenericAppState{Kind: StateEmpty}
}

// ToLocal transitions Empty -> Local once device credentials have been
// created.
func (s GenericAppState) ToLocal(device model.UserData) GenericAppState {
	return GenericAppState{Kind: StateLocal, Device: &device}
}

// ToVaultNotExists transitions Local -> Vault(NotExists) once a user has
// associated with a vault name it has not yet signed up to.
func (s GenericAppState) ToVaultNotExists() GenericAppState {
	return GenericAppState{Kind: StateVault, Device: s.Device, VaultState: VaultStateNotExists}
}

// ToVaultOutsider transitions to Vault(Outsider) once the server
// reports a VaultStatus entry for this device that is not a member.
func (s GenericAppState) ToVaultOutsider(membership model.UserMembership) GenericAppState {
	return GenericAppState{Kind: StateVault, Device: s.Device, VaultState: VaultStateOutsider, Membership: &membership}
}

// ToVaultMember transitions to Vault(Member) once the server reports
// full membership for this device.
func (s GenericAppState) ToVaultMember(membership model.UserMembership) GenericAppState {
	return GenericAppState{Kind: StateVault, Device: s.Device, VaultState: VaultStateMember, Membership: &membership}
}

// FromVaultStatus derives the Vault sub-state a device should transition
// to given the latest VaultStatus entry the sync protocol observed for
// it.
func (s GenericAppState) FromVaultStatus(membership model.UserMembership) GenericAppState {
	if membership.IsMember() {
		return s.ToVaultMember(membership)
	}
	return s.ToVaultOutsider(membership)
}
