package model

import "github.com/meta-secret/meta-secret/internal/crypto"

// UserData is the public information a device contributes when it joins
// a vault: its identity and its public key material.
type UserData struct {
	VaultName VaultName      `json:"vaultName"`
	Device    DeviceData     `json:"device"`
	OpenBox   crypto.OpenBox `json:"openBox"`
}

// DeviceId derives the user's device identifier from its open key box.
func (u UserData) DeviceId() DeviceId {
	return crypto.DeviceIdFromOpenBox(u.OpenBox)
}

// UserId pairs the user's vault name with its derived device id.
func (u UserData) UserId() UserId {
	return UserId{VaultName: u.VaultName, DeviceId: u.DeviceId()}
}

// DeviceData is the human-facing identity of a device: the name chosen
// at init-device time.
type DeviceData struct {
	DeviceName string `json:"deviceName"`
}

// OutsiderStatus is the sub-state of a non-member UserMembership.
type OutsiderStatus string

const (
	OutsiderNonMember OutsiderStatus = "nonMember"
	OutsiderPending   OutsiderStatus = "pending"
	OutsiderDeclined  OutsiderStatus = "declined"
)

// MembershipKind tags whether a UserMembership is a full member or an
// outsider in some sub-state.
type MembershipKind string

const (
	MembershipMember   MembershipKind = "member"
	MembershipOutsider MembershipKind = "outsider"
)

// UserMembership is Member(UserData) or Outsider(UserData, status).
type UserMembership struct {
	Kind   MembershipKind `json:"kind"`
	User   UserData       `json:"user"`
	Status OutsiderStatus `json:"status,omitempty"`
}

func Member(user UserData) UserMembership {
	return UserMembership{Kind: MembershipMember, User: user}
}

func Outsider(user UserData, status OutsiderStatus) UserMembership {
	return UserMembership{Kind: MembershipOutsider, User: user, Status: status}
}

func (m UserMembership) IsMember() bool {
	return m.Kind == MembershipMember
}

// VaultData is the current snapshot of a vault's members and secret ids.
type VaultData struct {
	VaultName VaultName                  `json:"vaultName"`
	Users     map[string]UserMembership  `json:"users"`
	Secrets   map[string]MetaPasswordId  `json:"secrets"`
}

// NewVaultData creates an empty vault snapshot.
func NewVaultData(name VaultName) VaultData {
	return VaultData{
		VaultName: name,
		Users:     make(map[string]UserMembership),
		Secrets:   make(map[string]MetaPasswordId),
	}
}

// Membership looks up a device's current membership entry.
func (v VaultData) Membership(deviceId DeviceId) (UserMembership, bool) {
	m, ok := v.Users[deviceId.String()]
	return m, ok
}

// IsMember reports whether deviceId currently holds full membership.
func (v VaultData) IsMember(deviceId DeviceId) bool {
	m, ok := v.Membership(deviceId)
	return ok && m.IsMember()
}

// SetMembership records membership (or outsider sub-state) for a device.
func (v VaultData) SetMembership(deviceId DeviceId, membership UserMembership) {
	v.Users[deviceId.String()] = membership
}

// AddSecret records that the vault now knows about a secret id.
func (v VaultData) AddSecret(id MetaPasswordId) {
	v.Secrets[id.Id.String()] = id
}
