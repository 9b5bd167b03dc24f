package model

import "github.com/meta-secret/meta-secret/internal/crypto"

// EventStage distinguishes the three shapes an event's payload can take
// within a queue-shaped object's lifecycle: the bootstrap Unit/Genesis
// pair, and all subsequent Regular events.
type EventStage string

const (
	StageUnit    EventStage = "unit"
	StageGenesis EventStage = "genesis"
	StageRegular EventStage = "regular"
)

// KvKey is the key half of a KvLogEvent: the artifact id the event is
// stored at, plus the descriptor that produced its FQDN.
type KvKey struct {
	ObjId   ArtifactId       `json:"objId"`
	ObjDesc ObjectDescriptor `json:"objDesc"`
}

// KvLogEvent is one entry in the append-only log: a key identifying
// where it lives, a lifecycle stage, and a typed payload.
type KvLogEvent struct {
	Key   KvKey      `json:"key"`
	Stage EventStage `json:"stage"`
	Value any        `json:"value"`
}

// DeviceCredsPayload is the singleton event recording one device's own
// key material.
type DeviceCredsPayload struct {
	SecretBox crypto.SecretBox `json:"secretBox"`
	Device    DeviceData       `json:"device"`
}

// UserCredsPayload is the singleton event recording the vault a device
// has associated itself with, alongside its own credentials.
type UserCredsPayload struct {
	VaultName VaultName           `json:"vaultName"`
	DeviceCreds DeviceCredsPayload `json:"deviceCreds"`
}

// VaultActionKind tags the variant of a VaultAction.
type VaultActionKind string

const (
	VaultActionCreate           VaultActionKind = "create"
	VaultActionUpdateMembership VaultActionKind = "updateMembership"
	VaultActionAddMetaPass      VaultActionKind = "addMetaPass"
)

// VaultAction is a pending mutation against a vault, queued in VaultLog
// (server-ordered) or DeviceLog (one device's outgoing intents).
type VaultAction struct {
	Kind       VaultActionKind `json:"kind"`
	Candidate  UserData        `json:"candidate,omitempty"`
	Sender     UserData        `json:"sender,omitempty"`
	Update     *UserMembership `json:"update,omitempty"`
	MetaPassId *MetaPasswordId `json:"metaPassId,omitempty"`
}

// CreateVaultAction starts a new vault with its founding member.
func CreateVaultAction(candidate UserData) VaultAction {
	return VaultAction{Kind: VaultActionCreate, Candidate: candidate}
}

// UpdateMembershipAction is issued by sender to transition update's
// subject into a new membership state.
func UpdateMembershipAction(sender UserData, update UserMembership) VaultAction {
	return VaultAction{Kind: VaultActionUpdateMembership, Sender: sender, Update: &update}
}

// AddMetaPassAction records that the vault's secret set now includes id.
func AddMetaPassAction(sender UserData, id MetaPasswordId) VaultAction {
	return VaultAction{Kind: VaultActionAddMetaPass, Sender: sender, MetaPassId: &id}
}

// VaultActionEvent is a VaultAction authored by a specific device,
// the payload shape DeviceLog entries carry.
type VaultActionEvent struct {
	Author UserData    `json:"author"`
	Action VaultAction `json:"action"`
}

// VaultLogPayload wraps a pending VaultAction in the server-ordered
// queue for a vault.
type VaultLogPayload struct {
	Action VaultAction `json:"action"`
}

// VaultStatusPayload records one user's membership as currently known.
type VaultStatusPayload struct {
	Membership UserMembership `json:"membership"`
}

// SsClaim is a recovery claim: a requester asking the listed providers
// to re-encrypt their share of PassId toward it.
type SsClaim struct {
	PassId          MetaPasswordId `json:"passId"`
	RequesterDevice DeviceId       `json:"requesterDevice"`
	SenderMembers   []DeviceId     `json:"senderMembers"`
}

// SsDeviceLogPayload is one device's outgoing share intent or claim.
type SsDeviceLogPayload struct {
	Claim *SsClaim `json:"claim,omitempty"`
}

// SsLogPayload is the server-merged claim queue entry for a vault.
type SsLogPayload struct {
	Claim SsClaim `json:"claim"`
}

// SsDistributionPayload is one encrypted Shamir share in transit,
// sealed-box encrypted from sender to receiver.
type SsDistributionPayload struct {
	Id         SsDistributionId `json:"id"`
	Ciphertext crypto.Base64Text `json:"ciphertext"`
}

// DistributionAckState tags whether a receiver has acknowledged an
// SsDistribution.
type DistributionAckState string

const (
	DistributionCreated   DistributionAckState = "created"
	DistributionDelivered DistributionAckState = "delivered"
)

// SsDistributionStatusPayload records one receiver's acknowledgement of
// an SsDistribution. Delivered is treated as a tombstone the server may
// garbage-collect lazily.
type SsDistributionStatusPayload struct {
	Id    ClaimDbId            `json:"id"`
	State DistributionAckState `json:"state"`
}

// DbTailPayload records the last-known ArtifactId the server has
// observed per descriptor, for a device's ServerTail bookkeeping.
type DbTailPayload struct {
	VaultLogTail      *ArtifactId `json:"vaultLogTail,omitempty"`
	DeviceLogTail     *ArtifactId `json:"deviceLogTail,omitempty"`
	SsDeviceLogTail   *ArtifactId `json:"ssDeviceLogTail,omitempty"`
}
