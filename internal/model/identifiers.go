// Package model defines meta-secret's event-sourced data model: typed
// identifiers, object descriptors and their FQDN/ArtifactId namespace,
// the event-kind payloads, and the vault/membership snapshot types.
package model

import (
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"

	"github.com/meta-secret/meta-secret/internal/crypto"
)

// Base64Text re-exports crypto.Base64Text: an opaque URL-safe base64
// string carrying arbitrary bytes.
type Base64Text = crypto.Base64Text

// U64IdUrlEnc re-exports crypto.U64IdUrlEnc: the first 8 bytes of
// SHA-256(name), base64url-encoded.
type U64IdUrlEnc = crypto.U64IdUrlEnc

// DeviceId identifies a device, derived from its transport public key.
// Two devices have equal DeviceId iff they have equal transport keys.
type DeviceId = crypto.DeviceId

// UuidUrlEnc is a 16-byte UUID deterministically derived from
// SHA-256(name), carried as a uuid.UUID-shaped 16-byte array so it gets
// array equality for free (it does not inherit uuid.UUID's methods such
// as MarshalBinary), and never rendered with
// uuid.UUID.String() — its canonical wire form is always base64url of
// the 16 raw bytes.
type UuidUrlEnc uuid.UUID

// NewUuidUrlEnc derives a UuidUrlEnc from an arbitrary seed string.
func NewUuidUrlEnc(name string) UuidUrlEnc {
	sum := sha256.Sum256([]byte(name))
	var id UuidUrlEnc
	copy(id[:], sum[:16])
	return id
}

// String renders the identifier as URL-safe unpadded base64 — the
// canonical form, never uuid.UUID's dashed hex form.
func (id UuidUrlEnc) String() string {
	return string(crypto.EncodeBase64(id[:]))
}

// MarshalJSON encodes the identifier as its canonical base64 string.
func (id UuidUrlEnc) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", id.String())), nil
}

// VaultName is a human-chosen string interpreted as a namespace.
type VaultName string

// UserId identifies a user within a vault: the pair (VaultName,
// DeviceId).
type UserId struct {
	VaultName VaultName `json:"vaultName"`
	DeviceId  DeviceId  `json:"deviceId"`
}

// instanceKey renders the UserId as the single string ObjectFqdn uses
// for its obj_instance component.
func (u UserId) instanceKey() string {
	return string(u.VaultName) + "::" + u.DeviceId.String()
}

// MetaPasswordId content-addresses a user secret by its human-chosen
// name. Per the canonical (name-only, hash-of-name) form — see
// DESIGN.md's resolution of the legacy salted-id ambiguity.
type MetaPasswordId struct {
	Id   U64IdUrlEnc
	Name string
}

// BuildMetaPasswordId derives a MetaPasswordId from a secret's name.
func BuildMetaPasswordId(name string) MetaPasswordId {
	return MetaPasswordId{Id: crypto.U64IdFromName(name), Name: name}
}

// DeviceLink identifies a directed sender->receiver pair of devices,
// used to address an SsDistribution share.
type DeviceLink struct {
	Sender   DeviceId
	Receiver DeviceId
}

func (l DeviceLink) String() string {
	return l.Sender.String() + "->" + l.Receiver.String()
}

// SsDistributionId identifies one encrypted share in transit, content
// addressed by the secret it carries and the device link it travels
// over.
type SsDistributionId struct {
	PassId     MetaPasswordId
	DeviceLink DeviceLink
}

func (id SsDistributionId) String() string {
	return id.PassId.Id.String() + "/" + id.DeviceLink.String()
}

// ClaimDbId identifies a recovery claim.
type ClaimDbId struct {
	PassId          MetaPasswordId
	RequesterDevice DeviceId
}

func (id ClaimDbId) String() string {
	return id.PassId.Id.String() + "/" + id.RequesterDevice.String()
}
