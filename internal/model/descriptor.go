package model

import (
	"fmt"
	"strconv"
	"strings"

	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
)

// ObjectKind tags the variant of an ObjectDescriptor.
type ObjectKind string

const (
	ObjDeviceCreds          ObjectKind = "deviceCreds"
	ObjUserCreds            ObjectKind = "userCreds"
	ObjDbTail               ObjectKind = "dbTail"
	ObjVaultLog             ObjectKind = "vaultLog"
	ObjVault                ObjectKind = "vault"
	ObjVaultStatus          ObjectKind = "vaultStatus"
	ObjDeviceLog            ObjectKind = "deviceLog"
	ObjSsDeviceLog          ObjectKind = "ssDeviceLog"
	ObjSsLog                ObjectKind = "ssLog"
	ObjSsDistribution       ObjectKind = "ssDistribution"
	ObjSsClaim              ObjectKind = "ssClaim"
	ObjSsDistributionStatus ObjectKind = "ssDistributionStatus"
)

// ObjectDescriptor names one logical object: a tagged sum over the
// twelve object kinds spec.md §3.2 defines, flattened to a kind plus an
// instance key (empty for the three process-singleton kinds).
type ObjectDescriptor struct {
	Kind     ObjectKind
	Instance string
}

func DeviceCredsDescriptor() ObjectDescriptor {
	return ObjectDescriptor{Kind: ObjDeviceCreds}
}

func UserCredsDescriptor() ObjectDescriptor {
	return ObjectDescriptor{Kind: ObjUserCreds}
}

func DbTailDescriptor() ObjectDescriptor {
	return ObjectDescriptor{Kind: ObjDbTail}
}

func VaultLogDescriptor(vaultName VaultName) ObjectDescriptor {
	return ObjectDescriptor{Kind: ObjVaultLog, Instance: string(vaultName)}
}

func VaultDescriptor(vaultName VaultName) ObjectDescriptor {
	return ObjectDescriptor{Kind: ObjVault, Instance: string(vaultName)}
}

func VaultStatusDescriptor(userId UserId) ObjectDescriptor {
	return ObjectDescriptor{Kind: ObjVaultStatus, Instance: userId.instanceKey()}
}

func DeviceLogDescriptor(userId UserId) ObjectDescriptor {
	return ObjectDescriptor{Kind: ObjDeviceLog, Instance: userId.instanceKey()}
}

func SsDeviceLogDescriptor(deviceId DeviceId) ObjectDescriptor {
	return ObjectDescriptor{Kind: ObjSsDeviceLog, Instance: deviceId.String()}
}

func SsLogDescriptor(vaultName VaultName) ObjectDescriptor {
	return ObjectDescriptor{Kind: ObjSsLog, Instance: string(vaultName)}
}

func SsDistributionDescriptor(id SsDistributionId) ObjectDescriptor {
	return ObjectDescriptor{Kind: ObjSsDistribution, Instance: id.String()}
}

func SsClaimDescriptor(id ClaimDbId) ObjectDescriptor {
	return ObjectDescriptor{Kind: ObjSsClaim, Instance: id.String()}
}

func SsDistributionStatusDescriptor(id ClaimDbId) ObjectDescriptor {
	return ObjectDescriptor{Kind: ObjSsDistributionStatus, Instance: id.String()}
}

// ObjectFqdn names an object's identifier namespace.
type ObjectFqdn struct {
	ObjType     string `json:"objType"`
	ObjInstance string `json:"objInstance"`
}

// Fqdn produces d's ObjectFqdn.
func (d ObjectDescriptor) Fqdn() ObjectFqdn {
	return ObjectFqdn{ObjType: string(d.Kind), ObjInstance: d.Instance}
}

// IsQueue reports whether d's object is a queue-shaped object requiring
// unit/genesis bootstrap (VaultLog, DeviceLog, SsDeviceLog, SsLog).
func (d ObjectDescriptor) IsQueue() bool {
	switch d.Kind {
	case ObjVaultLog, ObjDeviceLog, ObjSsDeviceLog, ObjSsLog:
		return true
	default:
		return false
	}
}

// ArtifactId is a globally unique event id: an ObjectFqdn plus a
// monotonically increasing SeqId starting at 1.
type ArtifactId struct {
	Fqdn  ObjectFqdn `json:"fqdn"`
	SeqId uint64     `json:"seqId"`
}

// UnitId returns the first artifact (seq=1) of the object named by d.
func UnitId(d ObjectDescriptor) ArtifactId {
	return ArtifactId{Fqdn: d.Fqdn(), SeqId: 1}
}

// Next returns the following artifact id for the same object.
func (id ArtifactId) Next() ArtifactId {
	return ArtifactId{Fqdn: id.Fqdn, SeqId: id.SeqId + 1}
}

// IsUnit reports whether id is its object's first (bootstrap) event.
func (id ArtifactId) IsUnit() bool {
	return id.SeqId == 1
}

// IsGenesis reports whether id is its object's second (bootstrap) event.
func (id ArtifactId) IsGenesis() bool {
	return id.SeqId == 2
}

// String renders the canonical form "<obj_type>:<obj_instance>::<seq>".
func (id ArtifactId) String() string {
	return fmt.Sprintf("%s:%s::%d", id.Fqdn.ObjType, id.Fqdn.ObjInstance, id.SeqId)
}

// ParseArtifactId parses the canonical string form produced by String.
func ParseArtifactId(s string) (ArtifactId, error) {
	seqSep := strings.LastIndex(s, "::")
	if seqSep < 0 {
		return ArtifactId{}, metaerrors.New(metaerrors.KindInvalidCast, "malformed artifact id: "+s)
	}
	head, tail := s[:seqSep], s[seqSep+2:]

	seq, err := strconv.ParseUint(tail, 10, 64)
	if err != nil {
		return ArtifactId{}, metaerrors.Wrap(metaerrors.KindInvalidCast, "malformed artifact id seq: "+s, err)
	}

	typeSep := strings.Index(head, ":")
	if typeSep < 0 {
		return ArtifactId{}, metaerrors.New(metaerrors.KindInvalidCast, "malformed artifact id: "+s)
	}

	return ArtifactId{
		Fqdn:  ObjectFqdn{ObjType: head[:typeSep], ObjInstance: head[typeSep+1:]},
		SeqId: seq,
	}, nil
}
