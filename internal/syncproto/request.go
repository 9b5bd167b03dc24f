// Package syncproto defines the wire protocol a device gateway and a
// relay server speak over HTTP: the SyncRequest sum type, the
// DataSyncResponse tagged union, and the server-side handler that
// applies and synthesizes events per request.
package syncproto

import (
	"encoding/json"
	"fmt"

	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
)

// RequestKind tags the variant of a SyncRequest.
type RequestKind string

const (
	RequestVault      RequestKind = "vault"
	RequestSs         RequestKind = "ss"
	RequestServerTail RequestKind = "serverTail"
)

// SyncRequest is a sum of Vault{sender,tail}, Ss{sender,ssLog}, and
// ServerTail{sender}, serialized with an adjacent "__tag" field naming
// the variant in camelCase.
type SyncRequest struct {
	Kind   RequestKind
	Sender model.UserData

	// VaultTail is the client's last-observed VaultLog artifact id, set
	// only for Kind == RequestVault. A zero value requests the full log.
	VaultTail *model.ArtifactId

	// SsLogTail is the client's last-observed SsLog artifact id, set only
	// for Kind == RequestSs.
	SsLogTail *model.ArtifactId
}

// VaultRequest builds a Vault-kind SyncRequest.
func VaultRequest(sender model.UserData, tail *model.ArtifactId) SyncRequest {
	return SyncRequest{Kind: RequestVault, Sender: sender, VaultTail: tail}
}

// SsRequest builds an Ss-kind SyncRequest.
func SsRequest(sender model.UserData, ssLogTail *model.ArtifactId) SyncRequest {
	return SyncRequest{Kind: RequestSs, Sender: sender, SsLogTail: ssLogTail}
}

// ServerTailRequest builds a ServerTail-kind SyncRequest.
func ServerTailRequest(sender model.UserData) SyncRequest {
	return SyncRequest{Kind: RequestServerTail, Sender: sender}
}

type syncRequestWire struct {
	Tag       RequestKind       `json:"__tag"`
	Sender    model.UserData    `json:"sender"`
	VaultTail *model.ArtifactId `json:"tail,omitempty"`
	SsLogTail *model.ArtifactId `json:"ssLog,omitempty"`
}

func (r SyncRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(syncRequestWire{
		Tag:       r.Kind,
		Sender:    r.Sender,
		VaultTail: r.VaultTail,
		SsLogTail: r.SsLogTail,
	})
}

func (r *SyncRequest) UnmarshalJSON(data []byte) error {
	var wire syncRequestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return metaerrors.Wrap(metaerrors.KindInvalidCast, "malformed sync request", err)
	}

	switch wire.Tag {
	case RequestVault, RequestSs, RequestServerTail:
	default:
		return metaerrors.New(metaerrors.KindInvalidCast, fmt.Sprintf("unknown sync request tag %q", wire.Tag))
	}

	r.Kind = wire.Tag
	r.Sender = wire.Sender
	r.VaultTail = wire.VaultTail
	r.SsLogTail = wire.SsLogTail
	return nil
}
