package model

import (
	"encoding/json"
	"fmt"

	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
)

// kvLogEventWire mirrors KvLogEvent but keeps Value as a raw JSON
// message, so UnmarshalJSON can decode it into the concrete Go type its
// descriptor kind and lifecycle stage call for, rather than the generic
// map[string]any the encoding/json package would otherwise produce for
// an `any`-typed field. The key's ObjDesc is decoded first since it
// names which concrete type Value holds.
type kvLogEventWire struct {
	Key   KvKey           `json:"key"`
	Stage EventStage      `json:"stage"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes e the same way the default struct encoding would;
// it exists only so the type carries a matching UnmarshalJSON.
func (e KvLogEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(kvLogEventWire{Key: e.Key, Stage: e.Stage, Value: mustMarshal(e.Value)})
}

func mustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return raw
}

// UnmarshalJSON decodes e, dispatching Value to the concrete payload
// type its ObjDesc.Kind and Stage call for.
func (e *KvLogEvent) UnmarshalJSON(data []byte) error {
	var wire kvLogEventWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return metaerrors.Wrap(metaerrors.KindInvalidCast, "malformed log event", err)
	}

	value, err := decodePayload(wire.Key.ObjDesc.Kind, wire.Stage, wire.Value)
	if err != nil {
		return err
	}

	e.Key = wire.Key
	e.Stage = wire.Stage
	e.Value = value
	return nil
}

// decodePayload resolves the concrete Go type a (kind, stage) pair
// carries and JSON-decodes raw into it. Queue-shaped objects (VaultLog,
// DeviceLog, SsDeviceLog, SsLog) carry distinct unit/genesis/regular
// payload shapes; content-addressed singletons and the freely-appended
// Vault snapshot carry one shape regardless of stage.
func decodePayload(kind ObjectKind, stage EventStage, raw json.RawMessage) (any, error) {
	switch kind {
	case ObjVaultLog:
		switch stage {
		case StageUnit:
			return decodeInto[VaultName](raw)
		case StageGenesis:
			return decodeInto[UserData](raw)
		default:
			return decodeInto[VaultLogPayload](raw)
		}
	case ObjDeviceLog:
		switch stage {
		case StageUnit:
			return decodeInto[UserId](raw)
		case StageGenesis:
			return decodeInto[UserData](raw)
		default:
			return decodeInto[VaultActionEvent](raw)
		}
	case ObjSsDeviceLog:
		switch stage {
		case StageUnit:
			return decodeInto[DeviceId](raw)
		case StageGenesis:
			return decodeInto[UserData](raw)
		default:
			return decodeInto[SsDeviceLogPayload](raw)
		}
	case ObjSsLog:
		switch stage {
		case StageUnit:
			return decodeInto[VaultName](raw)
		case StageGenesis:
			return decodeInto[SsClaim](raw)
		default:
			return decodeInto[SsLogPayload](raw)
		}
	case ObjVaultStatus:
		switch stage {
		case StageUnit:
			return decodeInto[UserId](raw)
		case StageGenesis:
			return decodeInto[UserMembership](raw)
		default:
			return decodeInto[VaultStatusPayload](raw)
		}
	case ObjVault:
		return decodeInto[VaultData](raw)
	case ObjSsDistribution:
		return decodeInto[SsDistributionPayload](raw)
	case ObjSsDistributionStatus:
		return decodeInto[SsDistributionStatusPayload](raw)
	case ObjSsClaim:
		return decodeInto[SsClaim](raw)
	case ObjDeviceCreds:
		return decodeInto[DeviceCredsPayload](raw)
	case ObjUserCreds:
		return decodeInto[UserCredsPayload](raw)
	case ObjDbTail:
		return decodeInto[DbTailPayload](raw)
	default:
		return nil, metaerrors.New(metaerrors.KindInvalidCast, fmt.Sprintf("unknown object kind %q", kind))
	}
}

func decodeInto[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, metaerrors.Wrap(metaerrors.KindInvalidCast, "malformed event payload", err)
	}
	return v, nil
}
