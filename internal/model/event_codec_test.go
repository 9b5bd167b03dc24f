package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meta-secret/meta-secret/internal/crypto"
)

func TestKvLogEventRoundTripsTypedPayloads(t *testing.T) {
	user := UserData{VaultName: "codec_vault", Device: DeviceData{DeviceName: "d1"}, OpenBox: crypto.OpenBox{
		DsaPublicKey:       "dsa-pub",
		TransportPublicKey: "transport-pub",
	}}

	cases := []struct {
		name  string
		event KvLogEvent
	}{
		{
			name: "vault log unit",
			event: KvLogEvent{
				Key:   KvKey{ObjId: UnitId(VaultLogDescriptor("codec_vault")), ObjDesc: VaultLogDescriptor("codec_vault")},
				Stage: StageUnit,
				Value: VaultName("codec_vault"),
			},
		},
		{
			name: "vault log genesis",
			event: KvLogEvent{
				Key:   KvKey{ObjId: UnitId(VaultLogDescriptor("codec_vault")).Next(), ObjDesc: VaultLogDescriptor("codec_vault")},
				Stage: StageGenesis,
				Value: user,
			},
		},
		{
			name: "vault log regular",
			event: KvLogEvent{
				Key:   KvKey{ObjId: UnitId(VaultLogDescriptor("codec_vault")).Next().Next(), ObjDesc: VaultLogDescriptor("codec_vault")},
				Stage: StageRegular,
				Value: VaultLogPayload{Action: CreateVaultAction(user)},
			},
		},
		{
			name: "vault snapshot",
			event: KvLogEvent{
				Key:   KvKey{ObjId: UnitId(VaultDescriptor("codec_vault")), ObjDesc: VaultDescriptor("codec_vault")},
				Stage: StageRegular,
				Value: NewVaultData("codec_vault"),
			},
		},
		{
			name: "device log regular",
			event: KvLogEvent{
				Key:   KvKey{ObjId: UnitId(DeviceLogDescriptor(user.UserId())).Next().Next(), ObjDesc: DeviceLogDescriptor(user.UserId())},
				Stage: StageRegular,
				Value: VaultActionEvent{Author: user, Action: CreateVaultAction(user)},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := json.Marshal(tc.event)
			require.NoError(t, err)

			var decoded KvLogEvent
			require.NoError(t, json.Unmarshal(body, &decoded))
			require.Equal(t, tc.event.Stage, decoded.Stage)
			require.Equal(t, tc.event.Value, decoded.Value)
		})
	}
}

func TestKvLogEventUnknownKindRejected(t *testing.T) {
	raw := []byte(`{"key":{"objId":{"fqdn":{"objType":"bogus","objInstance":"x"},"seqId":1},"objDesc":{"Kind":"bogus","Instance":"x"}},"stage":"unit","value":"x"}`)
	var decoded KvLogEvent
	require.Error(t, json.Unmarshal(raw, &decoded))
}
