package syncproto

import (
	"encoding/json"
	"fmt"

	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
)

// ResponseKind tags the variant of a DataSyncResponse.
type ResponseKind string

const (
	ResponseEvents           ResponseKind = "events"
	ResponseServerTail       ResponseKind = "serverTailResponse"
)

// DataSyncResponse is a tagged union: Events(events) carries a batch of
// log events to apply; ServerTailResponse carries the server's observed
// DeviceLog/SsDeviceLog tails for a sync request's sender.
type DataSyncResponse struct {
	Kind   ResponseKind
	Events []model.KvLogEvent

	DeviceLogTail   *model.ArtifactId
	SsDeviceLogTail *model.ArtifactId
}

// EventsResponse wraps a batch of events for the Events variant.
func EventsResponse(events []model.KvLogEvent) DataSyncResponse {
	return DataSyncResponse{Kind: ResponseEvents, Events: events}
}

// ServerTailResponseOf builds the ServerTailResponse variant.
func ServerTailResponseOf(deviceLogTail, ssDeviceLogTail *model.ArtifactId) DataSyncResponse {
	return DataSyncResponse{Kind: ResponseServerTail, DeviceLogTail: deviceLogTail, SsDeviceLogTail: ssDeviceLogTail}
}

type dataSyncResponseWire struct {
	Tag             ResponseKind      `json:"__tag"`
	Events          []model.KvLogEvent `json:"events,omitempty"`
	DeviceLogTail   *model.ArtifactId `json:"deviceLogTail,omitempty"`
	SsDeviceLogTail *model.ArtifactId `json:"ssDeviceLogTail,omitempty"`
}

func (r DataSyncResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(dataSyncResponseWire{
		Tag:             r.Kind,
		Events:          r.Events,
		DeviceLogTail:   r.DeviceLogTail,
		SsDeviceLogTail: r.SsDeviceLogTail,
	})
}

func (r *DataSyncResponse) UnmarshalJSON(data []byte) error {
	var wire dataSyncResponseWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return metaerrors.Wrap(metaerrors.KindInvalidCast, "malformed sync response", err)
	}

	switch wire.Tag {
	case ResponseEvents, ResponseServerTail:
	default:
		return metaerrors.New(metaerrors.KindInvalidCast, fmt.Sprintf("unknown sync response tag %q", wire.Tag))
	}

	r.Kind = wire.Tag
	r.Events = wire.Events
	r.DeviceLogTail = wire.DeviceLogTail
	r.SsDeviceLogTail = wire.SsDeviceLogTail
	return nil
}
