// Package net provides HTTP transport helpers shared by the relay server
// and the device gateway: JSON request/response marshaling, an
// audit-wrapped handler adapter, and a POST client used to send sync
// requests.
package net

import (
	"encoding/json"
	"io"
	"net/http"

	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
)

const maxBodyBytes = 8 << 20 // 8MiB, generous for a vault snapshot + log tail

// ReadRequestBody reads and JSON-decodes an HTTP request body into v.
func ReadRequestBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return metaerrors.Wrap(metaerrors.KindTransport, "failed to read request body", err)
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, v); err != nil {
		return metaerrors.Wrap(metaerrors.KindInvalidCast, "failed to decode request body", err)
	}
	return nil
}

// ReadBytes JSON-decodes raw body bytes into v.
func ReadBytes(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return metaerrors.Wrap(metaerrors.KindInvalidCast, "failed to decode body", err)
	}
	return nil
}

// MarshalBody JSON-encodes v, returning an InvalidCast error on failure.
func MarshalBody(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, metaerrors.Wrap(metaerrors.KindInvalidCast, "failed to encode response body", err)
	}
	return body, nil
}

// Respond writes v as a JSON response body with the given status code.
func Respond(w http.ResponseWriter, status int, v any) {
	body, err := MarshalBody(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// RespondError writes err as a JSON error response, picking an HTTP status
// from its Kind when err is a *metaerrors.Error.
func RespondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case metaerrors.Is(err, metaerrors.KindNotFound):
		status = http.StatusNotFound
	case metaerrors.Is(err, metaerrors.KindConflict):
		status = http.StatusConflict
	case metaerrors.Is(err, metaerrors.KindInvalidCast):
		status = http.StatusBadRequest
	case metaerrors.Is(err, metaerrors.KindSemanticPolicy):
		status = http.StatusForbidden
	}
	Respond(w, status, map[string]string{"error": err.Error()})
}
