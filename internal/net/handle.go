package net

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	metalog "github.com/meta-secret/meta-secret/internal/log"
)

// AuditedHandler is an http.HandlerFunc given a fresh audit trail to fill
// in as it processes the request.
type AuditedHandler func(w http.ResponseWriter, r *http.Request, audit *metalog.AuditEntry)

// Handle wraps an AuditedHandler with request/response audit logging. It
// mirrors the relay server's route registration: every inbound request is
// assigned a trail id, timed, and logged once on exit regardless of
// outcome.
func Handle(action metalog.AuditAction, fn AuditedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		audit := &metalog.AuditEntry{
			TrailID:   uuid.NewString(),
			Timestamp: start,
			State:     metalog.AuditCreated,
		}
		metalog.AuditRequest("Handle", r, audit, action)

		fn(w, r, audit)

		if audit.State == metalog.AuditCreated {
			audit.State = metalog.AuditSuccess
		}
		audit.Duration = time.Since(start)
		metalog.Audit(*audit)
	}
}

// Fail marks the audit entry as errored and writes a JSON error response.
func Fail(w http.ResponseWriter, audit *metalog.AuditEntry, err error) {
	audit.State = metalog.AuditErrored
	audit.Err = err.Error()
	RespondError(w, err)
}
