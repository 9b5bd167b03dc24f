package log

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

type AuditState string

const (
	AuditCreated AuditState = "created"
	AuditSuccess AuditState = "success"
	AuditErrored AuditState = "error"
)

type AuditAction string

const (
	AuditEnter    AuditAction = "enter"
	AuditExit     AuditAction = "exit"
	AuditSignUp   AuditAction = "sign-up"
	AuditJoin     AuditAction = "join"
	AuditAccept   AuditAction = "accept-membership"
	AuditDecline  AuditAction = "decline-membership"
	AuditSplit    AuditAction = "split"
	AuditClaim    AuditAction = "recovery-claim"
	AuditProvide  AuditAction = "recovery-provide"
	AuditRecover  AuditAction = "recover"
	AuditSyncPull AuditAction = "sync-pull"
	AuditSyncPush AuditAction = "sync-push"
	AuditFallback AuditAction = "fallback"
)

// AuditEntry records one audited action: a sync request, an action-algebra
// mutation, or a CLI-driven operation.
type AuditEntry struct {
	TrailID   string        `json:"trailId"`
	Timestamp time.Time     `json:"timestamp"`
	UserID    string        `json:"userId,omitempty"`
	Action    AuditAction   `json:"action"`
	Path      string        `json:"path,omitempty"`
	Resource  string        `json:"resource,omitempty"`
	State     AuditState    `json:"state"`
	Err       string        `json:"err,omitempty"`
	Duration  time.Duration `json:"durationNs,omitempty"`
}

// Audit logs an audit entry as JSON. Marshal failures are logged but never
// block the caller.
func Audit(entry AuditEntry) {
	body, err := json.Marshal(entry)
	if err != nil {
		Log().Error("audit", "msg", "failed to marshal audit entry", "err", err.Error())
		return
	}
	log.Println(string(body))
}

// AuditRequest records the method/path/query of an inbound HTTP request
// against an in-flight audit entry.
func AuditRequest(fName string, r *http.Request, audit *AuditEntry, action AuditAction) {
	Log().Info(fName, "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
	audit.Action = action
	audit.Path = r.URL.Path
}
