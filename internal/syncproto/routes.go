package syncproto

import (
	"net/http"

	metalog "github.com/meta-secret/meta-secret/internal/log"
	metanet "github.com/meta-secret/meta-secret/internal/net"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/store"
)

// RegisterRoutes wires the relay server's two HTTP endpoints — the
// pull-side POST /meta_request and the push-side POST /event — onto mux
// against repo, each wrapped in the audit-logging handler adapter.
func RegisterRoutes(mux *http.ServeMux, repo store.Repository) {
	mux.HandleFunc("/meta_request", metanet.Handle(metalog.AuditSyncPull, metaRequestHandler(repo)))
	mux.HandleFunc("/event", metanet.Handle(metalog.AuditSyncPush, eventPushHandler(repo)))
}

func metaRequestHandler(repo store.Repository) metanet.AuditedHandler {
	return func(w http.ResponseWriter, r *http.Request, audit *metalog.AuditEntry) {
		var req SyncRequest
		if err := metanet.ReadRequestBody(r, &req); err != nil {
			metanet.Fail(w, audit, err)
			return
		}

		audit.UserID = string(req.Sender.VaultName) + "::" + req.Sender.DeviceId().String()

		resp, err := HandleMetaRequest(repo, req)
		if err != nil {
			metanet.Fail(w, audit, err)
			return
		}

		metanet.Respond(w, http.StatusOK, resp)
	}
}

type pushEventRequest struct {
	Sender model.UserData    `json:"sender"`
	Event  model.KvLogEvent  `json:"event"`
}

func eventPushHandler(repo store.Repository) metanet.AuditedHandler {
	return func(w http.ResponseWriter, r *http.Request, audit *metalog.AuditEntry) {
		var req pushEventRequest
		if err := metanet.ReadRequestBody(r, &req); err != nil {
			metanet.Fail(w, audit, err)
			return
		}

		audit.UserID = string(req.Sender.VaultName) + "::" + req.Sender.DeviceId().String()

		if err := HandlePushEvent(repo, req.Sender, req.Event); err != nil {
			metanet.Fail(w, audit, err)
			return
		}

		metanet.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
