package gateway

import (
	"context"

	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/transfer"
)

// RequestKind tags the variant of a Request sent to a Task.
type RequestKind int

const (
	ReqSync RequestKind = iota
	ReqPush
)

// Request is what a front-end sends across a Task's client side: either
// "run a sync cycle for Self" or "push Event on Self's behalf".
type Request struct {
	Kind  RequestKind
	Self  model.UserData
	Event model.KvLogEvent
}

// Response is what a Task replies with.
type Response struct {
	Err error
}

// Task runs a Gateway behind a bounded request/reply rendezvous, so a
// front-end (the CLI today) never calls gateway internals directly: it
// only ever sends a Request on the transfer's client side and waits for
// a Response, per spec.md §5's task-based concurrency model.
type Task struct {
	gw *Gateway
	t  *transfer.MpscDataTransfer[Request, Response]
}

// NewTask wires a fresh Task around gw. Run must be started in its own
// goroutine before Client() is used.
func NewTask(gw *Gateway) *Task {
	return &Task{gw: gw, t: transfer.New[Request, Response]()}
}

// Client returns the front-end-facing half of the task's transfer pair.
func (task *Task) Client() transfer.ClientSide[Request, Response] {
	return task.t.ClientSide()
}

// Run services requests until ctx is cancelled. It is meant to run in
// its own goroutine for the lifetime of one front-end session.
func (task *Task) Run(ctx context.Context) {
	side := task.t.ServiceSide()
	for {
		req, err := side.Recv(ctx)
		if err != nil {
			return
		}

		var resp Response
		switch req.Kind {
		case ReqSync:
			resp.Err = task.gw.SyncOnce(ctx, req.Self)
		case ReqPush:
			resp.Err = task.gw.PushEvent(ctx, req.Self, req.Event)
		}

		if err := side.Reply(ctx, resp); err != nil {
			return
		}
	}
}
