// Package transfer implements the bounded single-producer/single-consumer
// request/reply rendezvous used between a device's local front-end (CLI
// or future UI) and its gateway task: the front-end never calls gateway
// internals directly, it only ever sends on one channel and waits on
// another, mirroring the ticker-driven task style of the teacher's poll
// loop generalized to a two-way handoff.
package transfer

import (
	"context"

	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
)

// MpscDataTransfer is an unbuffered request/reply channel pair shared
// between exactly one producer (the client side) and one consumer (the
// service side, i.e. the gateway task). Each send blocks until the other
// side is ready to receive, enforcing synchronous rendezvous rather than
// a buffered queue.
type MpscDataTransfer[Req, Resp any] struct {
	requestCh chan Req
	replyCh   chan Resp
}

// New creates a fresh transfer pair.
func New[Req, Resp any]() *MpscDataTransfer[Req, Resp] {
	return &MpscDataTransfer[Req, Resp]{
		requestCh: make(chan Req),
		replyCh:   make(chan Resp),
	}
}

// ServiceSide returns the gateway-facing half of t: it receives requests
// and sends replies.
func (t *MpscDataTransfer[Req, Resp]) ServiceSide() ServiceSide[Req, Resp] {
	return ServiceSide[Req, Resp]{t: t}
}

// ClientSide returns the front-end-facing half of t: it sends requests
// and receives replies.
func (t *MpscDataTransfer[Req, Resp]) ClientSide() ClientSide[Req, Resp] {
	return ClientSide[Req, Resp]{t: t}
}

// ServiceSide is the gateway's view of a transfer pair.
type ServiceSide[Req, Resp any] struct {
	t *MpscDataTransfer[Req, Resp]
}

// Recv blocks until a request arrives or ctx is done.
func (s ServiceSide[Req, Resp]) Recv(ctx context.Context) (Req, error) {
	var zero Req
	select {
	case req := <-s.t.requestCh:
		return req, nil
	case <-ctx.Done():
		return zero, metaerrors.Wrap(metaerrors.KindTransport, "recv cancelled", ctx.Err())
	}
}

// Reply blocks until resp has been handed to the waiting client or ctx
// is done.
func (s ServiceSide[Req, Resp]) Reply(ctx context.Context, resp Resp) error {
	select {
	case s.t.replyCh <- resp:
		return nil
	case <-ctx.Done():
		return metaerrors.Wrap(metaerrors.KindTransport, "reply cancelled", ctx.Err())
	}
}

// ClientSide is the front-end's view of a transfer pair.
type ClientSide[Req, Resp any] struct {
	t *MpscDataTransfer[Req, Resp]
}

// Send blocks until req has been handed to the waiting gateway or ctx is
// done.
func (c ClientSide[Req, Resp]) Send(ctx context.Context, req Req) error {
	select {
	case c.t.requestCh <- req:
		return nil
	case <-ctx.Done():
		return metaerrors.Wrap(metaerrors.KindTransport, "send cancelled", ctx.Err())
	}
}

// Recv blocks until the matching reply arrives or ctx is done.
func (c ClientSide[Req, Resp]) Recv(ctx context.Context) (Resp, error) {
	var zero Resp
	select {
	case resp := <-c.t.replyCh:
		return resp, nil
	case <-ctx.Done():
		return zero, metaerrors.Wrap(metaerrors.KindTransport, "recv cancelled", ctx.Err())
	}
}

// Call is a convenience wrapper for the common case: send req, then wait
// for the reply.
func (c ClientSide[Req, Resp]) Call(ctx context.Context, req Req) (Resp, error) {
	var zero Resp
	if err := c.Send(ctx, req); err != nil {
		return zero, err
	}
	return c.Recv(ctx)
}
