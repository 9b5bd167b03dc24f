package cmd

import (
	"context"

	"github.com/meta-secret/meta-secret/app/device/internal/gateway"
	"github.com/meta-secret/meta-secret/app/device/internal/localstate"
	"github.com/meta-secret/meta-secret/internal/config"
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/store"
	"github.com/meta-secret/meta-secret/internal/store/boltstore"
)

// session bundles the local repository and the gateway task every
// command talks to. A command never calls gateway.Gateway directly: it
// sends a request on the task's client side and waits for the reply,
// matching spec.md §5's single-producer/single-consumer task model.
type session struct {
	repo   *boltstore.Store
	task   *gateway.Task
	cancel context.CancelFunc
}

func openSession() (*session, error) {
	repo, err := localstate.OpenRepo()
	if err != nil {
		return nil, err
	}

	gw := gateway.New(repo, config.RelayAddr())
	task := gateway.NewTask(gw)

	ctx, cancel := context.WithCancel(context.Background())
	go task.Run(ctx)

	return &session{repo: repo, task: task, cancel: cancel}, nil
}

func (s *session) close() {
	s.cancel()
	_ = s.repo.Close()
}

func (s *session) repository() store.Repository {
	return s.repo
}

// sync runs one sync cycle for self via the gateway task.
func (s *session) sync(ctx context.Context, self model.UserData) error {
	resp, err := s.task.Client().Call(ctx, gateway.Request{Kind: gateway.ReqSync, Self: self})
	if err != nil {
		return err
	}
	return resp.Err
}

// push sends event (already written locally by self) to the relay via
// the gateway task.
func (s *session) push(ctx context.Context, self model.UserData, event model.KvLogEvent) error {
	resp, err := s.task.Client().Call(ctx, gateway.Request{Kind: gateway.ReqPush, Self: self, Event: event})
	if err != nil {
		return err
	}
	return resp.Err
}

func backgroundCtx() context.Context {
	return context.Background()
}
