package freezegate

import (
	"context"
	"testing"
	"time"

	"github.com/quartzmkt/resolver-core/pkg/types"
	"go.uber.org/zap"
)

type scriptedPoller struct {
	actions []types.SwitchAction
	i       int
}

func (s *scriptedPoller) Init(_ context.Context) types.SwitchAction {
	return s.next()
}

func (s *scriptedPoller) Poll(_ context.Context) types.SwitchAction {
	return s.next()
}

func (s *scriptedPoller) next() types.SwitchAction {
	if s.i >= len(s.actions) {
		return types.NoneAction()
	}
	a := s.actions[s.i]
	s.i++
	return a
}

func TestGateStartsFrozenUntilInit(t *testing.T) {
	poller := &scriptedPoller{actions: []types.SwitchAction{types.SubscribeNewAction([2]string{"a", "b"}, "slug")}}
	g := New(poller, nil, DefaultConfig(), zap.NewNop())

	if !g.IsFrozen() {
		t.Fatal("expected gate to start frozen")
	}

	g.Init(context.Background())
	if g.IsFrozen() {
		t.Fatal("expected gate to unfreeze after a successful init")
	}
}

func TestGateTripsImmediatelyOnFreeze(t *testing.T) {
	poller := &scriptedPoller{actions: []types.SwitchAction{
		types.SubscribeNewAction([2]string{"a", "b"}, "slug"),
		types.FreezeAction("NoCandidates", "none found"),
	}}
	g := New(poller, nil, DefaultConfig(), zap.NewNop())

	g.Init(context.Background())
	g.observe(poller.next())

	if !g.IsFrozen() {
		t.Fatal("expected gate to trip on a single freeze action")
	}
	reason, message := g.LastFreeze()
	if reason != "NoCandidates" || message != "none found" {
		t.Errorf("unexpected last freeze: %s / %s", reason, message)
	}
}

func TestGateRequiresConsecutiveRecoveryBeforeClearing(t *testing.T) {
	g := New(&scriptedPoller{}, nil, Config{RecoverAfter: 3}, zap.NewNop())
	g.frozen.Store(true)

	g.observe(types.NoneAction())
	if g.IsFrozen() != true {
		t.Fatal("expected gate to remain frozen after one ok action")
	}
	g.observe(types.NoneAction())
	if g.IsFrozen() != true {
		t.Fatal("expected gate to remain frozen after two ok actions")
	}
	g.observe(types.NoneAction())
	if g.IsFrozen() {
		t.Fatal("expected gate to clear after three consecutive ok actions")
	}
}

func TestGateHandlerReceivesEveryAction(t *testing.T) {
	var received []types.SwitchAction
	handler := func(a types.SwitchAction) { received = append(received, a) }

	poller := &scriptedPoller{actions: []types.SwitchAction{
		types.SubscribeNewAction([2]string{"a", "b"}, "slug"),
		types.NoneAction(),
	}}
	g := New(poller, handler, DefaultConfig(), zap.NewNop())
	g.Init(context.Background())
	g.observe(poller.next())

	if len(received) != 2 {
		t.Fatalf("expected 2 actions forwarded, got %d", len(received))
	}
}

func TestGateStartLaunchesBackgroundLoop(t *testing.T) {
	poller := &scriptedPoller{actions: []types.SwitchAction{
		types.SubscribeNewAction([2]string{"a", "b"}, "slug"),
	}}
	cfg := Config{PollInterval: 5 * time.Millisecond, RecoverAfter: 1}
	g := New(poller, nil, cfg, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	g.Start(ctx)
	<-ctx.Done()

	if g.IsFrozen() {
		t.Error("expected gate to have unfrozen via the background loop")
	}
}
