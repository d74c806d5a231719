package flow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/centos2alma/internal/domain/action"
	"github.com/felixgeelhaar/centos2alma/internal/domain/state"
)

// callLog records phase invocations across actions in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

func (l *callLog) count(s string) int {
	n := 0
	for _, c := range l.all() {
		if c == s {
			n++
		}
	}
	return n
}

// fakeAction records every phase and requirement query.
type fakeAction struct {
	name        string
	notRequired bool
	fail        map[action.Mode]error
	panicIn     action.Mode
	estimate    time.Duration
	log         *callLog
	hook        func(mode action.Mode)
}

func newFake(log *callLog, name string) *fakeAction {
	return &fakeAction{name: name, log: log}
}

func (a *fakeAction) Name() string        { return a.name }
func (a *fakeAction) Description() string { return "fake " + a.name }

func (a *fakeAction) IsRequired(_ context.Context) bool {
	a.log.add(a.name + ".required")
	return !a.notRequired
}

func (a *fakeAction) Prepare(_ context.Context) error { return a.run(action.ModePrepare) }
func (a *fakeAction) Finish(_ context.Context) error  { return a.run(action.ModeFinish) }
func (a *fakeAction) Revert(_ context.Context) error  { return a.run(action.ModeRevert) }

func (a *fakeAction) Estimate(_ action.Mode) time.Duration { return a.estimate }

func (a *fakeAction) run(mode action.Mode) error {
	a.log.add(fmt.Sprintf("%s.%s", a.name, mode))
	if a.hook != nil {
		a.hook(mode)
	}
	if a.panicIn == mode {
		panic("boom")
	}
	return a.fail[mode]
}

type fakeReboot struct {
	*fakeAction
}

func (r fakeReboot) RequestsReboot() bool { return true }

// fakeCheck returns a fixed result.
type fakeCheck struct {
	name        string
	ok          bool
	err         error
	description string
	calls       int
}

func (c *fakeCheck) Name() string        { return c.name }
func (c *fakeCheck) Description() string { return c.description }

func (c *fakeCheck) Check(_ context.Context) (bool, error) {
	c.calls++
	return c.ok, c.err
}

// failingStore fails every write.
type failingStore struct {
	err error
}

func (s failingStore) Outcome(string) state.Outcome { return state.OutcomeNotRecorded }
func (s failingStore) Set(string, state.Outcome) error {
	return s.err
}
func (s failingStore) Save() error   { return s.err }
func (s failingStore) Remove() error { return s.err }
