// Package flow walks conversion stages in one of three modes, persisting the
// outcome of every action so that a later process can resume, finish or
// revert the work.
package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/centos2alma/internal/domain/action"
	"github.com/felixgeelhaar/centos2alma/internal/domain/state"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// Store is the persisted outcome record the flow reads and writes.
type Store interface {
	Outcome(name string) state.Outcome
	Set(name string, outcome state.Outcome) error
	Save() error
	Remove() error
}

// Option configures a Flow.
type Option func(*options)

type options struct {
	logger   ports.Logger
	observer Observer
}

// WithLogger sets the logger used for stage and action messages.
func WithLogger(logger ports.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver registers a callback for stage and action events.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// position is the stage and action the executor is working on.
type position struct {
	stage  string
	action string
}

// Flow executes stages of actions in a single mode.
//
// Run is called once from the executor goroutine. The progress accessors
// may be called concurrently from any goroutine.
type Flow struct {
	mode   action.Mode
	stages []action.Stage
	store  Store
	opts   options

	validated bool
	ran       bool

	running   atomic.Bool
	finished  atomic.Bool
	failed    atomic.Bool
	current   atomic.Pointer[position]
	remaining atomic.Int64

	mu       sync.Mutex
	err      error
	statuses map[string]StageStatus
}

// New creates a flow over stages in the given mode, recording outcomes in
// store.
func New(mode action.Mode, stages []action.Stage, store Store, opts ...Option) (*Flow, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid mode: %q", mode)
	}
	if store == nil {
		return nil, errors.New("state store is required")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = ports.NewNopLogger()
	}

	f := &Flow{
		mode:     mode,
		stages:   stages,
		store:    store,
		opts:     o,
		statuses: make(map[string]StageStatus, len(stages)),
	}
	f.current.Store(&position{})

	var total time.Duration
	for _, stage := range stages {
		f.statuses[stage.Name] = StagePending
		total += stageEstimate(stage, mode)
	}
	f.remaining.Store(int64(total))

	return f, nil
}

// Mode returns the mode the flow runs in.
func (f *Flow) Mode() action.Mode {
	return f.mode
}

// Validate checks the structure of the stages: stage names are non-empty
// and unique, actions are non-nil with unique non-empty names, and a reboot
// point, if any, is the last action in prepare order.
func (f *Flow) Validate() error {
	stageNames := make(map[string]struct{}, len(f.stages))
	actionNames := make(map[string]string)
	var errs []error

	last := lastActionName(f.stages)
	for _, stage := range f.stages {
		if stage.Name == "" {
			errs = append(errs, ErrEmptyStageName)
		} else if _, dup := stageNames[stage.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateStage, stage.Name))
		}
		stageNames[stage.Name] = struct{}{}

		for i, a := range stage.Actions {
			if a == nil {
				errs = append(errs, fmt.Errorf("%w at position %d of stage %q", ErrNilAction, i, stage.Name))
				continue
			}
			name := a.Name()
			if name == "" {
				errs = append(errs, fmt.Errorf("%w in stage %q", ErrEmptyActionName, stage.Name))
				continue
			}
			if prev, dup := actionNames[name]; dup {
				errs = append(errs, fmt.Errorf("%w: %q in stages %q and %q", ErrDuplicateAction, name, prev, stage.Name))
				continue
			}
			actionNames[name] = stage.Name

			if action.IsRebootPoint(a) && name != last {
				errs = append(errs, fmt.Errorf("%w: %q", ErrRebootPoint, name))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid flow: %w", errors.Join(errs...))
	}

	f.validated = true
	return nil
}

// Run walks the stages. Stages run in declared order when preparing and in
// reverse order when finishing or reverting; actions inside a stage always
// run in declared order. The first failing action stops the flow.
func (f *Flow) Run(ctx context.Context) error {
	if !f.validated {
		return ErrNotValidated
	}
	if f.ran {
		return ErrAlreadyRun
	}
	f.ran = true

	f.running.Store(true)
	defer func() {
		f.current.Store(&position{})
		f.running.Store(false)
		f.finished.Store(true)
	}()

	f.opts.logger.Info(ctx, "starting conversion pass", ports.F("mode", f.mode.String()), ports.F("stages", len(f.stages)))

	for _, stage := range f.order() {
		if err := f.runStage(ctx, stage); err != nil {
			f.setErr(err)
			f.opts.logger.Error(ctx, "conversion pass failed", ports.F("mode", f.mode.String()), ports.Err(err))
			return err
		}
	}

	f.opts.logger.Info(ctx, "conversion pass completed", ports.F("mode", f.mode.String()))
	return nil
}

func (f *Flow) runStage(ctx context.Context, stage action.Stage) error {
	walk, err := newStageWalk(stage.Name,
		func() {
			f.opts.logger.Info(ctx, "stage started", ports.F("stage", stage.Name))
			f.notify(Event{Stage: stage.Name, Kind: KindStageStarted})
		},
		func() {
			f.notify(Event{Stage: stage.Name, Kind: KindStageFailed})
		},
	)
	if err != nil {
		return &EnvironmentError{Op: "start stage", Err: err}
	}
	defer func() {
		f.setStatus(stage.Name, walk.status())
		walk.stop()
	}()

	walk.send(EventStart)
	f.setStatus(stage.Name, walk.status())

	for _, a := range stage.Actions {
		if err := f.runAction(ctx, stage.Name, a); err != nil {
			walk.send(EventFail)
			return err
		}
	}

	walk.send(EventComplete)
	f.remaining.Add(-int64(stageEstimate(stage, f.mode)))
	return nil
}

func (f *Flow) runAction(ctx context.Context, stage string, a action.Action) error {
	name := a.Name()
	f.current.Store(&position{stage: stage, action: name})
	log := f.opts.logger.With(ports.F("stage", stage), ports.F("action", name))

	if f.mode.Reversed() {
		if prior := f.store.Outcome(name); !prior.Committed() {
			log.Info(ctx, "skipping action", ports.F("reason", "prepare outcome was "+prior.String()))
			return f.skip(ctx, stage, name)
		}
	}

	if !a.IsRequired(ctx) {
		log.Info(ctx, "skipping action", ports.F("reason", "not required"))
		return f.skip(ctx, stage, name)
	}

	log.Info(ctx, "running action", ports.F("mode", f.mode.String()), ports.F("description", a.Description()))
	f.notify(Event{Stage: stage, Action: name, Kind: KindActionStarted})

	if err := invoke(ctx, a, f.mode); err != nil {
		actionErr := &action.Error{Name: name, Mode: f.mode, Err: err}
		log.Error(ctx, "action failed", ports.Err(err))
		f.notify(Event{Stage: stage, Action: name, Kind: KindActionFailed, Err: actionErr})
		if serr := f.store.Set(name, state.OutcomeFailed); serr != nil {
			return errors.Join(actionErr, &EnvironmentError{Op: "record action outcome", Err: serr})
		}
		return actionErr
	}

	if err := f.store.Set(name, state.OutcomeSuccess); err != nil {
		return &EnvironmentError{Op: "record action outcome", Err: err}
	}
	log.Debug(ctx, "action succeeded")
	f.notify(Event{Stage: stage, Action: name, Kind: KindActionSucceeded})
	return nil
}

func (f *Flow) skip(_ context.Context, stage, name string) error {
	if err := f.store.Set(name, state.OutcomeSkipped); err != nil {
		return &EnvironmentError{Op: "record action outcome", Err: err}
	}
	f.notify(Event{Stage: stage, Action: name, Kind: KindActionSkipped})
	return nil
}

// invoke runs the phase and turns a panic into an error, so a crashing
// action is recorded as failed like any other.
func invoke(ctx context.Context, a action.Action, mode action.Mode) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &action.PanicError{Value: r}
		}
	}()
	return action.Invoke(ctx, a, mode)
}

// Failed reports whether the pass stopped on an error.
func (f *Flow) Failed() bool {
	return f.failed.Load()
}

// Err returns the error that stopped the pass, or nil.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Finished reports whether Run has returned.
func (f *Flow) Finished() bool {
	return f.finished.Load()
}

// Running reports whether Run is executing.
func (f *Flow) Running() bool {
	return f.running.Load()
}

// CurrentStage returns the stage being executed, or "".
func (f *Flow) CurrentStage() string {
	return f.current.Load().stage
}

// CurrentAction returns the action being executed, or "".
func (f *Flow) CurrentAction() string {
	return f.current.Load().action
}

// TotalEstimate returns the summed estimates of every stage not yet completed.
func (f *Flow) TotalEstimate() time.Duration {
	return time.Duration(f.remaining.Load())
}

// StageStatus returns the walk status of the named stage.
func (f *Flow) StageStatus(name string) StageStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[name]
}

// Close flushes the state store. After a finish pass that completed without
// error the migration is over and the state file is removed instead.
func (f *Flow) Close() error {
	if f.mode == action.ModeFinish && f.Finished() && !f.Failed() {
		if err := f.store.Remove(); err != nil {
			return &EnvironmentError{Op: "remove state file", Err: err}
		}
		return nil
	}
	if err := f.store.Save(); err != nil {
		return &EnvironmentError{Op: "save state", Err: err}
	}
	return nil
}

func (f *Flow) order() []action.Stage {
	ordered := make([]action.Stage, len(f.stages))
	copy(ordered, f.stages)
	if f.mode.Reversed() {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}
	return ordered
}

func (f *Flow) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
	f.failed.Store(true)
}

func (f *Flow) setStatus(stage string, status StageStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[stage] = status
}

func (f *Flow) notify(e Event) {
	if f.opts.observer != nil {
		f.opts.observer(e)
	}
}

func stageEstimate(stage action.Stage, mode action.Mode) time.Duration {
	var total time.Duration
	for _, a := range stage.Actions {
		if a != nil {
			total += a.Estimate(mode)
		}
	}
	return total
}

func lastActionName(stages []action.Stage) string {
	for i := len(stages) - 1; i >= 0; i-- {
		if n := len(stages[i].Actions); n > 0 && stages[i].Actions[n-1] != nil {
			return stages[i].Actions[n-1].Name()
		}
	}
	return ""
}
