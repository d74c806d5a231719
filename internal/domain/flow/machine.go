package flow

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// StageStatus is the position of a stage walk.
type StageStatus string

const (
	StagePending StageStatus = statePending
	StageRunning StageStatus = stateRunning
	StageDone    StageStatus = stateDone
	StageFailed  StageStatus = stateFailed
)

// Machine state ids.
const (
	statePending = "pending"
	stateRunning = "running"
	stateDone    = "done"
	stateFailed  = "failed"
)

// Stage walk events.
const (
	EventStart    = "START"
	EventComplete = "COMPLETE"
	EventFail     = "FAIL"
)

// stageContext is carried by a stage walk machine.
type stageContext struct {
	Stage string
}

// stageWalk drives one stage through pending, running and done or failed.
type stageWalk struct {
	interp *statekit.Interpreter[stageContext]
}

// newStageWalk builds and starts the machine for stage. The hooks run on
// entry to running and failed, so observers see transitions exactly once.
func newStageWalk(stage string, onStart, onFail func()) (*stageWalk, error) {
	machine, err := statekit.NewMachine[stageContext]("stage-walk").
		WithInitial(statePending).
		WithContext(stageContext{Stage: stage}).
		WithAction("enterRunning", func(_ *stageContext, _ statekit.Event) {
			if onStart != nil {
				onStart()
			}
		}).
		WithAction("enterFailed", func(_ *stageContext, _ statekit.Event) {
			if onFail != nil {
				onFail()
			}
		}).
		State(statePending).
		On(EventStart).Target(stateRunning).Done().
		State(stateRunning).
		OnEntry("enterRunning").
		On(EventComplete).Target(stateDone).
		On(EventFail).Target(stateFailed).Done().
		State(stateDone).Done().
		State(stateFailed).
		OnEntry("enterFailed").Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build stage machine for %q: %w", stage, err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &stageWalk{interp: interp}, nil
}

func (w *stageWalk) send(event string) {
	w.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (w *stageWalk) status() StageStatus {
	return StageStatus(w.interp.State().Value)
}

func (w *stageWalk) stop() {
	w.interp.Stop()
}
