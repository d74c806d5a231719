package flow

// EventKind identifies a step of a flow pass.
type EventKind string

const (
	KindStageStarted    EventKind = "stage-started"
	KindStageFailed     EventKind = "stage-failed"
	KindActionStarted   EventKind = "action-started"
	KindActionSucceeded EventKind = "action-succeeded"
	KindActionSkipped   EventKind = "action-skipped"
	KindActionFailed    EventKind = "action-failed"
)

// Event is delivered to an Observer as the flow progresses. Action is empty
// for stage events; Err is set only for KindActionFailed.
type Event struct {
	Stage  string
	Action string
	Kind   EventKind
	Err    error
}

// Observer receives flow events on the executor goroutine. It must not
// block and must not call back into the flow.
type Observer func(Event)
