package script

import (
	"github.com/felixgeelhaar/statekit"
)

// Phase represents the action's position in its lifecycle. It aliases
// the machine's state identifier so phases feed the builder directly.
type Phase = statekit.StateID

const (
	// PhaseIdle indicates the action has not started.
	PhaseIdle Phase = "idle"
	// PhaseAuthenticating indicates the credential is being attached.
	PhaseAuthenticating Phase = "authenticating"
	// PhaseDownloading indicates the script body is being fetched.
	PhaseDownloading Phase = "downloading"
	// PhaseVerifying indicates the payload is being checked.
	PhaseVerifying Phase = "verifying"
	// PhaseExecuting indicates the script is running as a child process.
	PhaseExecuting Phase = "executing"
	// PhaseCleaned is the terminal success state: the temporary file is gone.
	PhaseCleaned Phase = "cleaned"
	// PhaseFailed is the absorbing failure state, reachable from any
	// non-terminal phase.
	PhaseFailed Phase = "failed"
)

// Event types for the lifecycle machine.
const (
	eventAuthenticate statekit.EventType = "AUTHENTICATE"
	eventDownload     statekit.EventType = "DOWNLOAD"
	eventVerify       statekit.EventType = "VERIFY"
	eventExecute      statekit.EventType = "EXECUTE"
	eventCleanup      statekit.EventType = "CLEANUP"
	eventFail         statekit.EventType = "FAIL"
)

// lifecycleContext is the (empty) context type for the statekit machine;
// the action keeps its working state outside the machine, which only
// tracks which phase the action is in.
type lifecycleContext struct{}

// lifecycle wraps the statekit interpreter for one action execution.
type lifecycle struct {
	interp *statekit.Interpreter[lifecycleContext]
}

// newLifecycle builds and starts the lifecycle state machine.
func newLifecycle() (*lifecycle, error) {
	machine, err := statekit.NewMachine[lifecycleContext]("remote-script").
		WithInitial(PhaseIdle).
		WithContext(lifecycleContext{}).
		State(PhaseIdle).
		On(eventAuthenticate).Target(PhaseAuthenticating).
		On(eventFail).Target(PhaseFailed).Done().
		State(PhaseAuthenticating).
		On(eventDownload).Target(PhaseDownloading).
		On(eventFail).Target(PhaseFailed).Done().
		State(PhaseDownloading).
		On(eventVerify).Target(PhaseVerifying).
		On(eventFail).Target(PhaseFailed).Done().
		State(PhaseVerifying).
		On(eventExecute).Target(PhaseExecuting).
		On(eventFail).Target(PhaseFailed).Done().
		State(PhaseExecuting).
		On(eventCleanup).Target(PhaseCleaned).
		On(eventFail).Target(PhaseFailed).Done().
		State(PhaseCleaned).Done().
		State(PhaseFailed).Done().
		Build()
	if err != nil {
		return nil, err
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &lifecycle{interp: interp}, nil
}

// advance sends an event to the machine.
func (l *lifecycle) advance(event statekit.EventType) {
	l.interp.Send(statekit.Event{Type: event})
}

// fail moves the machine into the absorbing failure state.
func (l *lifecycle) fail() {
	l.interp.Send(statekit.Event{Type: eventFail})
}

// phase returns the machine's current phase.
func (l *lifecycle) phase() Phase {
	return l.interp.State().Value
}

// stop shuts the interpreter down.
func (l *lifecycle) stop() {
	l.interp.Stop()
}
