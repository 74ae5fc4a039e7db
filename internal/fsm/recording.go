package fsm

// RecordingState is the lifecycle of one microphone capture.
type RecordingState string

// RecordingEvent drives RecordingState transitions.
type RecordingEvent string

const (
	RecordingIdle      RecordingState = "idle"
	RecordingAcquiring RecordingState = "acquiring_device"
	RecordingActive    RecordingState = "recording"
	RecordingStopping  RecordingState = "stopping"
)

const (
	EventStart     RecordingEvent = "start"
	EventGranted   RecordingEvent = "granted"
	EventDenied    RecordingEvent = "denied"
	EventStop      RecordingEvent = "stop"
	EventAutoStop  RecordingEvent = "auto_stop"
	EventFinalized RecordingEvent = "finalized"
	EventFail      RecordingEvent = "fail"
	EventTeardown  RecordingEvent = "teardown"
)

// TransitionRecording applies one event to a recording state.
func TransitionRecording(current RecordingState, event RecordingEvent) (RecordingState, error) {
	switch current {
	case RecordingIdle:
		switch event {
		case EventStart:
			return RecordingAcquiring, nil
		default:
			return current, invalidTransition(current, event)
		}
	case RecordingAcquiring:
		switch event {
		case EventGranted:
			return RecordingActive, nil
		case EventDenied, EventTeardown:
			return RecordingIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case RecordingActive:
		switch event {
		case EventStop, EventAutoStop:
			return RecordingStopping, nil
		case EventFail, EventTeardown:
			return RecordingIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case RecordingStopping:
		switch event {
		case EventFinalized, EventFail, EventTeardown:
			return RecordingIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, unknownState(current)
	}
}
