package fsm

// SubmissionStatus is the lifecycle of one request to the remote service.
type SubmissionStatus string

// SubmissionEvent drives SubmissionStatus transitions.
type SubmissionEvent string

const (
	SubmissionIdle      SubmissionStatus = "idle"
	SubmissionInFlight  SubmissionStatus = "in_flight"
	SubmissionSucceeded SubmissionStatus = "succeeded"
	SubmissionFailed    SubmissionStatus = "failed"
)

const (
	EventSubmit  SubmissionEvent = "submit"
	EventSucceed SubmissionEvent = "succeed"
	EventReject  SubmissionEvent = "reject"
)

// TransitionSubmission applies one event to a submission status.
// Every terminal status accepts a new submit; in_flight accepts only a terminal outcome.
func TransitionSubmission(current SubmissionStatus, event SubmissionEvent) (SubmissionStatus, error) {
	switch current {
	case SubmissionIdle, SubmissionSucceeded, SubmissionFailed:
		switch event {
		case EventSubmit:
			return SubmissionInFlight, nil
		default:
			return current, invalidTransition(current, event)
		}
	case SubmissionInFlight:
		switch event {
		case EventSucceed:
			return SubmissionSucceeded, nil
		case EventReject:
			return SubmissionFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, unknownState(current)
	}
}
