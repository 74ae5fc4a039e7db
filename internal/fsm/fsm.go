// Package fsm defines the recording and submission state machines.
package fsm

import "fmt"

func invalidTransition[S ~string, E ~string](state S, event E) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}

func unknownState[S ~string](state S) error {
	return fmt.Errorf("unknown state %q", state)
}
