package domain

import (
	"fmt"
	"strings"
)

// InvalidStateError reports an entity whose status does not permit the
// requested operation.
type InvalidStateError struct {
	Entity   EntityKind
	Current  string
	Required []string
}

func (e *InvalidStateError) Error() string {
	name := strings.ToUpper(string(e.Entity[:1])) + string(e.Entity[1:])
	if len(e.Required) == 0 {
		return fmt.Sprintf("%s cannot perform this action in %q state.", name, e.Current)
	}
	return fmt.Sprintf("%s is in %q state. Required: %s.", name, e.Current, strings.Join(e.Required, ", "))
}

// StageTransitionError reports a case stage change the pipeline rules forbid.
type StageTransitionError struct {
	Current string
	Target  string
	Reason  string
}

func (e *StageTransitionError) Error() string {
	msg := fmt.Sprintf("Cannot transition from %q", e.Current)
	if e.Target != "" {
		msg += fmt.Sprintf(" to %q", e.Target)
	}
	msg += "."
	if e.Reason != "" {
		msg += " " + e.Reason
	}
	return msg
}

const (
	reasonAlreadyTerminal = "Case is already in a terminal stage"
	reasonNoNextStage     = "No next stage available"
)
