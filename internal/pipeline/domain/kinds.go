// Package domain holds the lifecycle rules of the sales pipeline: lead and
// client statuses, the case stage machine, the eligibility calculator and the
// placeholder document sets seeded on creation. It has no I/O.
package domain

import "fmt"

// EntityKind discriminates the polymorphic (kind, id) key used by activity
// records.
type EntityKind string

const (
	EntityLead   EntityKind = "lead"
	EntityClient EntityKind = "client"
	EntityCase   EntityKind = "case"
)

func (k EntityKind) Valid() bool {
	switch k {
	case EntityLead, EntityClient, EntityCase:
		return true
	}
	return false
}

// EntityRef is the tagged-union key of an activity record. It is a lookup
// relation only; it never owns the referenced row.
type EntityRef struct {
	Kind EntityKind
	ID   int64
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// CallOutcome is the result of a logged phone call.
type CallOutcome string

const (
	CallConnected   CallOutcome = "connected"
	CallNoAnswer    CallOutcome = "noAnswer"
	CallBusy        CallOutcome = "busy"
	CallWrongNumber CallOutcome = "wrongNumber"
	CallSwitchedOff CallOutcome = "switchedOff"
)

var callOutcomes = map[CallOutcome]struct{}{
	CallConnected:   {},
	CallNoAnswer:    {},
	CallBusy:        {},
	CallWrongNumber: {},
	CallSwitchedOff: {},
}

func (o CallOutcome) Valid() bool {
	_, ok := callOutcomes[o]
	return ok
}
