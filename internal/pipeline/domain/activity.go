package domain

import "time"

// CallLog records a phone call against any pipeline entity. Immutable.
type CallLog struct {
	ID        int64
	Entity    EntityRef
	Outcome   CallOutcome
	Notes     string
	CreatedAt time.Time
}

// Note is a free-text remark against any pipeline entity. Immutable.
type Note struct {
	ID        int64
	Entity    EntityRef
	Content   string
	CreatedAt time.Time
}

// HandoverNotePrefix marks the note written when a case is opened with
// handover notes.
const HandoverNotePrefix = "[Handover Note] "
