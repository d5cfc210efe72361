package service

import (
	"context"

	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/ports"
	"rivo_backend/internal/pipeline/transport"
	"rivo_backend/platform/apperr"
	"rivo_backend/platform/sanitize"
)

// LogCall records a call against a lead, client or case and touches the
// entity. The entity row is locked so the log and the touch are atomic.
func (s *Service) LogCall(ctx context.Context, ref domain.EntityRef, req transport.LogCallRequest) (transport.CallLogResponse, error) {
	outcome := domain.CallOutcome(req.Outcome)
	if !outcome.Valid() {
		return transport.CallLogResponse{}, apperr.Validation("invalid call outcome")
	}
	log := domain.CallLog{Entity: ref, Outcome: outcome, Notes: sanitize.Text(req.Notes)}

	err := s.withEntity(ctx, ref, func(tx ports.Tx) error {
		return tx.AddCallLog(ctx, &log)
	})
	if err != nil {
		return transport.CallLogResponse{}, err
	}
	return toCallLogResponse(log), nil
}

// AddNote records a note against a lead, client or case and touches the entity.
func (s *Service) AddNote(ctx context.Context, ref domain.EntityRef, req transport.AddNoteRequest) (transport.NoteResponse, error) {
	content := sanitize.Text(req.Content)
	if content == "" {
		return transport.NoteResponse{}, apperr.Validation("note content is required")
	}
	note := domain.Note{Entity: ref, Content: content}

	err := s.withEntity(ctx, ref, func(tx ports.Tx) error {
		return tx.AddNote(ctx, &note)
	})
	if err != nil {
		return transport.NoteResponse{}, err
	}
	return toNoteResponse(note), nil
}

func (s *Service) ListCallLogs(ctx context.Context, ref domain.EntityRef) ([]transport.CallLogResponse, error) {
	items, err := s.store.ListCallLogs(ctx, ref)
	if err != nil {
		return nil, err
	}
	return toCallLogResponses(items), nil
}

func (s *Service) ListNotes(ctx context.Context, ref domain.EntityRef) ([]transport.NoteResponse, error) {
	items, err := s.store.ListNotes(ctx, ref)
	if err != nil {
		return nil, err
	}
	return toNoteResponses(items), nil
}

func (s *Service) withEntity(ctx context.Context, ref domain.EntityRef, fn func(tx ports.Tx) error) error {
	if !ref.Kind.Valid() {
		return apperr.Validation("unknown entity kind")
	}
	return s.store.WithinTx(ctx, func(tx ports.Tx) error {
		if err := tx.LockEntity(ctx, ref); err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Touch(ctx, ref)
	})
}
