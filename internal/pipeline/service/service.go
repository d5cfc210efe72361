// Package service implements the pipeline use cases: lead intake and
// conversion, client qualification, case progression, attachments and the
// activity log. Every mutation runs as one unit of work that locks the target
// row, re-validates against the locked state and writes its audit row before
// committing.
package service

import (
	"context"
	"errors"
	"time"

	"rivo_backend/internal/events"
	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/ports"
	"rivo_backend/platform/apperr"
	"rivo_backend/platform/logger"
	"rivo_backend/platform/phone"
)

// Buckets names the storage buckets for attachment files.
type Buckets struct {
	Documents string
	BankForms string
}

func (b Buckets) For(kind domain.AttachmentKind) string {
	if kind.Owner == domain.EntityCase {
		return b.BankForms
	}
	return b.Documents
}

// Deps are the collaborators of Service. Files, Cleanup and Observer are
// optional.
type Deps struct {
	Store       ports.Store
	Files       ports.FileStorage
	Cleanup     ports.CleanupScheduler
	Observer    ports.TransitionObserver
	Bus         events.Bus
	Log         *logger.Logger
	Buckets     Buckets
	MaxFileSize int64
	// PhoneRegion returns the default region for local phone numbers.
	// Nil means phone.DefaultRegion.
	PhoneRegion func() string
}

type Service struct {
	store       ports.Store
	files       ports.FileStorage
	cleanup     ports.CleanupScheduler
	observer    ports.TransitionObserver
	bus         events.Bus
	log         *logger.Logger
	buckets     Buckets
	maxFileSize int64
	phoneRegion func() string
	now         func() time.Time
}

func New(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = logger.NewDiscard()
	}
	return &Service{
		store:       d.Store,
		files:       d.Files,
		cleanup:     d.Cleanup,
		observer:    d.Observer,
		bus:         d.Bus,
		log:         log,
		buckets:     d.Buckets,
		maxFileSize: d.MaxFileSize,
		phoneRegion: d.PhoneRegion,
		now:         time.Now,
	}
}

func (s *Service) normalizePhone(raw string) string {
	region := ""
	if s.phoneRegion != nil {
		region = s.phoneRegion()
	}
	return phone.NormalizeE164In(raw, region)
}

// toAppError converts domain rule violations into typed application errors.
func toAppError(err error) error {
	if err == nil {
		return nil
	}
	var stateErr *domain.InvalidStateError
	if errors.As(err, &stateErr) {
		return apperr.Wrap(apperr.KindConflict, stateErr.Error(), err).WithDetails(map[string]any{
			"entity":   stateErr.Entity,
			"current":  stateErr.Current,
			"required": stateErr.Required,
		})
	}
	var stageErr *domain.StageTransitionError
	if errors.As(err, &stageErr) {
		return apperr.Wrap(apperr.KindConflict, stageErr.Error(), err).WithDetails(map[string]any{
			"current": stageErr.Current,
			"target":  stageErr.Target,
			"reason":  stageErr.Reason,
		})
	}
	return err
}

func isRuleViolation(err error) bool {
	var stateErr *domain.InvalidStateError
	var stageErr *domain.StageTransitionError
	return errors.As(err, &stateErr) || errors.As(err, &stageErr)
}

// transition runs fn as a unit of work and records the outcome.
func (s *Service) transition(ctx context.Context, entity domain.EntityKind, id int64, operation string, fn func(tx ports.Tx) error) error {
	err := s.store.WithinTx(ctx, fn)
	if err == nil {
		return nil
	}
	if isRuleViolation(err) {
		s.log.WithContext(ctx).TransitionRejected(string(entity), id, operation, err)
		if s.observer != nil {
			s.observer.TransitionRejected(string(entity), operation)
		}
	}
	return toAppError(err)
}

func (s *Service) applied(ctx context.Context, entity domain.EntityKind, id int64, operation, from, to string) {
	s.log.WithContext(ctx).Transition(string(entity), id, from, to)
	if s.observer != nil {
		s.observer.TransitionApplied(string(entity), operation, to)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

func normalizePage(page, size int) ports.Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return ports.Page{Page: page, PageSize: size}
}

func totalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
