// Package terms handles terms-of-use create, update and delete events.
package terms

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"termsync/events"
)

// Service applies terms-of-use events inside a caller-owned transaction.
type Service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if repo == nil {
		repo = NewRepository()
	}
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// WithClock overrides the fallback timestamp source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) timestamp(t *time.Time) time.Time {
	if t == nil {
		return s.now().UTC()
	}
	return t.UTC()
}

// validateLookups verifies the referenced lookup rows exist; on update the
// target terms row itself must also exist.
func (s *Service) validateLookups(ctx context.Context, tx pgx.Tx, p events.TermsPayload, isUpdate bool) error {
	if isUpdate {
		if err := s.repo.EnsureTermsExists(ctx, tx, p.ID); err != nil {
			return err
		}
	}
	if err := s.repo.EnsureAgreeabilityTypeExists(ctx, tx, p.AgreeabilityTypeID); err != nil {
		return err
	}
	return s.repo.EnsureTermsTypeExists(ctx, tx, p.TypeID)
}

// Create inserts the terms row and, for Docusignable terms carrying a template
// id, the docusign template cross-reference.
func (s *Service) Create(ctx context.Context, tx pgx.Tx, p events.TermsPayload) error {
	if err := s.validateLookups(ctx, tx, p, false); err != nil {
		return err
	}

	created := s.timestamp(p.Created)
	if err := s.repo.InsertTerms(ctx, tx, Record{
		ID:                 p.ID,
		Text:               p.Text,
		TypeID:             p.TypeID,
		Title:              p.Title,
		URL:                p.URL,
		AgreeabilityTypeID: p.AgreeabilityTypeID,
		CreateDate:         created,
		ModifyDate:         created,
	}); err != nil {
		return err
	}

	if p.DocusignTemplateID != "" && p.AgreeabilityTypeID == events.AgreeabilityDocusignable {
		if err := s.repo.InsertDocusignTemplate(ctx, tx, p.ID, p.DocusignTemplateID); err != nil {
			return err
		}
	}

	s.log.Debug("terms of use created", zap.Int64("termsOfUseId", p.ID))
	return nil
}

// Update reconciles the docusign template cross-reference by presence and then
// rewrites the terms row's mutable fields.
func (s *Service) Update(ctx context.Context, tx pgx.Tx, p events.TermsPayload) error {
	if err := s.validateLookups(ctx, tx, p, true); err != nil {
		return err
	}

	_, present, err := s.repo.FindDocusignTemplate(ctx, tx, p.ID)
	if err != nil {
		return err
	}

	switch {
	case p.DocusignTemplateID != "" && p.AgreeabilityTypeID == events.AgreeabilityDocusignable:
		if present {
			err = s.repo.UpdateDocusignTemplate(ctx, tx, p.ID, p.DocusignTemplateID)
		} else {
			err = s.repo.InsertDocusignTemplate(ctx, tx, p.ID, p.DocusignTemplateID)
		}
	case present:
		err = s.repo.DeleteDocusignTemplate(ctx, tx, p.ID)
	}
	if err != nil {
		return err
	}

	if err := s.repo.UpdateTerms(ctx, tx, Record{
		ID:                 p.ID,
		Text:               p.Text,
		TypeID:             p.TypeID,
		Title:              p.Title,
		URL:                p.URL,
		AgreeabilityTypeID: p.AgreeabilityTypeID,
		CreateDate:         s.timestamp(p.Created),
		ModifyDate:         s.timestamp(p.Updated),
	}); err != nil {
		return err
	}

	s.log.Debug("terms of use updated", zap.Int64("termsOfUseId", p.ID))
	return nil
}

// Remove deletes the terms row and every dependent record. The cascade runs
// in-engine; the schema declares no foreign-key cascade.
func (s *Service) Remove(ctx context.Context, tx pgx.Tx, p events.TermsDeletedPayload) error {
	if err := s.repo.EnsureTermsExists(ctx, tx, p.TermsOfUseID); err != nil {
		return err
	}

	steps := []func(context.Context, pgx.Tx, int64) error{
		s.repo.DeleteDocusignTemplate,
		s.repo.DeleteDependencyEdges,
		s.repo.DeleteResourceAssignments,
		s.repo.DeleteUserAgreements,
		s.repo.DeleteUserBans,
		s.repo.DeleteTerms,
	}
	for _, step := range steps {
		if err := step(ctx, tx, p.TermsOfUseID); err != nil {
			return fmt.Errorf("terms: cascade delete %d: %w", p.TermsOfUseID, err)
		}
	}

	s.log.Debug("terms of use deleted", zap.Int64("termsOfUseId", p.TermsOfUseID))
	return nil
}
