// Package docusign tracks docusign envelope issuance and completion.
package docusign

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"termsync/events"
)

// Service applies docusign envelope events inside a caller-owned transaction.
type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if repo == nil {
		repo = NewRepository()
	}
	return &Service{repo: repo, log: log}
}

// Create inserts an envelope row verbatim from the payload.
func (s *Service) Create(ctx context.Context, tx pgx.Tx, p events.DocusignEnvelopeCreatedPayload) error {
	if err := s.repo.InsertEnvelope(ctx, tx, Envelope{
		ID:          p.ID,
		TemplateID:  p.DocusignTemplateID,
		UserID:      p.UserID,
		IsCompleted: p.IsCompleted != 0,
	}); err != nil {
		return err
	}

	s.log.Debug("docusign envelope created", zap.String("envelopeId", p.ID))
	return nil
}

// Update flips the envelope to completed only when the reported status is
// exactly "Completed"; any other status is a deliberate no-op.
func (s *Service) Update(ctx context.Context, tx pgx.Tx, p events.DocusignEnvelopeUpdatedPayload) error {
	if p.Status != events.EnvelopeStatusCompleted {
		s.log.Debug("docusign envelope status ignored",
			zap.String("envelopeId", p.EnvelopeID), zap.String("status", p.Status))
		return nil
	}

	if err := s.repo.MarkCompleted(ctx, tx, p.EnvelopeID); err != nil {
		return err
	}

	s.log.Debug("docusign envelope completed", zap.String("envelopeId", p.EnvelopeID))
	return nil
}
