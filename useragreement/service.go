// Package useragreement registers user agreements to terms of use, gated by
// the eligibility checks: agreeability type, duplicate agreement, direct
// dependency satisfaction, and bans.
package useragreement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"termsync/events"
)

var (
	// ErrNotElectronicallyAgreeable signals the terms cannot be agreed to online.
	ErrNotElectronicallyAgreeable = errors.New("useragreement: terms not electronically agreeable")
	// ErrAlreadyAgreed signals an agreement row for the pair already exists.
	ErrAlreadyAgreed = errors.New("useragreement: user already agreed")
	// ErrDependenciesNotMet signals unagreed direct dependency terms.
	ErrDependenciesNotMet = errors.New("useragreement: dependency terms not agreed")
	// ErrUserBanned signals a ban row blocks the agreement.
	ErrUserBanned = errors.New("useragreement: user banned from agreeing")
)

// Service applies user agreed events inside a caller-owned transaction.
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

// Agree runs the eligibility gates in order and inserts the agreement row only
// after every gate passes.
func (s *Service) Agree(ctx context.Context, tx pgx.Tx, p events.UserAgreedPayload) error {
	agreeability, err := s.repo.TermsAgreeabilityType(ctx, tx, p.TermsOfUseID)
	if err != nil {
		return err
	}
	if agreeability != events.AgreeabilityElectronicallyAgreeable {
		return fmt.Errorf("%w: terms %d", ErrNotElectronicallyAgreeable, p.TermsOfUseID)
	}

	agreed, err := s.repo.HasAgreement(ctx, tx, p.UserID, p.TermsOfUseID)
	if err != nil {
		return err
	}
	if agreed {
		return fmt.Errorf("%w: user %d terms %d", ErrAlreadyAgreed, p.UserID, p.TermsOfUseID)
	}

	unmet, err := s.repo.UnmetDependencies(ctx, tx, p.UserID, p.TermsOfUseID)
	if err != nil {
		return err
	}
	if len(unmet) > 0 {
		return fmt.Errorf("%w: terms %v", ErrDependenciesNotMet, unmet)
	}

	banned, err := s.repo.IsBanned(ctx, tx, p.UserID, p.TermsOfUseID)
	if err != nil {
		return err
	}
	if banned {
		return fmt.Errorf("%w: user %d terms %d", ErrUserBanned, p.UserID, p.TermsOfUseID)
	}

	agreedAt := s.now().UTC()
	if p.Created != nil {
		agreedAt = p.Created.UTC()
	}
	if err := s.repo.InsertAgreement(ctx, tx, p.UserID, p.TermsOfUseID, agreedAt); err != nil {
		return err
	}

	s.log.Debug("user agreement recorded",
		zap.Int64("userId", p.UserID), zap.Int64("termsOfUseId", p.TermsOfUseID))
	return nil
}
