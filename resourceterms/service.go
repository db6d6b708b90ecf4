// Package resourceterms reconciles per-resource terms-of-use assignments
// against the desired sets supplied by resource terms events.
package resourceterms

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"termsync/events"
)

// ErrDuplicateAssignment signals a create event requested triples that are
// already stored.
var ErrDuplicateAssignment = errors.New("resourceterms: assignment already exists")

// Service applies resource terms events inside a caller-owned transaction.
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

// resolve validates the referenced terms ids and maps the role tag to its id.
func (s *Service) resolve(ctx context.Context, tx pgx.Tx, referenceID, tag string, termsIDs []int64) (projectID, roleID int64, err error) {
	projectID, err = events.ProjectID(referenceID)
	if err != nil {
		return 0, 0, fmt.Errorf("resourceterms: parse reference id %q: %w", referenceID, err)
	}
	if err := s.repo.ValidateTermsIDs(ctx, tx, termsIDs); err != nil {
		return 0, 0, err
	}
	roleID, err = s.repo.ResolveRoleID(ctx, tx, tag)
	if err != nil {
		return 0, 0, err
	}
	return projectID, roleID, nil
}

// Create inserts one assignment per requested terms id, rejecting the event if
// any requested triple is already stored.
func (s *Service) Create(ctx context.Context, tx pgx.Tx, p events.ResourceTermsCreatedPayload) error {
	projectID, roleID, err := s.resolve(ctx, tx, p.ReferenceID, p.Tag, p.TermsOfUseIDs)
	if err != nil {
		return err
	}

	existing, err := s.repo.AssignedTermsIDs(ctx, tx, projectID, roleID, p.TermsOfUseIDs)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: project %d role %d terms %v", ErrDuplicateAssignment, projectID, roleID, existing)
	}

	created := p.Created.UTC()
	for _, termsID := range p.TermsOfUseIDs {
		if err := s.repo.InsertAssignment(ctx, tx, Assignment{
			ProjectID:    projectID,
			RoleID:       roleID,
			TermsOfUseID: termsID,
			CreateDate:   created,
			ModifyDate:   created,
		}); err != nil {
			return err
		}
	}

	s.log.Debug("resource terms created",
		zap.Int64("projectId", projectID), zap.Int64("resourceRoleId", roleID),
		zap.Int("count", len(p.TermsOfUseIDs)))
	return nil
}

// Update reconciles the stored assignment set against the requested one:
// assignments outside the requested set go away, missing ones are inserted,
// and assignments already in place are left untouched.
func (s *Service) Update(ctx context.Context, tx pgx.Tx, p events.ResourceTermsUpdatedPayload) error {
	projectID, roleID, err := s.resolve(ctx, tx, p.ReferenceID, p.Tag, p.TermsOfUseIDs)
	if err != nil {
		return err
	}

	stored, err := s.repo.AssignedTermsIDs(ctx, tx, projectID, roleID, nil)
	if err != nil {
		return err
	}

	toAdd, toRemove := Diff(p.TermsOfUseIDs, stored)

	for _, termsID := range toRemove {
		if err := s.repo.DeleteAssignment(ctx, tx, projectID, roleID, termsID); err != nil {
			return err
		}
	}
	for _, termsID := range toAdd {
		if err := s.repo.InsertAssignment(ctx, tx, Assignment{
			ProjectID:    projectID,
			RoleID:       roleID,
			TermsOfUseID: termsID,
			CreateDate:   p.Created.UTC(),
			ModifyDate:   p.Updated.UTC(),
		}); err != nil {
			return err
		}
	}

	s.log.Debug("resource terms reconciled",
		zap.Int64("projectId", projectID), zap.Int64("resourceRoleId", roleID),
		zap.Int("added", len(toAdd)), zap.Int("removed", len(toRemove)))
	return nil
}

// Remove deletes the assignment rows for exactly the requested terms ids.
func (s *Service) Remove(ctx context.Context, tx pgx.Tx, p events.ResourceTermsDeletedPayload) error {
	projectID, roleID, err := s.resolve(ctx, tx, p.ReferenceID, p.Tag, p.TermsOfUseIDs)
	if err != nil {
		return err
	}

	for _, termsID := range p.TermsOfUseIDs {
		if err := s.repo.DeleteAssignment(ctx, tx, projectID, roleID, termsID); err != nil {
			return err
		}
	}

	s.log.Debug("resource terms deleted",
		zap.Int64("projectId", projectID), zap.Int64("resourceRoleId", roleID),
		zap.Int("count", len(p.TermsOfUseIDs)))
	return nil
}
