package resourceterms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"termsync/store"
)

var (
	// ErrUnknownTerms signals one or more referenced terms-of-use ids do not exist.
	ErrUnknownTerms = errors.New("resourceterms: unknown terms of use ids")
	// ErrUnknownRole signals the resource role tag has no lookup row.
	ErrUnknownRole = errors.New("resourceterms: unknown resource role")
)

// Repository defines the data access the resource terms handlers need.
type Repository interface {
	ValidateTermsIDs(ctx context.Context, tx pgx.Tx, ids []int64) error
	ResolveRoleID(ctx context.Context, tx pgx.Tx, tag string) (int64, error)
	AssignedTermsIDs(ctx context.Context, tx pgx.Tx, projectID, roleID int64, termsIDs []int64) ([]int64, error)
	InsertAssignment(ctx context.Context, tx pgx.Tx, a Assignment) error
	DeleteAssignment(ctx context.Context, tx pgx.Tx, projectID, roleID, termsID int64) error
}

// Assignment is one (project, resource role, terms of use) row.
type Assignment struct {
	ProjectID    int64
	RoleID       int64
	TermsOfUseID int64
	CreateDate   time.Time
	ModifyDate   time.Time
}

// PGRepository implements Repository over pgx and the store gateway.
type PGRepository struct{}

func NewRepository() *PGRepository {
	return &PGRepository{}
}

// ValidateTermsIDs checks that every id has a terms_of_use row and names the
// missing ones in the error.
func (r *PGRepository) ValidateTermsIDs(ctx context.Context, tx pgx.Tx, ids []int64) error {
	const query = `SELECT terms_of_use_id FROM terms_of_use WHERE terms_of_use_id = ANY($1)`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("resourceterms: query terms ids: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("resourceterms: scan terms id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("resourceterms: iterate terms ids: %w", err)
	}

	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrUnknownTerms, missing)
	}
	return nil
}

// ResolveRoleID maps a human-readable role tag to its numeric id.
func (r *PGRepository) ResolveRoleID(ctx context.Context, tx pgx.Tx, tag string) (int64, error) {
	record, err := store.EnsureExists(ctx, tx, store.TableResourceRole, store.Conditions{"name": tag})
	if err != nil {
		if errors.Is(err, store.ErrNoMatch) {
			return 0, fmt.Errorf("%w: %q", ErrUnknownRole, tag)
		}
		return 0, err
	}
	return record.Int64("resource_role_id"), nil
}

// AssignedTermsIDs returns the terms ids currently assigned to the project and
// role pair. When termsIDs is non-empty the result is scoped to those ids.
func (r *PGRepository) AssignedTermsIDs(ctx context.Context, tx pgx.Tx, projectID, roleID int64, termsIDs []int64) ([]int64, error) {
	query := `SELECT terms_of_use_id FROM project_role_terms_of_use_xref
		WHERE project_id = $1 AND resource_role_id = $2`
	args := []any{projectID, roleID}
	if len(termsIDs) > 0 {
		query += ` AND terms_of_use_id = ANY($3)`
		args = append(args, termsIDs)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("resourceterms: query assignments: %w", err)
	}
	defer rows.Close()

	var assigned []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("resourceterms: scan assignment: %w", err)
		}
		assigned = append(assigned, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resourceterms: iterate assignments: %w", err)
	}
	return assigned, nil
}

func (r *PGRepository) InsertAssignment(ctx context.Context, tx pgx.Tx, a Assignment) error {
	return store.InsertRecord(ctx, tx, store.TableProjectRoleTermsXref, store.Row{
		"project_id":       a.ProjectID,
		"resource_role_id": a.RoleID,
		"terms_of_use_id":  a.TermsOfUseID,
		"create_date":      a.CreateDate,
		"modify_date":      a.ModifyDate,
	})
}

func (r *PGRepository) DeleteAssignment(ctx context.Context, tx pgx.Tx, projectID, roleID, termsID int64) error {
	_, err := store.DeleteRecords(ctx, tx, store.TableProjectRoleTermsXref, store.Conditions{
		"project_id":       projectID,
		"resource_role_id": roleID,
		"terms_of_use_id":  termsID,
	})
	return err
}
