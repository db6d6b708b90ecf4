package useragreement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"termsync/store"
)

// ErrTermsNotFound signals the agreed-to terms-of-use row does not exist.
var ErrTermsNotFound = errors.New("useragreement: terms of use not found")

// Repository defines the data access the agreement handler needs.
type Repository interface {
	TermsAgreeabilityType(ctx context.Context, tx pgx.Tx, termsID int64) (int64, error)
	HasAgreement(ctx context.Context, tx pgx.Tx, userID, termsID int64) (bool, error)
	UnmetDependencies(ctx context.Context, tx pgx.Tx, userID, termsID int64) ([]int64, error)
	IsBanned(ctx context.Context, tx pgx.Tx, userID, termsID int64) (bool, error)
	InsertAgreement(ctx context.Context, tx pgx.Tx, userID, termsID int64, agreedAt time.Time) error
}

// PGRepository implements Repository over pgx and the store gateway.
type PGRepository struct{}

func NewRepository() *PGRepository {
	return &PGRepository{}
}

func (r *PGRepository) TermsAgreeabilityType(ctx context.Context, tx pgx.Tx, termsID int64) (int64, error) {
	record, err := store.EnsureExists(ctx, tx, store.TableTermsOfUse,
		store.Conditions{"terms_of_use_id": termsID})
	if err != nil {
		if errors.Is(err, store.ErrNoMatch) {
			return 0, fmt.Errorf("%w: id %d", ErrTermsNotFound, termsID)
		}
		return 0, err
	}
	return record.Int64("terms_of_use_agreeability_type_id"), nil
}

func (r *PGRepository) HasAgreement(ctx context.Context, tx pgx.Tx, userID, termsID int64) (bool, error) {
	records, err := store.SearchRecords(ctx, tx, store.TableUserTermsXref, store.Conditions{
		"user_id":         userID,
		"terms_of_use_id": termsID,
	})
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

// UnmetDependencies returns the direct dependency terms ids the user has not
// yet agreed to. The check is one hop only; transitive dependencies are the
// responsibility of the edges themselves.
func (r *PGRepository) UnmetDependencies(ctx context.Context, tx pgx.Tx, userID, termsID int64) ([]int64, error) {
	const query = `
		SELECT d.dependency_terms_of_use_id, u.user_id
		FROM terms_of_use_dependency d
		LEFT JOIN user_terms_of_use_xref u
			ON u.terms_of_use_id = d.dependency_terms_of_use_id AND u.user_id = $2
		WHERE d.dependent_terms_of_use_id = $1
	`

	rows, err := tx.Query(ctx, query, termsID, userID)
	if err != nil {
		return nil, fmt.Errorf("useragreement: query dependencies: %w", err)
	}
	defer rows.Close()

	var unmet []int64
	for rows.Next() {
		var dependencyID int64
		var agreedUserID *int64
		if err := rows.Scan(&dependencyID, &agreedUserID); err != nil {
			return nil, fmt.Errorf("useragreement: scan dependency: %w", err)
		}
		if agreedUserID == nil {
			unmet = append(unmet, dependencyID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("useragreement: iterate dependencies: %w", err)
	}
	return unmet, nil
}

func (r *PGRepository) IsBanned(ctx context.Context, tx pgx.Tx, userID, termsID int64) (bool, error) {
	records, err := store.SearchRecords(ctx, tx, store.TableUserTermsBanXref, store.Conditions{
		"user_id":         userID,
		"terms_of_use_id": termsID,
	})
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

func (r *PGRepository) InsertAgreement(ctx context.Context, tx pgx.Tx, userID, termsID int64, agreedAt time.Time) error {
	return store.InsertRecord(ctx, tx, store.TableUserTermsXref, store.Row{
		"user_id":         userID,
		"terms_of_use_id": termsID,
		"create_date":     agreedAt,
		"modify_date":     agreedAt,
	})
}
