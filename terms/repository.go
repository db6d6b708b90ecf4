package terms

import (
	"context"

	"github.com/jackc/pgx/v5"

	"termsync/store"
)

// Repository defines the data access the terms handlers need. Every method
// operates inside the caller's transaction.
type Repository interface {
	EnsureTermsExists(ctx context.Context, tx pgx.Tx, id int64) error
	EnsureAgreeabilityTypeExists(ctx context.Context, tx pgx.Tx, id int64) error
	EnsureTermsTypeExists(ctx context.Context, tx pgx.Tx, id int64) error

	InsertTerms(ctx context.Context, tx pgx.Tx, rec Record) error
	UpdateTerms(ctx context.Context, tx pgx.Tx, rec Record) error
	DeleteTerms(ctx context.Context, tx pgx.Tx, id int64) error

	FindDocusignTemplate(ctx context.Context, tx pgx.Tx, termsID int64) (string, bool, error)
	InsertDocusignTemplate(ctx context.Context, tx pgx.Tx, termsID int64, templateID string) error
	UpdateDocusignTemplate(ctx context.Context, tx pgx.Tx, termsID int64, templateID string) error
	DeleteDocusignTemplate(ctx context.Context, tx pgx.Tx, termsID int64) error

	DeleteDependencyEdges(ctx context.Context, tx pgx.Tx, termsID int64) error
	DeleteResourceAssignments(ctx context.Context, tx pgx.Tx, termsID int64) error
	DeleteUserAgreements(ctx context.Context, tx pgx.Tx, termsID int64) error
	DeleteUserBans(ctx context.Context, tx pgx.Tx, termsID int64) error
}

// PGRepository implements Repository through the generic store gateway.
type PGRepository struct{}

func NewRepository() *PGRepository {
	return &PGRepository{}
}

func (r *PGRepository) EnsureTermsExists(ctx context.Context, tx pgx.Tx, id int64) error {
	_, err := store.EnsureExists(ctx, tx, store.TableTermsOfUse, store.Conditions{"terms_of_use_id": id})
	return err
}

func (r *PGRepository) EnsureAgreeabilityTypeExists(ctx context.Context, tx pgx.Tx, id int64) error {
	_, err := store.EnsureExists(ctx, tx, store.TableTermsOfUseAgreeabilityType,
		store.Conditions{"terms_of_use_agreeability_type_id": id})
	return err
}

func (r *PGRepository) EnsureTermsTypeExists(ctx context.Context, tx pgx.Tx, id int64) error {
	_, err := store.EnsureExists(ctx, tx, store.TableTermsOfUseType,
		store.Conditions{"terms_of_use_type_id": id})
	return err
}

func (r *PGRepository) InsertTerms(ctx context.Context, tx pgx.Tx, rec Record) error {
	return store.InsertRecord(ctx, tx, store.TableTermsOfUse, store.Row{
		"terms_of_use_id":                   rec.ID,
		"terms_text":                        rec.Text,
		"terms_of_use_type_id":              rec.TypeID,
		"create_date":                       rec.CreateDate,
		"modify_date":                       rec.ModifyDate,
		"title":                             rec.Title,
		"url":                               rec.URL,
		"terms_of_use_agreeability_type_id": rec.AgreeabilityTypeID,
	})
}

func (r *PGRepository) UpdateTerms(ctx context.Context, tx pgx.Tx, rec Record) error {
	return store.UpdateRecord(ctx, tx, store.TableTermsOfUse, store.Row{
		"terms_text":                        rec.Text,
		"terms_of_use_type_id":              rec.TypeID,
		"title":                             rec.Title,
		"url":                               rec.URL,
		"terms_of_use_agreeability_type_id": rec.AgreeabilityTypeID,
		"create_date":                       rec.CreateDate,
		"modify_date":                       rec.ModifyDate,
	}, store.Conditions{"terms_of_use_id": rec.ID})
}

func (r *PGRepository) DeleteTerms(ctx context.Context, tx pgx.Tx, id int64) error {
	_, err := store.DeleteRecords(ctx, tx, store.TableTermsOfUse, store.Conditions{"terms_of_use_id": id})
	return err
}

func (r *PGRepository) FindDocusignTemplate(ctx context.Context, tx pgx.Tx, termsID int64) (string, bool, error) {
	records, err := store.SearchRecords(ctx, tx, store.TableDocusignTemplateXref,
		store.Conditions{"terms_of_use_id": termsID})
	if err != nil {
		return "", false, err
	}
	if len(records) == 0 {
		return "", false, nil
	}
	return records[0].String("docusign_template_id"), true, nil
}

func (r *PGRepository) InsertDocusignTemplate(ctx context.Context, tx pgx.Tx, termsID int64, templateID string) error {
	return store.InsertRecord(ctx, tx, store.TableDocusignTemplateXref, store.Row{
		"terms_of_use_id":      termsID,
		"docusign_template_id": templateID,
	})
}

func (r *PGRepository) UpdateDocusignTemplate(ctx context.Context, tx pgx.Tx, termsID int64, templateID string) error {
	return store.UpdateRecord(ctx, tx, store.TableDocusignTemplateXref,
		store.Row{"docusign_template_id": templateID},
		store.Conditions{"terms_of_use_id": termsID})
}

func (r *PGRepository) DeleteDocusignTemplate(ctx context.Context, tx pgx.Tx, termsID int64) error {
	_, err := store.DeleteRecords(ctx, tx, store.TableDocusignTemplateXref,
		store.Conditions{"terms_of_use_id": termsID})
	return err
}

// DeleteDependencyEdges removes both directions: edges that depend on the
// terms and edges the terms depends on.
func (r *PGRepository) DeleteDependencyEdges(ctx context.Context, tx pgx.Tx, termsID int64) error {
	if _, err := store.DeleteRecords(ctx, tx, store.TableTermsOfUseDependency,
		store.Conditions{"dependency_terms_of_use_id": termsID}); err != nil {
		return err
	}
	_, err := store.DeleteRecords(ctx, tx, store.TableTermsOfUseDependency,
		store.Conditions{"dependent_terms_of_use_id": termsID})
	return err
}

func (r *PGRepository) DeleteResourceAssignments(ctx context.Context, tx pgx.Tx, termsID int64) error {
	_, err := store.DeleteRecords(ctx, tx, store.TableProjectRoleTermsXref,
		store.Conditions{"terms_of_use_id": termsID})
	return err
}

func (r *PGRepository) DeleteUserAgreements(ctx context.Context, tx pgx.Tx, termsID int64) error {
	_, err := store.DeleteRecords(ctx, tx, store.TableUserTermsXref,
		store.Conditions{"terms_of_use_id": termsID})
	return err
}

func (r *PGRepository) DeleteUserBans(ctx context.Context, tx pgx.Tx, termsID int64) error {
	_, err := store.DeleteRecords(ctx, tx, store.TableUserTermsBanXref,
		store.Conditions{"terms_of_use_id": termsID})
	return err
}
