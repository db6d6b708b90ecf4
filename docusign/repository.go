package docusign

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"termsync/store"
)

// ErrEnvelopeNotFound signals a completion update for an unknown envelope.
var ErrEnvelopeNotFound = errors.New("docusign: envelope not found")

// Envelope mirrors the docusign_envelope table columns.
type Envelope struct {
	ID          string
	TemplateID  string
	UserID      int64
	IsCompleted bool
}

// Repository defines the data access the envelope handlers need.
type Repository interface {
	InsertEnvelope(ctx context.Context, tx pgx.Tx, env Envelope) error
	MarkCompleted(ctx context.Context, tx pgx.Tx, envelopeID string) error
}

// PGRepository implements Repository through the generic store gateway.
type PGRepository struct{}

func NewRepository() *PGRepository {
	return &PGRepository{}
}

func (r *PGRepository) InsertEnvelope(ctx context.Context, tx pgx.Tx, env Envelope) error {
	return store.InsertRecord(ctx, tx, store.TableDocusignEnvelope, store.Row{
		"docusign_envelope_id": env.ID,
		"docusign_template_id": env.TemplateID,
		"user_id":              env.UserID,
		"is_completed":         env.IsCompleted,
	})
}

func (r *PGRepository) MarkCompleted(ctx context.Context, tx pgx.Tx, envelopeID string) error {
	if _, err := store.EnsureExists(ctx, tx, store.TableDocusignEnvelope,
		store.Conditions{"docusign_envelope_id": envelopeID}); err != nil {
		if errors.Is(err, store.ErrNoMatch) {
			return fmt.Errorf("%w: %s", ErrEnvelopeNotFound, envelopeID)
		}
		return err
	}
	return store.UpdateRecord(ctx, tx, store.TableDocusignEnvelope,
		store.Row{"is_completed": true},
		store.Conditions{"docusign_envelope_id": envelopeID})
}
