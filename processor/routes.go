package processor

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"termsync/docusign"
	"termsync/events"
	"termsync/resourceterms"
	"termsync/terms"
	"termsync/useragreement"
)

// Topics carries the resolved topic names the router listens on.
type Topics struct {
	TermsCreated            string
	TermsUpdated            string
	TermsDeleted            string
	ResourceTermsCreated    string
	ResourceTermsUpdated    string
	ResourceTermsDeleted    string
	UserAgreed              string
	DocusignEnvelopeCreated string
	DocusignEnvelopeUpdated string
}

// Subjects carries the failure-report subject per event family.
type Subjects struct {
	TermsOfUse       string
	ResourceTerms    string
	UserTermsOfUse   string
	DocusignEnvelope string
}

// Routes builds the closed registry of the nine event kinds the processor
// understands.
func Routes(topics Topics, subjects Subjects,
	termsSvc *terms.Service,
	resourceSvc *resourceterms.Service,
	agreementSvc *useragreement.Service,
	envelopeSvc *docusign.Service,
) []Route {
	return []Route{
		{
			Topic:   topics.TermsCreated,
			Subject: subjects.TermsOfUse,
			Bind: func(raw json.RawMessage) (TxFunc, error) {
				p, err := events.ParseTermsPayload(raw)
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context, tx pgx.Tx) error {
					return termsSvc.Create(ctx, tx, p)
				}, nil
			},
		},
		{
			Topic:   topics.TermsUpdated,
			Subject: subjects.TermsOfUse,
			Bind: func(raw json.RawMessage) (TxFunc, error) {
				p, err := events.ParseTermsPayload(raw)
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context, tx pgx.Tx) error {
					return termsSvc.Update(ctx, tx, p)
				}, nil
			},
		},
		{
			Topic:   topics.TermsDeleted,
			Subject: subjects.TermsOfUse,
			Bind: func(raw json.RawMessage) (TxFunc, error) {
				p, err := events.ParseTermsDeletedPayload(raw)
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context, tx pgx.Tx) error {
					return termsSvc.Remove(ctx, tx, p)
				}, nil
			},
		},
		{
			Topic:   topics.ResourceTermsCreated,
			Subject: subjects.ResourceTerms,
			Bind: func(raw json.RawMessage) (TxFunc, error) {
				p, err := events.ParseResourceTermsCreatedPayload(raw)
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context, tx pgx.Tx) error {
					return resourceSvc.Create(ctx, tx, p)
				}, nil
			},
		},
		{
			Topic:   topics.ResourceTermsUpdated,
			Subject: subjects.ResourceTerms,
			Bind: func(raw json.RawMessage) (TxFunc, error) {
				p, err := events.ParseResourceTermsUpdatedPayload(raw)
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context, tx pgx.Tx) error {
					return resourceSvc.Update(ctx, tx, p)
				}, nil
			},
		},
		{
			Topic:   topics.ResourceTermsDeleted,
			Subject: subjects.ResourceTerms,
			Bind: func(raw json.RawMessage) (TxFunc, error) {
				p, err := events.ParseResourceTermsDeletedPayload(raw)
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context, tx pgx.Tx) error {
					return resourceSvc.Remove(ctx, tx, p)
				}, nil
			},
		},
		{
			Topic:   topics.UserAgreed,
			Subject: subjects.UserTermsOfUse,
			Bind: func(raw json.RawMessage) (TxFunc, error) {
				p, err := events.ParseUserAgreedPayload(raw)
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context, tx pgx.Tx) error {
					return agreementSvc.Agree(ctx, tx, p)
				}, nil
			},
		},
		{
			Topic:   topics.DocusignEnvelopeCreated,
			Subject: subjects.DocusignEnvelope,
			Bind: func(raw json.RawMessage) (TxFunc, error) {
				p, err := events.ParseDocusignEnvelopeCreatedPayload(raw)
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context, tx pgx.Tx) error {
					return envelopeSvc.Create(ctx, tx, p)
				}, nil
			},
		},
		{
			Topic:   topics.DocusignEnvelopeUpdated,
			Subject: subjects.DocusignEnvelope,
			Bind: func(raw json.RawMessage) (TxFunc, error) {
				p, err := events.ParseDocusignEnvelopeUpdatedPayload(raw)
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context, tx pgx.Tx) error {
					return envelopeSvc.Update(ctx, tx, p)
				}, nil
			},
		},
	}
}
