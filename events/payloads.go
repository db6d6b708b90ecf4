package events

import (
	"strconv"
	"time"
)

// Legacy agreeability type identifiers for terms of use records.
const (
	AgreeabilityElectronicallyAgreeable int64 = 3
	AgreeabilityDocusignable            int64 = 4
)

// TermsPayload is carried by terms created and terms updated events.
// The docusign template id is mandatory only for Docusignable terms.
type TermsPayload struct {
	ID                 int64      `json:"id" validate:"required,gt=0"`
	Text               string     `json:"text"`
	TypeID             int64      `json:"typeId" validate:"required,gt=0"`
	Created            *time.Time `json:"created"`
	Updated            *time.Time `json:"updated"`
	Title              string     `json:"title" validate:"required"`
	URL                string     `json:"url"`
	AgreeabilityTypeID int64      `json:"agreeabilityTypeId" validate:"required,gt=0"`
	DocusignTemplateID string     `json:"docusignTemplateId" validate:"required_if=AgreeabilityTypeID 4"`
}

// TermsDeletedPayload is carried by terms deleted events.
type TermsDeletedPayload struct {
	TermsOfUseID int64 `json:"termsOfUseId" validate:"required,gt=0"`
}

// ResourceTermsCreatedPayload is carried by resource terms created events. The
// referenceId is the project id encoded as a digit string by the producer.
type ResourceTermsCreatedPayload struct {
	Reference     string    `json:"reference"`
	ReferenceID   string    `json:"referenceId" validate:"required,number"`
	Tag           string    `json:"tag" validate:"required"`
	TermsOfUseIDs []int64   `json:"termsOfUseIds" validate:"required,min=1,unique,dive,gt=0"`
	Created       time.Time `json:"created" validate:"required"`
}

// ResourceTermsUpdatedPayload is carried by resource terms updated events.
type ResourceTermsUpdatedPayload struct {
	Reference     string    `json:"reference"`
	ReferenceID   string    `json:"referenceId" validate:"required,number"`
	Tag           string    `json:"tag" validate:"required"`
	TermsOfUseIDs []int64   `json:"termsOfUseIds" validate:"required,min=1,unique,dive,gt=0"`
	Created       time.Time `json:"created" validate:"required"`
	Updated       time.Time `json:"updated" validate:"required"`
}

// ResourceTermsDeletedPayload is carried by resource terms deleted events.
type ResourceTermsDeletedPayload struct {
	Reference     string  `json:"reference"`
	ReferenceID   string  `json:"referenceId" validate:"required,number"`
	Tag           string  `json:"tag" validate:"required"`
	TermsOfUseIDs []int64 `json:"termsOfUseIds" validate:"required,min=1,unique,dive,gt=0"`
}

// UserAgreedPayload is carried by user agreed events.
type UserAgreedPayload struct {
	UserID       int64      `json:"userId" validate:"required,gt=0"`
	TermsOfUseID int64      `json:"termsOfUseId" validate:"required,gt=0"`
	Created      *time.Time `json:"created"`
}

// DocusignEnvelopeCreatedPayload is carried by docusign envelope created events.
type DocusignEnvelopeCreatedPayload struct {
	ID                 string `json:"id" validate:"required"`
	DocusignTemplateID string `json:"docusignTemplateId" validate:"required"`
	UserID             int64  `json:"userId" validate:"required,gt=0"`
	IsCompleted        int    `json:"isCompleted"`
}

// DocusignEnvelopeUpdatedPayload is carried by docusign envelope updated
// events. Only a status of exactly "Completed" mutates the store; every other
// status is acknowledged without action.
type DocusignEnvelopeUpdatedPayload struct {
	EnvelopeID string `json:"envelopeId" validate:"required"`
	Status     string `json:"status" validate:"required"`
}

// EnvelopeStatusCompleted is the only envelope status that flips is_completed.
const EnvelopeStatusCompleted = "Completed"

// ProjectID decodes the digit-string reference id; validation guarantees the
// parse succeeds for payloads that passed the schema check.
func ProjectID(referenceID string) (int64, error) {
	return strconv.ParseInt(referenceID, 10, 64)
}
