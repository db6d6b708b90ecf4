package events

import (
	"encoding/json"
	"time"
)

// MimeTypeJSON is the only payload encoding the processor accepts or emits.
const MimeTypeJSON = "application/json"

// Default topic names. Every one of them can be overridden through configuration;
// these match what the upstream notification producers publish on.
const (
	TopicTermsCreated = "terms.notification.created"
	TopicTermsUpdated = "terms.notification.updated"
	TopicTermsDeleted = "terms.notification.deleted"

	TopicResourceTermsCreated = "terms.notification.resource.created"
	TopicResourceTermsUpdated = "terms.notification.resource.updated"
	TopicResourceTermsDeleted = "terms.notification.resource.deleted"

	TopicUserAgreed = "terms.notification.user.agreed"

	TopicDocusignEnvelopeCreated = "terms.notification.docusign.envelope.created"
	TopicDocusignEnvelopeUpdated = "terms.notification.docusign.envelope.updated"

	TopicEmailSupport = "terms.legacy.processor.action.email.support"
)

// Envelope is the outer wrapper every inbound and outbound message carries.
// The declared Topic must equal the stream the message arrived on; the router
// discards mismatches as protocol violations.
type Envelope struct {
	Topic      string          `json:"topic" validate:"required"`
	Originator string          `json:"originator" validate:"required"`
	Timestamp  time.Time       `json:"timestamp" validate:"required"`
	MimeType   string          `json:"mime-type" validate:"required"`
	Payload    json.RawMessage `json:"payload" validate:"required"`
}

// NewEnvelope wraps an already-marshaled payload in the standard envelope.
func NewEnvelope(topic, originator string, payload json.RawMessage) Envelope {
	return Envelope{
		Topic:      topic,
		Originator: originator,
		Timestamp:  time.Now().UTC(),
		MimeType:   MimeTypeJSON,
		Payload:    payload,
	}
}
