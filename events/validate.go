package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidPayload marks structural contract violations. Events failing the
// contract are logged and acknowledged without ever entering a transaction.
var ErrInvalidPayload = errors.New("events: invalid payload")

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeEnvelope parses the raw broker message into an envelope and checks the
// envelope-level contract.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: decode envelope: %v", ErrInvalidPayload, err)
	}
	if err := validate.Struct(env); err != nil {
		return Envelope{}, fmt.Errorf("%w: envelope: %v", ErrInvalidPayload, err)
	}
	return env, nil
}

func decodePayload[T any](raw json.RawMessage) (T, error) {
	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("%w: decode: %v", ErrInvalidPayload, err)
	}
	if err := validate.Struct(payload); err != nil {
		return payload, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return payload, nil
}

// ParseTermsPayload validates terms created/updated payloads.
func ParseTermsPayload(raw json.RawMessage) (TermsPayload, error) {
	return decodePayload[TermsPayload](raw)
}

// ParseTermsDeletedPayload validates terms deleted payloads.
func ParseTermsDeletedPayload(raw json.RawMessage) (TermsDeletedPayload, error) {
	return decodePayload[TermsDeletedPayload](raw)
}

// ParseResourceTermsCreatedPayload validates resource terms created payloads.
func ParseResourceTermsCreatedPayload(raw json.RawMessage) (ResourceTermsCreatedPayload, error) {
	return decodePayload[ResourceTermsCreatedPayload](raw)
}

// ParseResourceTermsUpdatedPayload validates resource terms updated payloads.
func ParseResourceTermsUpdatedPayload(raw json.RawMessage) (ResourceTermsUpdatedPayload, error) {
	return decodePayload[ResourceTermsUpdatedPayload](raw)
}

// ParseResourceTermsDeletedPayload validates resource terms deleted payloads.
func ParseResourceTermsDeletedPayload(raw json.RawMessage) (ResourceTermsDeletedPayload, error) {
	return decodePayload[ResourceTermsDeletedPayload](raw)
}

// ParseUserAgreedPayload validates user agreed payloads.
func ParseUserAgreedPayload(raw json.RawMessage) (UserAgreedPayload, error) {
	return decodePayload[UserAgreedPayload](raw)
}

// ParseDocusignEnvelopeCreatedPayload validates envelope created payloads.
func ParseDocusignEnvelopeCreatedPayload(raw json.RawMessage) (DocusignEnvelopeCreatedPayload, error) {
	return decodePayload[DocusignEnvelopeCreatedPayload](raw)
}

// ParseDocusignEnvelopeUpdatedPayload validates envelope updated payloads.
func ParseDocusignEnvelopeUpdatedPayload(raw json.RawMessage) (DocusignEnvelopeUpdatedPayload, error) {
	return decodePayload[DocusignEnvelopeUpdatedPayload](raw)
}
