package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"termsync/events"
)

func validEnvelope(topic string, payload string) []byte {
	return []byte(fmt.Sprintf(`{
		"topic": %q,
		"originator": "legacy-terms-api",
		"timestamp": "2024-05-01T12:00:00Z",
		"mime-type": "application/json",
		"payload": %s
	}`, topic, payload))
}

func newTestRouter(pool *fakePool, notifier *fakeNotifier, routes ...Route) *Router {
	coord := NewCoordinator(pool, notifier, zap.NewNop())
	return NewRouter(coord, zap.NewNop(), routes...)
}

func passthroughRoute(topic string, ran *bool) Route {
	return Route{
		Topic:   topic,
		Subject: "subject",
		Bind: func(payload json.RawMessage) (TxFunc, error) {
			return func(ctx context.Context, tx pgx.Tx) error {
				*ran = true
				return nil
			}, nil
		},
	}
}

func TestDispatch_RunsRegisteredHandler(t *testing.T) {
	pool := &fakePool{}
	notifier := &fakeNotifier{}
	var ran bool
	router := newTestRouter(pool, notifier, passthroughRoute("terms.notification.created", &ran))

	raw := validEnvelope("terms.notification.created", `{"id": 5001}`)
	if err := router.Dispatch(context.Background(), "terms.notification.created", raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("handler did not run")
	}
	if !pool.tx.committed {
		t.Error("expected commit")
	}
	if len(notifier.subjects) != 0 {
		t.Errorf("no notification expected, got %v", notifier.subjects)
	}
}

func TestDispatch_MalformedEnvelopeDropped(t *testing.T) {
	pool := &fakePool{}
	notifier := &fakeNotifier{}
	var ran bool
	router := newTestRouter(pool, notifier, passthroughRoute("terms.notification.created", &ran))

	err := router.Dispatch(context.Background(), "terms.notification.created", []byte(`{broken`))
	if err != nil {
		t.Fatalf("malformed events must be dropped without error, got %v", err)
	}
	if ran || pool.tx != nil {
		t.Error("no transaction expected for malformed envelope")
	}
	if len(notifier.subjects) != 0 {
		t.Errorf("no notification expected, got %v", notifier.subjects)
	}
}

func TestDispatch_TopicMismatchDropped(t *testing.T) {
	pool := &fakePool{}
	notifier := &fakeNotifier{}
	var ran bool
	router := newTestRouter(pool, notifier, passthroughRoute("terms.notification.created", &ran))

	raw := validEnvelope("terms.notification.updated", `{"id": 5001}`)
	err := router.Dispatch(context.Background(), "terms.notification.created", raw)
	if err != nil {
		t.Fatalf("mismatched events must be dropped without error, got %v", err)
	}
	if ran || pool.tx != nil {
		t.Error("no transaction expected for topic mismatch")
	}
}

func TestDispatch_UnknownTopicIgnored(t *testing.T) {
	pool := &fakePool{}
	notifier := &fakeNotifier{}
	var ran bool
	router := newTestRouter(pool, notifier, passthroughRoute("terms.notification.created", &ran))

	raw := validEnvelope("terms.notification.other", `{"id": 5001}`)
	err := router.Dispatch(context.Background(), "terms.notification.other", raw)
	if err != nil {
		t.Fatalf("unknown topics must be ignored without error, got %v", err)
	}
	if ran || pool.tx != nil {
		t.Error("no transaction expected for unknown topic")
	}
	if len(notifier.subjects) != 0 {
		t.Errorf("no notification expected, got %v", notifier.subjects)
	}
}

func TestDispatch_InvalidPayloadDroppedBeforeTransaction(t *testing.T) {
	pool := &fakePool{}
	notifier := &fakeNotifier{}
	route := Route{
		Topic:   "terms.notification.created",
		Subject: "subject",
		Bind: func(payload json.RawMessage) (TxFunc, error) {
			return nil, fmt.Errorf("%w: title missing", events.ErrInvalidPayload)
		},
	}
	router := newTestRouter(pool, notifier, route)

	raw := validEnvelope("terms.notification.created", `{"id": 5001}`)
	err := router.Dispatch(context.Background(), "terms.notification.created", raw)
	if err != nil {
		t.Fatalf("invalid payloads must be dropped without error, got %v", err)
	}
	if pool.tx != nil {
		t.Error("no transaction expected for invalid payload")
	}
	if len(notifier.subjects) != 0 {
		t.Errorf("no notification expected, got %v", notifier.subjects)
	}
}

func TestDispatch_HandlerFailureReturnsErrorAndNotifies(t *testing.T) {
	pool := &fakePool{}
	notifier := &fakeNotifier{}
	handlerErr := errors.New("dependency terms not agreed")
	route := Route{
		Topic:   "terms.notification.user.agreed",
		Subject: "User Terms of Use Failure",
		Bind: func(payload json.RawMessage) (TxFunc, error) {
			return func(ctx context.Context, tx pgx.Tx) error {
				return handlerErr
			}, nil
		},
	}
	router := newTestRouter(pool, notifier, route)

	raw := validEnvelope("terms.notification.user.agreed", `{"userId": 42, "termsOfUseId": 5001}`)
	err := router.Dispatch(context.Background(), "terms.notification.user.agreed", raw)
	if !errors.Is(err, handlerErr) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if !pool.tx.rolled || pool.tx.committed {
		t.Error("expected rollback without commit")
	}
	if len(notifier.subjects) != 1 || notifier.subjects[0] != "User Terms of Use Failure" {
		t.Errorf("expected one notification with route subject, got %v", notifier.subjects)
	}
}

func TestTopics_ListsRegisteredTopics(t *testing.T) {
	var ran bool
	router := newTestRouter(&fakePool{}, &fakeNotifier{},
		passthroughRoute("terms.notification.created", &ran),
		passthroughRoute("terms.notification.deleted", &ran))

	topics := router.Topics()
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %v", topics)
	}
	seen := map[string]bool{}
	for _, topic := range topics {
		seen[topic] = true
	}
	if !seen["terms.notification.created"] || !seen["terms.notification.deleted"] {
		t.Errorf("unexpected topic set %v", topics)
	}
}
