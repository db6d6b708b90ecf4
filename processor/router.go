package processor

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"termsync/events"
)

// Route binds a topic to its handler. Bind decodes and validates the raw
// payload before any transaction opens, returning the transaction body to run.
type Route struct {
	Topic   string
	Subject string
	Bind    func(payload json.RawMessage) (TxFunc, error)
}

// Router maps declared event types to registered routes. The topic registry
// is closed at construction; a structurally valid event on an unregistered
// topic is acknowledged without action for forward compatibility.
type Router struct {
	routes map[string]Route
	coord  *Coordinator
	log    *zap.Logger
}

func NewRouter(coord *Coordinator, log *zap.Logger, routes ...Route) *Router {
	byTopic := make(map[string]Route, len(routes))
	for _, route := range routes {
		byTopic[route.Topic] = route
	}
	return &Router{
		routes: byTopic,
		coord:  coord,
		log:    log,
	}
}

// Topics lists every registered topic, in no particular order.
func (r *Router) Topics() []string {
	topics := make([]string, 0, len(r.routes))
	for topic := range r.routes {
		topics = append(topics, topic)
	}
	return topics
}

// Dispatch processes one raw broker message that arrived on streamTopic.
// Malformed envelopes, topic mismatches, unknown topics and structural
// validation failures are all terminal here: logged and dropped without a
// transaction or a notification. The returned error reports handler failures
// for logging only; the caller acknowledges in every case.
func (r *Router) Dispatch(ctx context.Context, streamTopic string, raw []byte) error {
	env, err := events.DecodeEnvelope(raw)
	if err != nil {
		r.log.Error("discarding malformed event envelope",
			zap.String("topic", streamTopic), zap.Error(err))
		return nil
	}

	if env.Topic != streamTopic {
		r.log.Error("declared topic does not match arrival topic",
			zap.String("declared", env.Topic), zap.String("arrived", streamTopic))
		return nil
	}

	route, ok := r.routes[env.Topic]
	if !ok {
		r.log.Debug("ignoring event on unregistered topic", zap.String("topic", env.Topic))
		return nil
	}

	fn, err := route.Bind(env.Payload)
	if err != nil {
		if errors.Is(err, events.ErrInvalidPayload) {
			r.log.Error("discarding structurally invalid event",
				zap.String("topic", env.Topic), zap.Error(err))
			return nil
		}
		r.log.Error("failed to bind event payload", zap.String("topic", env.Topic), zap.Error(err))
		return nil
	}

	if err := r.coord.Run(ctx, route.Subject, env.Payload, fn); err != nil {
		r.log.Error("event processing failed", zap.String("topic", env.Topic), zap.Error(err))
		return err
	}

	r.log.Debug("event processed", zap.String("topic", env.Topic))
	return nil
}
