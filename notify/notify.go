// Package notify publishes structured failure reports to the support channel.
// Publishing is best-effort: a sink failure is logged and never escalated.
package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"termsync/events"
)

// StreamAdder is the slice of the redis client the publisher needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// TokenSource mints the machine token attached to outbound publishes.
type TokenSource interface {
	Token() (string, error)
}

// Config carries the static addressing of every failure report.
type Config struct {
	SupportTopic string
	Originator   string
	ToAddress    string
	FromAddress  string
}

// Publisher emits failure-report envelopes onto the support stream.
type Publisher struct {
	client StreamAdder
	tokens TokenSource
	cfg    Config
	log    *zap.Logger
}

func NewPublisher(client StreamAdder, tokens TokenSource, cfg Config, log *zap.Logger) *Publisher {
	return &Publisher{
		client: client,
		tokens: tokens,
		cfg:    cfg,
		log:    log,
	}
}

// ReportFailure publishes one report carrying the original payload fields
// merged with the failure message. Errors here are logged only.
func (p *Publisher) ReportFailure(ctx context.Context, subject string, payload json.RawMessage, cause error) {
	report := map[string]any{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &report); err != nil {
			p.log.Warn("failure report payload not mergeable", zap.Error(err))
			report = map[string]any{}
		}
	}
	report["subject"] = subject
	report["toAddress"] = p.cfg.ToAddress
	report["fromAddress"] = p.cfg.FromAddress
	report["message"] = cause.Error()

	body, err := json.Marshal(report)
	if err != nil {
		p.log.Error("marshal failure report", zap.Error(err))
		return
	}

	env := events.NewEnvelope(p.cfg.SupportTopic, p.cfg.Originator, body)
	envJSON, err := json.Marshal(env)
	if err != nil {
		p.log.Error("marshal failure report envelope", zap.Error(err))
		return
	}

	values := map[string]any{
		"id":      uuid.NewString(),
		"payload": string(envJSON),
	}
	if p.tokens != nil {
		token, err := p.tokens.Token()
		if err != nil {
			p.log.Error("mint support publish token", zap.Error(err))
		} else {
			values["token"] = token
		}
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.cfg.SupportTopic,
		Values: values,
	}).Err(); err != nil {
		p.log.Error("publish failure report",
			zap.String("topic", p.cfg.SupportTopic), zap.Error(err))
		return
	}

	p.log.Info("failure report published",
		zap.String("topic", p.cfg.SupportTopic), zap.String("subject", subject))
}
