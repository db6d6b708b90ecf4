// Package consumer drives event intake from the broker. Each topic maps to
// one stream and one worker loop; within a worker, events are strictly
// sequential and every event is acknowledged after its handler returns,
// regardless of outcome. This is the at-most-once contract: a failed event is
// reported and lost, never retried.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// payloadField is the stream entry field carrying the envelope JSON.
const payloadField = "payload"

// StreamClient is the slice of the redis client the consumer group needs.
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Dispatcher hands one raw message to the processing pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, topic string, raw []byte) error
}

// Group consumes the configured topics as one consumer group.
type Group struct {
	client     StreamClient
	dispatcher Dispatcher
	group      string
	name       string
	topics     []string
	block      time.Duration
	log        *zap.Logger
}

func NewGroup(client StreamClient, dispatcher Dispatcher, group string, topics []string, block time.Duration, log *zap.Logger) *Group {
	if block <= 0 {
		block = 5 * time.Second
	}
	return &Group{
		client:     client,
		dispatcher: dispatcher,
		group:      group,
		name:       group + "-" + uuid.NewString(),
		topics:     topics,
		block:      block,
		log:        log,
	}
}

// Run creates the consumer group on every stream and blocks running one
// worker loop per topic until the context is cancelled.
func (g *Group) Run(ctx context.Context) error {
	for _, topic := range g.topics {
		if err := g.ensureGroup(ctx, topic); err != nil {
			return err
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, topic := range g.topics {
		eg.Go(func() error {
			return g.consume(ctx, topic)
		})
	}
	return eg.Wait()
}

// Healthy reports whether the broker connection is alive.
func (g *Group) Healthy(ctx context.Context) bool {
	return g.client.Ping(ctx).Err() == nil
}

func (g *Group) ensureGroup(ctx context.Context, topic string) error {
	err := g.client.XGroupCreateMkStream(ctx, topic, g.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("consumer: create group on %s: %w", topic, err)
	}
	return nil
}

func (g *Group) consume(ctx context.Context, topic string) error {
	g.log.Info("consumer started", zap.String("topic", topic), zap.String("group", g.group))
	for {
		if err := ctx.Err(); err != nil {
			g.log.Info("consumer stopped", zap.String("topic", topic))
			return err
		}

		streams, err := g.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    g.group,
			Consumer: g.name,
			Streams:  []string{topic, ">"},
			Count:    1,
			Block:    g.block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			g.log.Error("read from broker failed", zap.String("topic", topic), zap.Error(err))
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				g.handle(ctx, topic, message)
			}
		}
	}
}

// handle runs one message through the dispatcher and acknowledges it whether
// or not processing succeeded.
func (g *Group) handle(ctx context.Context, topic string, message redis.XMessage) {
	g.log.Info("handling event message",
		zap.String("topic", topic), zap.String("messageId", message.ID))

	raw, ok := message.Values[payloadField].(string)
	if !ok {
		g.log.Error("message carries no payload field",
			zap.String("topic", topic), zap.String("messageId", message.ID))
	} else if err := g.dispatcher.Dispatch(ctx, topic, []byte(raw)); err != nil {
		g.log.Error("event lost after processing failure",
			zap.String("topic", topic), zap.String("messageId", message.ID), zap.Error(err))
	}

	if err := g.client.XAck(ctx, topic, g.group, message.ID).Err(); err != nil {
		g.log.Error("acknowledge failed",
			zap.String("topic", topic), zap.String("messageId", message.ID), zap.Error(err))
	}
}
