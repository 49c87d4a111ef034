// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generation

import (
	stdctx "context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher announces that a book has pending generation work.
type Publisher interface {
	Publish(context stdctx.Context, bookID string) error
}

const (
	fieldBookID    = "book_id"
	streamMaxLen   = 10000
	readBlock      = 5 * time.Second
	readCount      = 10
	consumeBackoff = time.Second
)

// Queue is a redis stream with one consumer group.
type Queue struct {
	client *redis.Client
	stream string
	group  string
	block  time.Duration
	logger *slog.Logger
}

// NewQueue binds a stream and consumer group. The group is created lazily.
func NewQueue(client *redis.Client, stream, group string, logger *slog.Logger) *Queue {
	return &Queue{client: client, stream: stream, group: group, block: readBlock, logger: logger}
}

// Publish appends a wake-up for bookID, trimming the stream approximately.
func (queue *Queue) Publish(context stdctx.Context, bookID string) error {
	err := queue.client.XAdd(context, &redis.XAddArgs{
		Stream: queue.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{fieldBookID: bookID},
	}).Err()
	if err != nil {
		return fmt.Errorf("generation: publish to %s: %w", queue.stream, err)
	}
	return nil
}

// EnsureGroup creates the consumer group (and the stream) if missing.
func (queue *Queue) EnsureGroup(context stdctx.Context) error {
	err := queue.client.XGroupCreateMkStream(context, queue.stream, queue.group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("generation: create group %s: %w", queue.group, err)
	}
	return nil
}

/*
Consume delivers book ids to handle until ctx is cancelled.

Description: Messages this consumer read but never acknowledged (a crash
mid-processing) are replayed first. Every message is acknowledged after
handle returns, whatever the outcome: the request row records failures and
nothing is retried from the stream.
*/
func (queue *Queue) Consume(context stdctx.Context, consumer string, handle func(stdctx.Context, string)) error {
	if err := queue.EnsureGroup(context); err != nil {
		return err
	}

	// ── 1. Replay our own pending entries ─────────────────────────────────
	if err := queue.read(context, consumer, "0", 0, handle); err != nil && context.Err() == nil {
		queue.logger.WarnContext(context, "generation_queue_replay_failed", slog.Any("error", err))
	}

	// ── 2. Follow new entries ─────────────────────────────────────────────
	for context.Err() == nil {
		err := queue.read(context, consumer, ">", queue.block, handle)
		if err == nil || errors.Is(err, redis.Nil) {
			continue
		}
		if context.Err() != nil {
			break
		}

		queue.logger.WarnContext(context, "generation_queue_read_failed", slog.Any("error", err))
		select {
		case <-context.Done():
		case <-time.After(consumeBackoff):
		}
	}
	return nil
}

func (queue *Queue) read(context stdctx.Context, consumer, start string, block time.Duration, handle func(stdctx.Context, string)) error {
	arguments := &redis.XReadGroupArgs{
		Group:    queue.group,
		Consumer: consumer,
		Streams:  []string{queue.stream, start},
		Count:    readCount,
		Block:    block,
	}
	if block == 0 {
		// A zero Block would wait forever; replaying history must not block.
		arguments.Block = -1
	}

	streams, err := queue.client.XReadGroup(context, arguments).Result()
	if err != nil {
		return err
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			if bookID, _ := message.Values[fieldBookID].(string); bookID != "" {
				handle(context, bookID)
			}
			// Acknowledge even when shutdown cancelled context mid-message.
			ack := queue.client.XAck(stdctx.WithoutCancel(context), queue.stream, queue.group, message.ID)
			if err := ack.Err(); err != nil {
				queue.logger.WarnContext(context, "generation_queue_ack_failed",
					slog.String("message_id", message.ID), slog.Any("error", err))
			}
		}
	}
	return nil
}
