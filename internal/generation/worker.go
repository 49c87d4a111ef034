// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generation

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Consumer delivers published book ids.
type Consumer interface {
	Consume(context context.Context, consumer string, handle func(context.Context, string)) error
}

// Worker drives a [Processor] from stream wake-ups and a periodic poll.
type Worker struct {
	consumer     Consumer
	processor    *Processor
	name         string
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewWorker creates a worker identified as name within the consumer group.
func NewWorker(consumer Consumer, processor *Processor, name string, pollInterval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		consumer:     consumer,
		processor:    processor,
		name:         name,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

/*
Run blocks until ctx is cancelled.

Description: The stream loop processes one request per wake-up. The poll loop
drains every pending request on each tick, which covers wake-ups published
while no worker was listening. Both may race for the same row; the claim
query makes the loser see nothing.
*/
func (worker *Worker) Run(context context.Context) error {
	group, groupContext := errgroup.WithContext(context)

	group.Go(func() error {
		return worker.consumer.Consume(groupContext, worker.name, worker.handle)
	})

	group.Go(func() error {
		ticker := time.NewTicker(worker.pollInterval)
		defer ticker.Stop()

		for {
			worker.Drain(groupContext)

			select {
			case <-groupContext.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	worker.logger.InfoContext(context, "generation_worker_started",
		slog.String("consumer", worker.name),
		slog.Duration("poll_interval", worker.pollInterval),
	)
	return group.Wait()
}

func (worker *Worker) handle(context context.Context, bookID string) {
	if _, err := worker.processor.ProcessBook(context, bookID); err != nil {
		worker.logger.ErrorContext(context, "generation_claim_failed",
			slog.String("book_id", bookID), slog.Any("error", err))
	}
}

// Drain processes pending requests until none is left or ctx ends. It
// returns how many requests were processed.
func (worker *Worker) Drain(context context.Context) int {
	processed := 0
	for context.Err() == nil {
		request, err := worker.processor.ProcessNext(context)
		if err != nil {
			worker.logger.ErrorContext(context, "generation_claim_failed", slog.Any("error", err))
			return processed
		}
		if request == nil {
			return processed
		}
		processed++
	}
	return processed
}
