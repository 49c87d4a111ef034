// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generation

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	queue := NewQueue(client, "test:generation", "workers", slog.New(slog.NewTextHandler(io.Discard, nil)))
	queue.block = 50 * time.Millisecond
	return queue, client
}

// consume runs Consume until the first delivery, then stops it.
func consume(t *testing.T, queue *Queue, consumer string) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan string, 1)
	done := make(chan error, 1)

	go func() {
		done <- queue.Consume(ctx, consumer, func(_ context.Context, bookID string) {
			select {
			case received <- bookID:
			default:
			}
		})
	}()

	var bookID string
	select {
	case bookID = <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("no delivery")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
	return bookID
}

/*
TestQueue_DeliversAndAcks hands published book ids to the consumer and
acknowledges them.
*/
func TestQueue_DeliversAndAcks(t *testing.T) {
	queue, client := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, queue.EnsureGroup(ctx))
	require.NoError(t, queue.EnsureGroup(ctx), "creating the group twice is not an error")
	require.NoError(t, queue.Publish(ctx, bookID))

	assert.Equal(t, bookID, consume(t, queue, "worker-1"))

	pending, err := client.XPending(ctx, queue.stream, queue.group).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

/*
TestQueue_ReplaysUnacknowledged redelivers what a consumer read before a crash.
*/
func TestQueue_ReplaysUnacknowledged(t *testing.T) {
	queue, client := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, queue.EnsureGroup(ctx))
	require.NoError(t, queue.Publish(ctx, bookID))

	// Read without acknowledging, as a worker that died mid-message would.
	_, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    queue.group,
		Consumer: "worker-1",
		Streams:  []string{queue.stream, ">"},
		Count:    1,
		Block:    -1,
	}).Result()
	require.NoError(t, err)

	assert.Equal(t, bookID, consume(t, queue, "worker-1"))

	pending, err := client.XPending(ctx, queue.stream, queue.group).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}
