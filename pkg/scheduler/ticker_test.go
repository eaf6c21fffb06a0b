package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riorajhon/lotteryd/pkg/tasks"
)

// mockTracker implements scheduleTracker without Redis
type mockTracker struct {
	lastRuns map[string]time.Time
}

func newMockTracker() *mockTracker {
	return &mockTracker{lastRuns: make(map[string]time.Time)}
}

func (m *mockTracker) GetLastRun(_ context.Context, runID string) (time.Time, error) {
	return m.lastRuns[runID], nil
}

func (m *mockTracker) SetLastRun(_ context.Context, runID string, timestamp time.Time) error {
	m.lastRuns[runID] = timestamp
	return nil
}

func (m *mockTracker) Close() error { return nil }

// mockQueue records enqueued payloads
type mockQueue struct {
	payloads []tasks.TaskPayload
	err      error
}

func (m *mockQueue) Enqueue(payload tasks.TaskPayload, _ ...asynq.Option) error {
	if m.err != nil {
		return m.err
	}
	m.payloads = append(m.payloads, payload)
	return nil
}

func newTestTicker(t *testing.T, tracker scheduleTracker, queue enqueuer) *dailyTicker {
	t.Helper()

	schedule, err := parseSchedule("2 0 * * *")
	require.NoError(t, err)

	return newDailyTicker(testLogger(), schedule, tracker, queue)
}

func TestTickerFiresImmediatelyWhenNeverRun(t *testing.T) {
	tracker := newMockTracker()
	queue := &mockQueue{}
	ticker := newTestTicker(t, tracker, queue)

	now := time.Date(2024, 5, 9, 15, 30, 0, 0, time.UTC)
	require.NoError(t, ticker.check(context.Background(), now))

	require.Len(t, queue.payloads, 3)
	assert.Equal(t, "euromillones", queue.payloads[0].Lottery)
	assert.Equal(t, "la-primitiva", queue.payloads[1].Lottery)
	assert.Equal(t, "el-gordo", queue.payloads[2].Lottery)
	for _, payload := range queue.payloads {
		assert.Equal(t, tasks.TypeScrape, payload.Type)
		assert.Equal(t, tasks.TriggerSchedule, payload.Trigger)
	}

	assert.Equal(t, now, tracker.lastRuns[dailyRunID])
}

func TestTickerWaitsForNextCronSlot(t *testing.T) {
	tracker := newMockTracker()
	queue := &mockQueue{}
	ticker := newTestTicker(t, tracker, queue)
	ctx := context.Background()

	ran := time.Date(2024, 5, 9, 0, 2, 0, 0, time.UTC)
	require.NoError(t, tracker.SetLastRun(ctx, dailyRunID, ran))

	// Same day, before the next 00:02: nothing fires
	require.NoError(t, ticker.check(ctx, ran.Add(6*time.Hour)))
	assert.Empty(t, queue.payloads)

	// Past the next day's slot: fires once
	next := time.Date(2024, 5, 10, 0, 2, 30, 0, time.UTC)
	require.NoError(t, ticker.check(ctx, next))
	assert.Len(t, queue.payloads, 3)

	// Immediately after, it is no longer due
	require.NoError(t, ticker.check(ctx, next.Add(time.Minute)))
	assert.Len(t, queue.payloads, 3)
}

func TestTickerToleratesAlreadyQueuedTasks(t *testing.T) {
	tracker := newMockTracker()
	queue := &mockQueue{err: asynq.ErrTaskIDConflict}
	ticker := newTestTicker(t, tracker, queue)

	now := time.Date(2024, 5, 9, 0, 2, 0, 0, time.UTC)
	require.NoError(t, ticker.check(context.Background(), now))

	// The run still counts as triggered
	assert.Equal(t, now, tracker.lastRuns[dailyRunID])
}
