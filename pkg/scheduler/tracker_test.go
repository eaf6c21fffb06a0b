package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riorajhon/lotteryd/internal/testutil"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestScheduleTracker(t *testing.T) {
	_, client := testutil.RedisClient(t)
	tracker := newScheduleTracker(testLogger(), client)
	ctx := context.Background()

	t.Run("GetLastRun returns zero time for unknown run", func(t *testing.T) {
		lastRun, err := tracker.GetLastRun(ctx, "never-ran")
		require.NoError(t, err)
		assert.True(t, lastRun.IsZero())
	})

	t.Run("SetLastRun then GetLastRun round trips", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, tracker.SetLastRun(ctx, dailyRunID, now))

		lastRun, err := tracker.GetLastRun(ctx, dailyRunID)
		require.NoError(t, err)
		assert.True(t, lastRun.Equal(now))
	})

	t.Run("SetLastRun overwrites", func(t *testing.T) {
		first := time.Date(2024, 5, 1, 0, 2, 0, 0, time.UTC)
		second := time.Date(2024, 5, 2, 0, 2, 0, 0, time.UTC)

		require.NoError(t, tracker.SetLastRun(ctx, dailyRunID, first))
		require.NoError(t, tracker.SetLastRun(ctx, dailyRunID, second))

		lastRun, err := tracker.GetLastRun(ctx, dailyRunID)
		require.NoError(t, err)
		assert.True(t, lastRun.Equal(second))
	})
}
