package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riorajhon/lotteryd/internal/testutil"
)

func TestLeaderElection(t *testing.T) {
	mr := testutil.Redis(t)

	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)

	redisOpt := testutil.RedisOptions(mr)

	t.Run("single instance becomes leader", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		mr.FlushAll()

		elector := NewLeaderElector(log, redisOpt)
		require.NoError(t, elector.Start(ctx))
		defer elector.Stop()

		time.Sleep(renewInterval + 500*time.Millisecond)

		assert.True(t, elector.IsLeader(), "Single instance should become leader")
	})

	t.Run("multiple instances elect one leader", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		mr.FlushAll()

		elector1 := NewLeaderElector(log, redisOpt)
		elector2 := NewLeaderElector(log, redisOpt)

		require.NoError(t, elector1.Start(ctx))
		defer elector1.Stop()

		require.NoError(t, elector2.Start(ctx))
		defer elector2.Stop()

		time.Sleep(renewInterval + 500*time.Millisecond)

		leaders := 0
		if elector1.IsLeader() {
			leaders++
		}
		if elector2.IsLeader() {
			leaders++
		}

		assert.Equal(t, 1, leaders, "Exactly one instance should be leader")
	})

	t.Run("stopping the leader releases the lock", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		mr.FlushAll()

		elector := NewLeaderElector(log, redisOpt)
		require.NoError(t, elector.Start(ctx))

		time.Sleep(renewInterval + 500*time.Millisecond)
		require.True(t, elector.IsLeader())

		require.NoError(t, elector.Stop())

		exists := mr.Exists(leaderKey)
		assert.False(t, exists, "Leader lock should be released on stop")
	})
}
