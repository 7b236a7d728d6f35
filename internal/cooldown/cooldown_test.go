package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClaraBenejam/PAWSture/internal/cache"
	"github.com/ClaraBenejam/PAWSture/internal/config"
)

var testDurations = Durations{PostureL3: 30 * time.Second, PostureL2: 30 * time.Second, Emotion: 30 * time.Second}

func TestTable_InProcess_FireThenActive(t *testing.T) {
	table := New(testDurations, nil)
	ctx := context.Background()
	key := Key{SubscriberID: "100", TriggeredUserID: "7", Channel: ChannelPostureL3}

	now := time.Now()
	active, err := table.IsActive(ctx, key, now)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, table.Fire(ctx, key, now))

	active, err = table.IsActive(ctx, key, now.Add(10*time.Second))
	require.NoError(t, err)
	assert.True(t, active)

	active, err = table.IsActive(ctx, key, now.Add(31*time.Second))
	require.NoError(t, err)
	assert.False(t, active)
}

func TestTable_Redis_FireThenActive(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	redisCache, err := cache.NewRedisCache(config.RedisConfig{URL: "redis://" + s.Addr(), PoolSize: 10})
	require.NoError(t, err)
	defer redisCache.Close()

	table := New(testDurations, redisCache)
	ctx := context.Background()
	key := Key{SubscriberID: "200", TriggeredUserID: "3", Channel: ChannelEmotion}

	now := time.Now()
	require.NoError(t, table.Fire(ctx, key, now))

	active, err := table.IsActive(ctx, key, now.Add(5*time.Second))
	require.NoError(t, err)
	assert.True(t, active)
}

func TestTable_DifferentSubscribersIndependent(t *testing.T) {
	table := New(testDurations, nil)
	ctx := context.Background()
	now := time.Now()

	a := Key{SubscriberID: "1", TriggeredUserID: "5", Channel: ChannelPostureL3}
	b := Key{SubscriberID: "2", TriggeredUserID: "5", Channel: ChannelPostureL3}

	require.NoError(t, table.Fire(ctx, a, now))

	activeA, _ := table.IsActive(ctx, a, now)
	activeB, _ := table.IsActive(ctx, b, now)
	assert.True(t, activeA)
	assert.False(t, activeB)
}

func TestResolvePostureChannel(t *testing.T) {
	ch, ok := ResolvePostureChannel(true, true)
	assert.True(t, ok)
	assert.Equal(t, ChannelPostureL3, ch)

	ch, ok = ResolvePostureChannel(false, true)
	assert.True(t, ok)
	assert.Equal(t, ChannelPostureL2, ch)

	_, ok = ResolvePostureChannel(false, false)
	assert.False(t, ok)
}
