// Package cooldown implements the per-(subscriber, triggered_user, channel)
// last-fire table (spec §4.G). State lives in Redis, keyed like the teacher's
// trigger state (`cooldown:<subscriber>:<user>:<channel>`), so a future
// multi-replica dispatcher shares state; an in-process map is the fallback when
// no cache is configured, mirroring the teacher's own degrade-gracefully idiom.
package cooldown

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ClaraBenejam/PAWSture/internal/cache"
)

// Channel is one of the three cooldown streams.
type Channel string

const (
	ChannelPostureL3 Channel = "posture_l3"
	ChannelPostureL2 Channel = "posture_l2"
	ChannelEmotion   Channel = "emotion"
)

// Key identifies one cooldown slot.
type Key struct {
	SubscriberID    string
	TriggeredUserID string
	Channel         Channel
}

func (k Key) redisKey() string {
	return fmt.Sprintf("cooldown:%s:%s:%s", k.SubscriberID, k.TriggeredUserID, k.Channel)
}

// Durations configures the per-channel cooldown window.
type Durations struct {
	PostureL3 time.Duration
	PostureL2 time.Duration
	Emotion   time.Duration
}

func (d Durations) forChannel(c Channel) time.Duration {
	switch c {
	case ChannelPostureL3:
		return d.PostureL3
	case ChannelPostureL2:
		return d.PostureL2
	default:
		return d.Emotion
	}
}

// Table tracks last-fire timestamps. It is safe for concurrent use: the
// in-process fallback map is guarded by a mutex, and Redis access is already
// serialised per key by the backing store's own atomicity.
type Table struct {
	durations Durations
	cache     *cache.RedisCache

	mu   sync.Mutex
	local map[string]time.Time
}

// New builds a Table. cache may be nil, in which case the table runs entirely
// in-process (suitable for a single dispatcher instance or tests).
func New(durations Durations, redisCache *cache.RedisCache) *Table {
	return &Table{
		durations: durations,
		cache:     redisCache,
		local:     make(map[string]time.Time),
	}
}

// IsActive reports whether key is currently within its cooldown window as of now.
func (t *Table) IsActive(ctx context.Context, key Key, now time.Time) (bool, error) {
	last, ok, err := t.lastFire(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return now.Sub(last) < t.durations.forChannel(key.Channel), nil
}

// Fire records now as the last-fire time for key.
func (t *Table) Fire(ctx context.Context, key Key, now time.Time) error {
	if t.cache != nil {
		data, err := json.Marshal(now)
		if err != nil {
			return fmt.Errorf("marshal cooldown timestamp: %w", err)
		}
		// No TTL: the cooldown window is checked by comparing timestamps, not by
		// key expiry, so a stale key is harmless and cheaper to keep than evict.
		if err := t.cache.Set(ctx, key.redisKey(), string(data), 0); err == nil {
			return nil
		}
		// Redis unreachable: fall through to the in-process map rather than
		// failing the tick.
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.local[key.redisKey()] = now
	return nil
}

func (t *Table) lastFire(ctx context.Context, key Key) (time.Time, bool, error) {
	if t.cache != nil {
		raw, err := t.cache.Get(ctx, key.redisKey())
		if err == nil {
			var ts time.Time
			if uerr := json.Unmarshal([]byte(raw), &ts); uerr != nil {
				return time.Time{}, false, fmt.Errorf("unmarshal cooldown timestamp: %w", uerr)
			}
			return ts, true, nil
		}
		// Redis miss or unreachable: check the in-process fallback below before
		// concluding there's no record.
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	ts, ok := t.local[key.redisKey()]
	return ts, ok, nil
}

// ResolvePostureChannel applies the level-3-preempts-level-2 rule for a single
// user within one tick: if both would fire, only posture_l3 is returned.
func ResolvePostureChannel(hasLevel3, hasLevel2 bool) (Channel, bool) {
	switch {
	case hasLevel3:
		return ChannelPostureL3, true
	case hasLevel2:
		return ChannelPostureL2, true
	default:
		return "", false
	}
}
