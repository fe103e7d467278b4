package notifications

import (
	"context"
	"strconv"
	"sync"
	"time"

	"chirp/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	presenceOnlineSetKey = "ws:online_users"
	presenceLastSeenNS   = "ws:last_seen:"
	presenceTTL          = 90 * time.Second
	presenceGrace        = 5 * time.Second
	presenceReapInterval = 60 * time.Second
)

// Presence tracks which users hold at least one live websocket connection.
// Local connection counts are authoritative for this process; Redis mirrors
// them so presence survives across instances. A short grace window after the
// last disconnect absorbs page reloads.
type Presence struct {
	rdb *redis.Client

	mu            sync.RWMutex
	connCounts    map[uint]int
	offlineTimers map[uint]*time.Timer

	grace        time.Duration
	reapInterval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewPresence creates a tracker and starts a Redis reaper when Redis is
// available. A nil client degrades to local-only tracking.
func NewPresence(rdb *redis.Client) *Presence {
	p := &Presence{
		rdb:           rdb,
		connCounts:    make(map[uint]int),
		offlineTimers: make(map[uint]*time.Timer),
		grace:         presenceGrace,
		reapInterval:  presenceReapInterval,
		stopCh:        make(chan struct{}),
	}
	if p.rdb != nil {
		go p.reaperLoop()
	}
	return p
}

// SetGracePeriod shortens the offline grace window, for tests.
func (p *Presence) SetGracePeriod(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.grace = d
	p.mu.Unlock()
}

func (p *Presence) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.mu.Lock()
		for userID, timer := range p.offlineTimers {
			timer.Stop()
			delete(p.offlineTimers, userID)
		}
		p.mu.Unlock()
	})
}

// Register records a new connection for the user.
func (p *Presence) Register(ctx context.Context, userID uint) {
	p.mu.Lock()
	if t, ok := p.offlineTimers[userID]; ok {
		t.Stop()
		delete(p.offlineTimers, userID)
	}
	p.connCounts[userID]++
	p.mu.Unlock()

	p.Touch(ctx, userID)
}

// Touch refreshes the user's Redis presence markers.
func (p *Presence) Touch(ctx context.Context, userID uint) {
	if p.rdb == nil {
		return
	}
	uid := strconv.FormatUint(uint64(userID), 10)
	if err := p.rdb.SAdd(ctx, presenceOnlineSetKey, uid).Err(); err != nil {
		observability.GlobalLogger.Warn("presence touch failed", "user_id", userID, "error", err)
		return
	}
	if err := p.rdb.SetEx(ctx, presenceLastSeenNS+uid, time.Now().Unix(), presenceTTL).Err(); err != nil {
		observability.GlobalLogger.Warn("presence touch failed", "user_id", userID, "error", err)
	}
}

// Unregister records a dropped connection. The Redis markers are removed only
// after the grace window passes with no reconnect.
func (p *Presence) Unregister(ctx context.Context, userID uint) {
	p.mu.Lock()
	if n := p.connCounts[userID]; n > 1 {
		p.connCounts[userID] = n - 1
		p.mu.Unlock()
		return
	}
	delete(p.connCounts, userID)

	if t, ok := p.offlineTimers[userID]; ok {
		t.Stop()
	}
	p.offlineTimers[userID] = time.AfterFunc(p.grace, func() {
		p.finalizeOffline(context.Background(), userID)
	})
	p.mu.Unlock()
}

// IsOnline checks local connections first, then the Redis marker.
func (p *Presence) IsOnline(ctx context.Context, userID uint) bool {
	p.mu.RLock()
	local := p.connCounts[userID] > 0
	p.mu.RUnlock()
	if local {
		return true
	}

	if p.rdb == nil {
		return false
	}
	uid := strconv.FormatUint(uint64(userID), 10)
	exists, err := p.rdb.Exists(ctx, presenceLastSeenNS+uid).Result()
	return err == nil && exists > 0
}

// OnlineUserIDs returns the union of Redis presence (stale entries filtered)
// and local connections.
func (p *Presence) OnlineUserIDs(ctx context.Context) []uint {
	local := p.localUserIDs()
	if p.rdb == nil {
		return local
	}

	members, err := p.rdb.SMembers(ctx, presenceOnlineSetKey).Result()
	if err != nil {
		return local
	}

	seen := make(map[uint]struct{}, len(members)+len(local))
	result := make([]uint, 0, len(members)+len(local))
	for _, raw := range members {
		id64, parseErr := strconv.ParseUint(raw, 10, 32)
		if parseErr != nil {
			continue
		}
		userID := uint(id64)
		exists, existsErr := p.rdb.Exists(ctx, presenceLastSeenNS+raw).Result()
		if existsErr != nil {
			continue
		}
		if exists == 0 {
			_ = p.rdb.SRem(ctx, presenceOnlineSetKey, raw).Err()
			continue
		}
		seen[userID] = struct{}{}
		result = append(result, userID)
	}

	for _, userID := range local {
		if _, ok := seen[userID]; !ok {
			result = append(result, userID)
		}
	}
	return result
}

func (p *Presence) localUserIDs() []uint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]uint, 0, len(p.connCounts))
	for userID, count := range p.connCounts {
		if count > 0 {
			ids = append(ids, userID)
		}
	}
	return ids
}

// reapOnce removes online-set members whose last-seen marker expired.
func (p *Presence) reapOnce(ctx context.Context) {
	if p.rdb == nil {
		return
	}
	members, err := p.rdb.SMembers(ctx, presenceOnlineSetKey).Result()
	if err != nil {
		return
	}
	for _, raw := range members {
		exists, existsErr := p.rdb.Exists(ctx, presenceLastSeenNS+raw).Result()
		if existsErr != nil || exists > 0 {
			continue
		}
		_ = p.rdb.SRem(ctx, presenceOnlineSetKey, raw).Err()
	}
}

func (p *Presence) reaperLoop() {
	ticker := time.NewTicker(p.reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.reapOnce(context.Background())
		}
	}
}

func (p *Presence) finalizeOffline(ctx context.Context, userID uint) {
	p.mu.Lock()
	if p.connCounts[userID] > 0 {
		delete(p.offlineTimers, userID)
		p.mu.Unlock()
		return
	}
	delete(p.offlineTimers, userID)
	p.mu.Unlock()

	if p.rdb != nil {
		uid := strconv.FormatUint(uint64(userID), 10)
		exists, err := p.rdb.Exists(ctx, presenceLastSeenNS+uid).Result()
		if err == nil && exists > 0 {
			// Another instance refreshed presence; the user is still online.
			return
		}
		_ = p.rdb.SRem(ctx, presenceOnlineSetKey, uid).Err()
	}
}
