package auth

import (
	"hash/fnv"
	"sort"
	"sync"
	"time"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 5 * time.Minute

	trackerShards = 16
)

// AttemptTracker is a process-wide sliding-window login throttle keyed by
// username. Every call records a timestamp; the window check fires only
// when the record holds exactly maxAttempts entries, and the oldest entry
// is evicted after the check regardless of outcome. Between calls a record
// therefore never holds more than maxAttempts-1 timestamps.
type AttemptTracker struct {
	maxAttempts int
	window      time.Duration
	shards      [trackerShards]*trackerShard
}

type trackerShard struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func NewAttemptTracker(maxAttempts int, window time.Duration) *AttemptTracker {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}

	t := &AttemptTracker{
		maxAttempts: maxAttempts,
		window:      window,
	}
	for i := range t.shards {
		t.shards[i] = &trackerShard{attempts: make(map[string][]time.Time)}
	}
	return t
}

// CheckAndRecord registers a login attempt for username and reports whether
// the attempt may proceed.
func (t *AttemptTracker) CheckAndRecord(username string) bool {
	return t.checkAndRecord(username, time.Now().UTC())
}

func (t *AttemptTracker) checkAndRecord(username string, now time.Time) bool {
	s := t.shard(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	attempts := append(s.attempts[username], now)
	sort.Slice(attempts, func(i, j int) bool { return attempts[i].Before(attempts[j]) })

	allowed := true
	if len(attempts) == t.maxAttempts {
		span := attempts[len(attempts)-1].Sub(attempts[0])
		if span < 0 {
			span = -span
		}
		if span < t.window {
			allowed = false
		}
		attempts = append(make([]time.Time, 0, len(attempts)-1), attempts[1:]...)
	}
	s.attempts[username] = attempts

	return allowed
}

// Prune drops usernames whose newest attempt is older than retention and
// returns how many were removed. It is an operational memory bound only;
// records inside the retention period keep their full history.
func (t *AttemptTracker) Prune(retention time.Duration) int {
	threshold := time.Now().UTC().Add(-retention)

	removed := 0
	for _, s := range t.shards {
		s.mu.Lock()
		for username, attempts := range s.attempts {
			if len(attempts) == 0 || attempts[len(attempts)-1].Before(threshold) {
				delete(s.attempts, username)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Tracked reports how many usernames currently hold attempt records.
func (t *AttemptTracker) Tracked() int {
	total := 0
	for _, s := range t.shards {
		s.mu.Lock()
		total += len(s.attempts)
		s.mu.Unlock()
	}
	return total
}

func (t *AttemptTracker) shard(username string) *trackerShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return t.shards[h.Sum32()%trackerShards]
}
