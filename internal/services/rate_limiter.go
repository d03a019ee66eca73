package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter gates marketplace calls behind a daily quota and a minimum
// inter-call spacing. It is a client-side courtesy limiter: the remote
// quota is tracked independently server-side, so this state lives only
// in memory and resets on restart.
type RateLimiter struct {
	dailyLimit  int
	minInterval time.Duration
	spacing     *rate.Limiter

	mu             sync.Mutex
	requestsToday  int
	lastRequestDay time.Time
}

// Permit is the result of a successful TryConsume.
type Permit struct {
	Remaining int
}

// NewRateLimiter creates a limiter with the given daily call budget and
// minimum spacing between calls.
func NewRateLimiter(dailyLimit int, minInterval time.Duration) *RateLimiter {
	if dailyLimit <= 0 {
		dailyLimit = 100
	}
	if minInterval <= 0 {
		minInterval = 60 * time.Second
	}

	return &RateLimiter{
		dailyLimit:  dailyLimit,
		minInterval: minInterval,
		spacing:     rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// TryConsume claims one marketplace call. It never blocks: a denied call
// returns a *RateLimitedError carrying the wait time, and the caller must
// surface it rather than sleep.
func (l *RateLimiter) TryConsume() (Permit, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.rollOverLocked(now)

	if l.requestsToday >= l.dailyLimit {
		return Permit{}, &RateLimitedError{
			Reason:     ReasonDailyQuotaExceeded,
			RetryAfter: time.Until(nextMidnight(now)),
		}
	}

	res := l.spacing.ReserveN(now, 1)
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return Permit{}, &RateLimitedError{
			Reason:     ReasonTooSoon,
			RetryAfter: wait,
		}
	}

	l.requestsToday++
	return Permit{Remaining: l.dailyLimit - l.requestsToday}, nil
}

// Remaining returns the number of calls left in today's budget.
func (l *RateLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	today := startOfDay(now)
	if l.lastRequestDay.Before(today) {
		return l.dailyLimit
	}

	remaining := l.dailyLimit - l.requestsToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Limit returns the configured daily call budget.
func (l *RateLimiter) Limit() int {
	return l.dailyLimit
}

// ResetTime returns when the daily budget next rolls over (local midnight).
func (l *RateLimiter) ResetTime() time.Time {
	return nextMidnight(time.Now())
}

// rollOverLocked resets the daily counter exactly once when the wall-clock
// date moves past the stored day. Callers must hold l.mu.
func (l *RateLimiter) rollOverLocked(now time.Time) {
	today := startOfDay(now)
	if l.lastRequestDay.Before(today) {
		l.requestsToday = 0
		l.lastRequestDay = today
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func nextMidnight(t time.Time) time.Time {
	return startOfDay(t).Add(24 * time.Hour)
}
