package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingSearchTerms means the item has no marketplace search terms
// configured, so there is nothing to look up.
var ErrMissingSearchTerms = errors.New("item has no search terms configured")

// ErrNoResults means the marketplace search returned zero qualifying
// listings. It is a legitimate empty outcome, not a fault, and is never
// retried.
var ErrNoResults = errors.New("no qualifying listings found")

// RateLimitReason identifies why the local rate limiter denied a call.
type RateLimitReason string

const (
	ReasonDailyQuotaExceeded RateLimitReason = "daily_quota_exceeded"
	ReasonTooSoon            RateLimitReason = "too_soon"
)

// RateLimitedError is returned when the local rate limiter denies a call.
// RetryAfter is how long the caller must wait before trying again.
type RateLimitedError struct {
	Reason     RateLimitReason
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	switch e.Reason {
	case ReasonDailyQuotaExceeded:
		return fmt.Sprintf("daily marketplace call quota exhausted, resets in %s", e.RetryAfter.Round(time.Minute))
	default:
		return fmt.Sprintf("marketplace calls are spaced out, retry in %s", e.RetryAfter.Round(time.Second))
	}
}

// AuthenticationError means the marketplace rejected our credentials.
// This indicates a systemic misconfiguration, not a transient condition,
// and is never retried.
type AuthenticationError struct {
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("marketplace rejected credentials (status %d): the API key is likely invalid or suspended, contact the administrator", e.StatusCode)
}

// ThrottledError means the marketplace itself is rate limiting us,
// independently of the local limiter. Retried with backoff.
type ThrottledError struct {
	StatusCode int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("marketplace is throttling requests (status %d)", e.StatusCode)
}

// TransientServerError covers 5xx-class marketplace faults. Retried with
// backoff.
type TransientServerError struct {
	StatusCode int
}

func (e *TransientServerError) Error() string {
	return fmt.Sprintf("marketplace server error (status %d)", e.StatusCode)
}

// MalformedResponseError means the marketplace response did not have the
// expected shape. Never retried.
type MalformedResponseError struct {
	Detail string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected marketplace response: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("unexpected marketplace response: %s", e.Detail)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// PersistenceError means a quote was fetched successfully but the updated
// item could not be saved. The quote is still cached, so retrying later
// spends no marketplace quota.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("fetched price but failed to save item (quote is cached, retry is free): %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
