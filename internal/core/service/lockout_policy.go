package service

import (
	"fmt"
	"time"

	"github.com/elikia/membership-auth/internal/core/domain"
)

// LockoutPolicy decides lock transitions from the failure counter. It never persists.
type LockoutPolicy struct {
	threshold int
	duration  time.Duration
}

func NewLockoutPolicy(threshold int, duration time.Duration) (*LockoutPolicy, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: lockout threshold must be positive", domain.ErrConfiguration)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: lockout duration must be positive", domain.ErrConfiguration)
	}
	return &LockoutPolicy{threshold: threshold, duration: duration}, nil
}

func (p *LockoutPolicy) IsLocked(l domain.Lockout, now time.Time) bool {
	return l.IsLocked(now)
}

// RecordFailure increments the counter and opens a lock window once the new
// value reaches the threshold.
func (p *LockoutPolicy) RecordFailure(l domain.Lockout, now time.Time) domain.Lockout {
	next := domain.Lockout{FailedLoginAttempts: l.FailedLoginAttempts + 1}
	if next.FailedLoginAttempts >= p.threshold {
		until := now.Add(p.duration)
		next.LockUntil = &until
	}
	return next
}

func (p *LockoutPolicy) RecordSuccess(domain.Lockout) domain.Lockout {
	return domain.Lockout{}
}
