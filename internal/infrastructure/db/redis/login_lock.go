package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/elikia/membership-auth/internal/core/ports"
)

// ErrLockUnavailable is returned when the lock could not be taken before the wait ran out.
var ErrLockUnavailable = errors.New("login lock unavailable")

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// LoginLocker serializes login attempts for one email across replicas.
// Key format: login-lock:<email>
type LoginLocker struct {
	client   *redis.Client
	ttl      time.Duration
	maxWait  time.Duration
	fallback ports.IdentityLocker
	log      zerolog.Logger
}

// NewLoginLocker wraps client. ttl caps how long a crashed holder can block an
// email; maxWait caps how long a caller polls for it.
func NewLoginLocker(client *redis.Client, ttl, maxWait time.Duration) *LoginLocker {
	return &LoginLocker{client: client, ttl: ttl, maxWait: maxWait, log: zerolog.Nop()}
}

// WithFallback routes Lock to fallback while Redis is unreachable. Contention
// and cancellation are still reported to the caller.
func (l *LoginLocker) WithFallback(fallback ports.IdentityLocker, log zerolog.Logger) *LoginLocker {
	l.fallback = fallback
	l.log = log
	return l
}

// Lock polls SET NX until it wins, maxWait elapses or ctx ends.
func (l *LoginLocker) Lock(ctx context.Context, email string) (func(), error) {
	key := l.key(email)
	token := uuid.NewString()

	acquire := func() error {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("login lock: %w", err))
		}
		if !ok {
			return ErrLockUnavailable
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(5*time.Millisecond),
		backoff.WithMaxInterval(100*time.Millisecond),
		backoff.WithMaxElapsedTime(l.maxWait),
	)
	if err := backoff.Retry(acquire, backoff.WithContext(policy, ctx)); err != nil {
		if l.fallback != nil && ctx.Err() == nil && !errors.Is(err, ErrLockUnavailable) {
			l.log.Warn().Err(err).Msg("redis login lock down, using in-process lock")
			return l.fallback.Lock(ctx, email)
		}
		return nil, err
	}

	return func() {
		// Release must run even when the request context is gone.
		releaseCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}, nil
}

func (l *LoginLocker) key(email string) string {
	return "login-lock:" + email
}
