// Package redlock implements a redis-backed distributed mutex.
//
// A lock is a key holding a random token with a TTL. Acquisition uses
// SET NX with bounded exponential-backoff retries. Release and renewal
// run server-side scripts that only act when the stored token still
// matches the caller's, so an expired holder can never delete or extend
// a lock that has since been granted to someone else.
//
// While held, a background goroutine renews the TTL; if renewal fails
// because the token no longer matches, the loss is reported on Lost().
package redlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the retry budget is exhausted without
// obtaining the lock.
var ErrNotAcquired = errors.New("lock not acquired")

// ErrNotHeld is returned by Release when the stored token does not match,
// i.e. the lease expired and may have been granted to another holder.
var ErrNotHeld = errors.New("lock not held")

const (
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 1000 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)

var renewScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end`)

// Locker acquires named locks against a single redis deployment.
type Locker struct {
	client     *redis.Client
	maxRetries int
}

// New returns a Locker. maxRetries is the number of re-attempts after the
// first failed SET NX; the backoff doubles from 100ms and is capped at 1s
// per attempt.
func New(client *redis.Client, maxRetries int) *Locker {
	return &Locker{client: client, maxRetries: maxRetries}
}

// Lock is a held lease. Release it exactly once.
type Lock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration

	lost   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// Acquire obtains the lock for key, retrying with exponential backoff.
// The returned Lock renews its own TTL until released.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	token := uuid.NewString()

	backoff := initialBackoff

	for attempt := 0; ; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("setnx %q: %w", key, err)
		}

		if ok {
			break
		}

		if attempt >= l.maxRetries {
			return nil, fmt.Errorf("acquire %q after %d attempts: %w", key, attempt+1, ErrNotAcquired)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire %q: %w", key, ctx.Err())
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	renewCtx, cancel := context.WithCancel(context.Background())

	lk := &Lock{
		client: l.client,
		key:    key,
		token:  token,
		ttl:    ttl,
		lost:   make(chan struct{}),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go lk.renewLoop(renewCtx)

	return lk, nil
}

// Lost is closed if a renewal discovers the lease has expired or been
// taken over. The critical section should abort when this fires.
func (lk *Lock) Lost() <-chan struct{} {
	return lk.lost
}

// Release stops renewal and deletes the key if this holder still owns it.
// Returns ErrNotHeld if the token no longer matches; the other holder's
// lock is left untouched.
func (lk *Lock) Release(ctx context.Context) error {
	lk.cancel()
	<-lk.done

	n, err := releaseScript.Run(ctx, lk.client, []string{lk.key}, lk.token).Int()
	if err != nil {
		return fmt.Errorf("release %q: %w", lk.key, err)
	}

	if n == 0 {
		return fmt.Errorf("release %q: %w", lk.key, ErrNotHeld)
	}

	return nil
}

func (lk *Lock) renewLoop(ctx context.Context) {
	defer close(lk.done)

	ticker := time.NewTicker(lk.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := renewScript.Run(ctx, lk.client,
				[]string{lk.key}, lk.token, lk.ttl.Milliseconds()).Int()
			if err != nil {
				// transient redis error; the next tick retries while TTL lasts
				continue
			}

			if n == 0 {
				close(lk.lost)
				return
			}
		}
	}
}
