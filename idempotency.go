package vermillion

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/vermillionhq/vermillion/config"
	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/internal/cache"
	redlock "github.com/vermillionhq/vermillion/internal/lock"
	"github.com/vermillionhq/vermillion/model"
)

const (
	idempotencyPrefix = "idempotency:v1:"
	inflightPrefix    = "idempotency:inflight:"

	// inflightTTL bounds how long a reservation can outlive a crashed
	// request before the key becomes usable again.
	inflightTTL = 5 * time.Minute
)

// Idempotency stores and replays the exact response produced the first
// time a client key was used. While a request is in flight its key is
// reserved, so a concurrent duplicate is rejected rather than racing to
// execute the operation twice.
type Idempotency struct {
	cache cache.Cache
	redis redis.UniversalClient
}

func NewIdempotency(client redis.UniversalClient) (*Idempotency, error) {
	return &Idempotency{
		cache: cache.NewCache(client),
		redis: client,
	}, nil
}

// GetProcessedResponse returns the stored response bytes for key, or nil
// when the key has not completed before.
func (i *Idempotency) GetProcessedResponse(ctx context.Context, key string) ([]byte, error) {
	var stored []byte
	if err := i.cache.Get(ctx, idempotencyPrefix+key, &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Reserve marks key as in flight. The returned locker releases the
// reservation; callers must release on failure so a client retry can run.
func (i *Idempotency) Reserve(ctx context.Context, key string) (*redlock.Locker, error) {
	locker := redlock.NewLocker(i.redis, inflightPrefix+key, model.GenerateUUIDWithSuffix("idm"))
	if err := locker.Lock(ctx, inflightTTL); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrDuplicateInFlight,
			"A request with this idempotency key is already being processed", err.Error())
	}
	return locker, nil
}

// SaveResponse stores the response verbatim and releases the in-flight
// reservation. Only successful responses are stored; failures release the
// reservation without caching anything.
func (i *Idempotency) SaveResponse(ctx context.Context, key string, response []byte, locker *redlock.Locker) error {
	cnf, err := config.Fetch()
	if err != nil {
		return err
	}
	if err := i.cache.Set(ctx, idempotencyPrefix+key, response, cnf.IdempotencyTTL()); err != nil {
		return err
	}
	i.Release(ctx, locker)
	return nil
}

// Release drops an in-flight reservation. Best effort: an expired
// reservation is already gone.
func (i *Idempotency) Release(ctx context.Context, locker *redlock.Locker) {
	if locker == nil {
		return
	}
	if err := locker.Unlock(ctx); err != nil {
		logrus.Warnf("idempotency reservation release failed: %v", err)
	}
}
