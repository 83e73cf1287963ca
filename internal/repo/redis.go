package repo

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct{ C *redis.Client }

func NewRedis(addr string) *Redis {
	return &Redis{C: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Ping(ctx context.Context) error { return r.C.Ping(ctx).Err() }
func (r *Redis) Close() error                   { return r.C.Close() }

// IncrWindow bumps the counter for key and makes it expire at windowEnd.
// Both commands run in one MULTI so a counter never outlives its window.
func (r *Redis) IncrWindow(ctx context.Context, key string, windowEnd time.Time) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.C.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.PExpireAt(ctx, key, windowEnd)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
