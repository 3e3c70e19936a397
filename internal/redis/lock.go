package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct {
	Client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{Client: client}
}

// Active comandas rarely run longer than a night; the TTL is a safety net
// for locks orphaned by a crash mid-close.
const lockTTL = 12 * time.Hour

// AcquireComanda claims a comanda number for a session. Returns false when
// another session already holds it.
func (r *Redis) AcquireComanda(comanda, sessionID string) (bool, error) {
	key := "comanda_lock:" + comanda
	ok, err := r.Client.SetNX(context.Background(), key, sessionID, lockTTL).Result()
	return ok, err
}

// ReleaseComanda frees a comanda at close time. Only the owning session may
// release; a mismatched owner is left untouched.
func (r *Redis) ReleaseComanda(comanda, sessionID string) error {
	ctx := context.Background()
	key := fmt.Sprintf("comanda_lock:%s", comanda)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released
	}
	if err != nil {
		return err
	}
	if val == sessionID {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
