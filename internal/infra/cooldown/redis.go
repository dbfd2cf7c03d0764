package cooldown

import (
	"context"
	"errors"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"

	"github.com/redis/go-redis/v9"
)

type redisGate struct {
	client *redis.Client
	now    func() time.Time
}

var redisReserveScript = redis.NewScript(`
local ok = redis.call("SET", KEYS[1], "1", "NX", "PX", ARGV[1])
if ok then
  return {1, tonumber(ARGV[1])}
end
return {0, redis.call("PTTL", KEYS[1])}
`)

func NewRedisGate(addr, password string, db int, now func() time.Time) (domain.CooldownGate, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	if now == nil {
		now = time.Now
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisGate{client: client, now: now}, nil
}

func (r *redisGate) Reserve(ctx context.Context, scope domain.CooldownScope, addr domain.Address, window time.Duration) (domain.CooldownDecision, error) {
	if window <= 0 {
		return domain.CooldownDecision{Allowed: true}, nil
	}
	windowMillis := window.Milliseconds()
	if windowMillis <= 0 {
		windowMillis = 1
	}
	result, err := redisReserveScript.Run(ctx, r.client, []string{redisGateKey(scope, addr)}, windowMillis).Result()
	if err != nil {
		return domain.CooldownDecision{}, err
	}
	values, ok := result.([]any)
	if !ok || len(values) < 2 {
		return domain.CooldownDecision{}, errors.New("unexpected redis cooldown response")
	}
	acquired, ok := values[0].(int64)
	if !ok {
		return domain.CooldownDecision{}, errors.New("invalid redis cooldown response")
	}
	ttlMillis, _ := values[1].(int64)
	next := r.now()
	if ttlMillis > 0 {
		next = next.Add(time.Duration(ttlMillis) * time.Millisecond)
	}
	return domain.CooldownDecision{Allowed: acquired == 1, NextAllowed: next}, nil
}

func (r *redisGate) NextAllowed(ctx context.Context, scope domain.CooldownScope, addr domain.Address) (time.Time, error) {
	ttl, err := r.client.PTTL(ctx, redisGateKey(scope, addr)).Result()
	if err != nil {
		return time.Time{}, err
	}
	now := r.now()
	if ttl <= 0 {
		return now, nil
	}
	return now.Add(ttl), nil
}

func redisGateKey(scope domain.CooldownScope, addr domain.Address) string {
	return "cooldown:" + string(scope) + ":" + addr.String()
}
