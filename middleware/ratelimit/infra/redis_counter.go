package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"form-intake/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript incrementa o contador e, só na primeira requisição da
// janela, define a expiração. Retorna {count, pttl}.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisCounter implementa a mesma janela fixa do MemoryCounter, mas com o
// estado em Redis, para que várias instâncias do serviço dividam a contagem.
type RedisCounter struct {
	rdb    redis.Scripter
	prefix string
	clock  domain.Clock
}

type RedisCounterOption func(*RedisCounter)

func WithCounterPrefix(prefix string) RedisCounterOption {
	return func(c *RedisCounter) { c.prefix = strings.Trim(prefix, ":") }
}

func WithCounterClock(clock domain.Clock) RedisCounterOption {
	return func(c *RedisCounter) { c.clock = clock }
}

func NewRedisCounter(rdb redis.Scripter, opts ...RedisCounterOption) *RedisCounter {
	c := &RedisCounter{
		rdb:    rdb,
		prefix: "ratelimit:window",
		clock:  domain.SystemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hit implementa domain.Counter.
func (c *RedisCounter) Hit(ctx context.Context, key domain.Key, rule domain.Rule) (domain.Window, error) {
	windowMs := rule.Window.Milliseconds()
	if windowMs <= 0 {
		windowMs = 1
	}

	res, err := fixedWindowScript.Run(ctx, c.rdb, []string{c.prefix + ":" + string(key)}, windowMs).Int64Slice()
	if err != nil {
		return domain.Window{}, fmt.Errorf("redis fixed window: %w", err)
	}
	if len(res) != 2 {
		return domain.Window{}, fmt.Errorf("redis fixed window: unexpected reply %v", res)
	}

	return domain.Window{
		Count:   int(res[0]),
		ResetAt: c.clock.Now().Add(time.Duration(res[1]) * time.Millisecond),
	}, nil
}
