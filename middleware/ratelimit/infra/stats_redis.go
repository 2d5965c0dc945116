package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"form-intake/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore acumula decisões do rate limit em hashes do Redis:
//
//	<prefix>:total                 allowed/denied (cumulativo, sem expiração)
//	<prefix>:minute:<yyyymmddhhmm> allowed/denied por minuto (expira em ttl)
//	<prefix>:ns:<namespace>        allowed/denied por regra
//	<prefix>:key:<ip>              allowed/denied por chave (só com trackKeys)
type RedisStatsStore struct {
	pipeline func() redis.Pipeliner

	prefix string
	ttl    time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.UniversalClient, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		pipeline: rdb.Pipeline,
		prefix:   "intake:ratelimit:stats",
		ttl:      24 * time.Hour,
		bucket:   "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.pipeline == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if ns := strings.TrimSpace(ev.Namespace); ns != "" {
		pipe.HIncrBy(ctx, s.prefix+":ns:"+ns, field, 1)
	}

	if s.trackKeys {
		if k := strings.TrimSpace(string(ev.Key)); k != "" {
			keyKey := s.prefix + ":key:" + k
			pipe.HIncrBy(ctx, keyKey, field, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, keyKey, s.ttl)
			}
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
