package infra

import (
	"context"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"form-intake/middleware/ratelimit/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Precisa de um Redis real: REDIS_ADDR=localhost:6379 go test ./...
func openTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	return rdb
}

func TestRedisCounter_FixedWindow(t *testing.T) {
	rdb := openTestRedis(t)
	c := NewRedisCounter(rdb, WithCounterPrefix("test:"+uuid.NewString()))
	rule := domain.Rule{MaxRequests: 2, Window: 300 * time.Millisecond}
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		win, err := c.Hit(ctx, "ip", rule)
		if err != nil {
			t.Fatalf("hit: %v", err)
		}
		if win.Count != want {
			t.Fatalf("expected count=%d, got %d", want, win.Count)
		}
	}

	time.Sleep(400 * time.Millisecond)

	win, err := c.Hit(ctx, "ip", rule)
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	if win.Count != 1 {
		t.Fatalf("expected fresh window, got count=%d", win.Count)
	}
}

func TestRedisStatsStore_RecordsNamespaceHash(t *testing.T) {
	rdb := openTestRedis(t)
	prefix := "test:" + uuid.NewString()
	s := NewRedisStatsStore(rdb, WithStatsPrefix(prefix), WithStatsTTL(time.Minute))
	ctx := context.Background()

	if err := s.Record(ctx, domain.StatsEvent{Namespace: "feedback", Allowed: false}); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := rdb.HGet(ctx, prefix+":ns:feedback", "denied").Int()
	if err != nil {
		t.Fatalf("hget: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected denied=1, got %d", got)
	}
}

// fakeRedis responde no lugar do servidor: registra os comandos e devolve
// evalReply para EVAL/EVALSHA, sem abrir conexão.
type fakeRedis struct {
	evalReply []interface{}
	cmds      [][]interface{}
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (f *fakeRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		f.cmds = append(f.cmds, cmd.Args())
		if c, ok := cmd.(*redis.Cmd); ok {
			c.SetVal(f.evalReply)
		}
		return nil
	}
}

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			f.cmds = append(f.cmds, cmd.Args())
		}
		return nil
	}
}

// keys devolve as chaves tocadas pelo comando name, na ordem.
func (f *fakeRedis) keys(name string) []string {
	var out []string
	for _, args := range f.cmds {
		if len(args) > 1 && strings.EqualFold(args[0].(string), name) {
			out = append(out, args[1].(string))
		}
	}
	return out
}

func newFakeRedis(t *testing.T) (*redis.Client, *fakeRedis) {
	t.Helper()

	fake := &fakeRedis{}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	rdb.AddHook(fake)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, fake
}

func TestRedisCounter_ResetAtUsesClock(t *testing.T) {
	rdb, fake := newFakeRedis(t)
	fake.evalReply = []interface{}{int64(3), int64(1500)}
	clock := newManualClock()
	now := clock.Now()

	c := NewRedisCounter(rdb, WithCounterPrefix("rl:"), WithCounterClock(clock))
	win, err := c.Hit(context.Background(), "feedback:1.2.3.4", domain.Rule{MaxRequests: 5, Window: time.Minute})
	if err != nil {
		t.Fatalf("hit: %v", err)
	}

	if win.Count != 3 {
		t.Fatalf("expected count=3, got %d", win.Count)
	}
	if want := now.Add(1500 * time.Millisecond); !win.ResetAt.Equal(want) {
		t.Fatalf("expected reset at %v, got %v", want, win.ResetAt)
	}
	if len(fake.cmds) == 0 {
		t.Fatalf("expected the script to run")
	}
	// EVALSHA sha numkeys key ...
	args := fake.cmds[0]
	if len(args) < 4 || args[3] != "rl:feedback:1.2.3.4" {
		t.Fatalf("unexpected script args %v", args)
	}
}

func TestRedisCounter_UnexpectedReply(t *testing.T) {
	rdb, fake := newFakeRedis(t)
	fake.evalReply = []interface{}{int64(1)}

	_, err := NewRedisCounter(rdb).Hit(context.Background(), "k", domain.Rule{MaxRequests: 1, Window: time.Second})
	if err == nil {
		t.Fatalf("expected error for a short reply")
	}
}

func TestRedisStatsStore_MinuteBucketAndKeys(t *testing.T) {
	rdb, fake := newFakeRedis(t)
	at := time.Date(2026, 5, 1, 12, 34, 56, 0, time.UTC)

	s := NewRedisStatsStore(rdb, WithStatsPrefix("st"), WithStatsTrackKeys(true))
	err := s.Record(context.Background(), domain.StatsEvent{Namespace: "feedback", Key: "1.2.3.4", Allowed: true, At: at})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	got := strings.Join(fake.keys("hincrby"), " ")
	want := "st:total st:minute:202605011234 st:ns:feedback st:key:1.2.3.4"
	if got != want {
		t.Fatalf("expected hincrby on %q, got %q", want, got)
	}
	if exp := strings.Join(fake.keys("expire"), " "); exp != "st:minute:202605011234 st:key:1.2.3.4" {
		t.Fatalf("unexpected expire keys %q", exp)
	}
}

func TestRedisStatsStore_NoBucketNoKeys(t *testing.T) {
	rdb, fake := newFakeRedis(t)

	s := NewRedisStatsStore(rdb, WithStatsPrefix("st"), WithStatsBucket("None"))
	err := s.Record(context.Background(), domain.StatsEvent{Namespace: "waitlist-count", Key: "1.2.3.4", Allowed: false})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if got := strings.Join(fake.keys("hincrby"), " "); got != "st:total st:ns:waitlist-count" {
		t.Fatalf("unexpected hincrby keys %q", got)
	}
	if exp := fake.keys("expire"); len(exp) != 0 {
		t.Fatalf("expected no expire, got %v", exp)
	}
}
