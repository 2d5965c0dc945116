package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"form-intake/intake/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCountTTL = 60 * time.Second
	countPageSize   = 100
)

var errCursorStuck = errors.New("pagination cursor did not advance")

type CountResult struct {
	Count  int
	Cached bool
}

// CountService conta as inscrições da lista de espera com um cache de
// processo. O contador alimenta só um número na UI, então falhas nunca
// viram erro: devolve o último valor conhecido (ou 0).
type CountService struct {
	Pager  domain.WaitlistPager
	TTL    time.Duration
	Clock  domain.Clock
	Logger *zap.Logger

	mu        sync.Mutex
	count     int
	cachedAt  time.Time
	populated bool

	group singleflight.Group
}

func (s *CountService) Count(ctx context.Context) CountResult {
	if s.Pager == nil {
		return CountResult{}
	}

	if n, ok := s.fresh(); ok {
		return CountResult{Count: n, Cached: true}
	}

	v, err, _ := s.group.Do("count", func() (any, error) {
		n, err := s.fetch(ctx)
		if err != nil {
			return 0, err
		}
		s.remember(n)
		return n, nil
	})
	if err != nil {
		loggerFor(ctx, s.Logger).Warn("waitlist count query failed, serving last known value", zap.Error(err))
		return CountResult{Count: s.last()}
	}
	return CountResult{Count: v.(int)}
}

func (s *CountService) fetch(ctx context.Context) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, errors.New("panic while counting waitlist")
		}
	}()

	total := 0
	cursor := ""
	for {
		page, err := s.Pager.WaitlistPage(ctx, cursor, countPageSize)
		if err != nil {
			return 0, err
		}
		total += page.Count
		if !page.HasMore || page.NextCursor == "" {
			return total, nil
		}
		if page.NextCursor == cursor {
			return 0, errCursorStuck
		}
		cursor = page.NextCursor
	}
}

func (s *CountService) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *CountService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultCountTTL
	}
	return s.TTL
}

func (s *CountService) fresh() (int, bool) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.populated && now.Sub(s.cachedAt) < s.ttl() {
		return s.count, true
	}
	return 0, false
}

func (s *CountService) remember(n int) {
	now := s.now()

	s.mu.Lock()
	s.count, s.cachedAt, s.populated = n, now, true
	s.mu.Unlock()
}

func (s *CountService) last() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
