// Package memory implementa as portas de intake/domain em memória.
// Serve o servidor de desenvolvimento (cmd/devserver) e os testes.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"form-intake/intake/domain"
)

// WaitlistRepository se comporta como a tabela waitlist com UNIQUE(email).
type WaitlistRepository struct {
	mu   sync.Mutex
	rows map[string]domain.WaitlistEntry
}

func NewWaitlistRepository() *WaitlistRepository {
	return &WaitlistRepository{rows: make(map[string]domain.WaitlistEntry)}
}

func (r *WaitlistRepository) UpsertWaitlist(_ context.Context, e domain.WaitlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.rows[e.Email]; ok {
		e.CreatedAt = cur.CreatedAt
	}
	r.rows[e.Email] = e
	return nil
}

func (r *WaitlistRepository) Get(email string) (domain.WaitlistEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[email]
	return e, ok
}

// Entries devolve as linhas ordenadas por e-mail.
func (r *WaitlistRepository) Entries() []domain.WaitlistEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.WaitlistEntry, 0, len(r.rows))
	for _, e := range r.rows {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// DocumentStore guarda páginas como o store de documentos: cada gravação é
// uma página nova, sem unicidade.
type DocumentStore struct {
	mu       sync.Mutex
	feedback []domain.Feedback
	waitlist []domain.WaitlistEntry
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

func (s *DocumentStore) SaveFeedback(_ context.Context, f domain.Feedback) error {
	s.mu.Lock()
	s.feedback = append(s.feedback, f)
	s.mu.Unlock()
	return nil
}

func (s *DocumentStore) MirrorWaitlist(_ context.Context, e domain.WaitlistEntry) error {
	s.mu.Lock()
	s.waitlist = append(s.waitlist, e)
	s.mu.Unlock()
	return nil
}

// WaitlistPage usa o offset em texto como cursor.
func (s *DocumentStore) WaitlistPage(_ context.Context, cursor string, pageSize int) (domain.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return domain.Page{}, &InvalidCursorError{Cursor: cursor}
		}
		offset = n
	}
	if pageSize <= 0 {
		pageSize = len(s.waitlist)
	}

	remaining := len(s.waitlist) - offset
	if remaining <= 0 {
		return domain.Page{}, nil
	}
	if remaining <= pageSize {
		return domain.Page{Count: remaining}, nil
	}
	return domain.Page{
		Count:      pageSize,
		HasMore:    true,
		NextCursor: strconv.Itoa(offset + pageSize),
	}, nil
}

func (s *DocumentStore) Feedback() []domain.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Feedback(nil), s.feedback...)
}

func (s *DocumentStore) Waitlist() []domain.WaitlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WaitlistEntry(nil), s.waitlist...)
}

type InvalidCursorError struct {
	Cursor string
}

func (e *InvalidCursorError) Error() string { return "invalid cursor " + strconv.Quote(e.Cursor) }
