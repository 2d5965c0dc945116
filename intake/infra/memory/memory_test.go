package memory

import (
	"context"
	"testing"
	"time"

	"form-intake/intake/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitlistRepository_UpsertKeepsCreatedAt(t *testing.T) {
	r := NewWaitlistRepository()
	ctx := context.Background()
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	require.NoError(t, r.UpsertWaitlist(ctx, domain.WaitlistEntry{Email: "a@b.co", Company: "Acme", CreatedAt: t1, UpdatedAt: t1}))
	require.NoError(t, r.UpsertWaitlist(ctx, domain.WaitlistEntry{Email: "a@b.co", Company: "Globex", CreatedAt: t2, UpdatedAt: t2}))

	rows := r.Entries()
	require.Len(t, rows, 1)
	assert.Equal(t, "Globex", rows[0].Company)
	assert.Equal(t, t1, rows[0].CreatedAt)
	assert.Equal(t, t2, rows[0].UpdatedAt)
}

func TestDocumentStore_PaginatesWaitlist(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.MirrorWaitlist(ctx, domain.WaitlistEntry{Email: "x@y.zz"}))
	}

	p1, err := s.WaitlistPage(ctx, "", 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Page{Count: 2, HasMore: true, NextCursor: "2"}, p1)

	p2, err := s.WaitlistPage(ctx, p1.NextCursor, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Page{Count: 2, HasMore: true, NextCursor: "4"}, p2)

	p3, err := s.WaitlistPage(ctx, p2.NextCursor, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Page{Count: 1}, p3)

	_, err = s.WaitlistPage(ctx, "nope", 2)
	var cursorErr *InvalidCursorError
	assert.ErrorAs(t, err, &cursorErr)
}

func TestDocumentStore_KeepsFeedbackCopies(t *testing.T) {
	s := NewDocumentStore()
	require.NoError(t, s.SaveFeedback(context.Background(), domain.Feedback{Name: "Jo"}))

	got := s.Feedback()
	got[0].Name = "changed"
	assert.Equal(t, "Jo", s.Feedback()[0].Name)
}
