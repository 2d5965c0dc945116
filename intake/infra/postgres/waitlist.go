package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"form-intake/intake/domain"
)

const upsertWaitlistSQL = `INSERT INTO waitlist (email, name, company, linkedin, reason, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (email) DO UPDATE SET
    name = EXCLUDED.name,
    company = EXCLUDED.company,
    linkedin = EXCLUDED.linkedin,
    reason = EXCLUDED.reason,
    updated_at = EXCLUDED.updated_at`

const countWaitlistSQL = `SELECT COUNT(*) FROM waitlist`

type WaitlistRepository struct {
	db *sql.DB
}

func NewWaitlistRepository(db *sql.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

// UpsertWaitlist insere ou atualiza pela chave email; created_at da linha
// existente não é tocado.
func (r *WaitlistRepository) UpsertWaitlist(ctx context.Context, e domain.WaitlistEntry) error {
	linkedIn := sql.NullString{String: e.LinkedIn, Valid: e.LinkedIn != ""}
	_, err := r.db.ExecContext(ctx, upsertWaitlistSQL,
		e.Email, e.Name, e.Company, linkedIn, e.Reason, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert waitlist: %w", err)
	}
	return nil
}

func (r *WaitlistRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countWaitlistSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count waitlist: %w", err)
	}
	return n, nil
}

// Ping é usado pelo /healthz.
func (r *WaitlistRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
