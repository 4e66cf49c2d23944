package postgres

import (
	"context"
	"database/sql"
	"strings"

	"ranchbook/internal/domain/pastures"
)

type PasturesRepo struct {
	db *sql.DB
}

func NewPasturesRepo(db *sql.DB) *PasturesRepo {
	return &PasturesRepo{db: db}
}

var _ pastures.Repository = (*PasturesRepo)(nil)

func (r *PasturesRepo) Create(ctx context.Context, p pastures.Pasture) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pastures (id, ranch_id, name, created_at)
		VALUES ($1,$2,$3,$4)
	`,
		p.ID,
		p.RanchID,
		p.Name,
		p.CreatedAt,
	)
	return err
}

func (r *PasturesRepo) Delete(ctx context.Context, id string) error {
	// cows.pasture_id queda colgante a propósito (sin FK), igual que
	// el original
	res, err := r.db.ExecContext(ctx, `DELETE FROM pastures WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pastures.ErrNotFound
	}
	return nil
}

func (r *PasturesRepo) GetByID(ctx context.Context, id string) (pastures.Pasture, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pastures.Pasture{}, pastures.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, ranch_id, name, created_at
		FROM pastures
		WHERE id = $1
	`, id)

	var p pastures.Pasture
	if err := row.Scan(&p.ID, &p.RanchID, &p.Name, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return pastures.Pasture{}, pastures.ErrNotFound
		}
		return pastures.Pasture{}, err
	}
	return p, nil
}

func (r *PasturesRepo) ListByRanch(ctx context.Context, ranchID string) ([]pastures.Pasture, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ranch_id, name, created_at
		FROM pastures
		WHERE ranch_id = $1
		ORDER BY created_at, id
	`, ranchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pastures.Pasture, 0)
	for rows.Next() {
		var p pastures.Pasture
		if err := rows.Scan(&p.ID, &p.RanchID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
