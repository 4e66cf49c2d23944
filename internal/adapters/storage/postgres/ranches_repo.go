package postgres

import (
	"context"
	"database/sql"
	"strings"

	"ranchbook/internal/domain/ranches"
)

type RanchesRepo struct {
	db *sql.DB
}

func NewRanchesRepo(db *sql.DB) *RanchesRepo {
	return &RanchesRepo{db: db}
}

var _ ranches.Repository = (*RanchesRepo)(nil)

func (r *RanchesRepo) CreateRanch(ctx context.Context, ra ranches.Ranch) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ranches (id, name, owner_user_id, tier, created_at)
		VALUES ($1,$2,$3,'free',$4)
	`,
		ra.ID,
		ra.Name,
		ra.OwnerUserID,
		ra.CreatedAt,
	)
	return err
}

func (r *RanchesRepo) GetRanch(ctx context.Context, id string) (ranches.Ranch, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ranches.Ranch{}, ranches.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, owner_user_id, created_at
		FROM ranches
		WHERE id = $1
	`, id)

	var ra ranches.Ranch
	if err := row.Scan(&ra.ID, &ra.Name, &ra.OwnerUserID, &ra.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return ranches.Ranch{}, ranches.ErrNotFound
		}
		return ranches.Ranch{}, err
	}
	return ra, nil
}

func (r *RanchesRepo) UpdateRanch(ctx context.Context, ra ranches.Ranch) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ranches
		SET name = $2, owner_user_id = $3
		WHERE id = $1
	`,
		ra.ID,
		ra.Name,
		ra.OwnerUserID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ranches.ErrNotFound
	}
	return nil
}

func (r *RanchesRepo) DeleteRanch(ctx context.Context, id string) error {
	// members/cows/tags/notes/pastures/presets caen por ON DELETE CASCADE
	res, err := r.db.ExecContext(ctx, `DELETE FROM ranches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ranches.ErrNotFound
	}
	return nil
}

func (r *RanchesRepo) CreateMember(ctx context.Context, m ranches.Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ranch_members (
			id, ranch_id, user_id, email, role,
			accepted, invited_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		m.ID,
		m.RanchID,
		toNullString(m.UserID),
		m.Email,
		string(m.Role),
		m.Accepted,
		toNullString(m.InvitedBy),
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *RanchesRepo) UpdateMember(ctx context.Context, m ranches.Member) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ranch_members
		SET user_id = $2, email = $3, role = $4, accepted = $5, updated_at = $6
		WHERE id = $1
	`,
		m.ID,
		toNullString(m.UserID),
		m.Email,
		string(m.Role),
		m.Accepted,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ranches.ErrNotFound
	}
	return nil
}

func (r *RanchesRepo) DeleteMember(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ranch_members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ranches.ErrNotFound
	}
	return nil
}

func (r *RanchesRepo) GetMember(ctx context.Context, id string) (ranches.Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ranches.Member{}, ranches.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, ranch_id, user_id, email, role,
		       accepted, invited_by, created_at, updated_at
		FROM ranch_members
		WHERE id = $1
	`, id)

	return scanMember(row)
}

func (r *RanchesRepo) ListMembersByRanch(ctx context.Context, ranchID string) ([]ranches.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ranch_id, user_id, email, role,
		       accepted, invited_by, created_at, updated_at
		FROM ranch_members
		WHERE ranch_id = $1
		ORDER BY created_at, id
	`, ranchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMembers(rows)
}

func (r *RanchesRepo) FindMemberByEmail(ctx context.Context, ranchID, email string) (ranches.Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, ranch_id, user_id, email, role,
		       accepted, invited_by, created_at, updated_at
		FROM ranch_members
		WHERE ranch_id = $1 AND lower(email) = lower($2)
	`, ranchID, email)

	return scanMember(row)
}

func (r *RanchesRepo) ListMembershipsByUser(ctx context.Context, userID string) ([]ranches.Membership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ra.id, ra.name, ra.owner_user_id, ra.created_at, m.role
		FROM ranch_members m
		JOIN ranches ra ON ra.id = m.ranch_id
		WHERE m.user_id = $1 AND m.accepted
		ORDER BY ra.created_at, ra.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ranches.Membership, 0)
	for rows.Next() {
		var ms ranches.Membership
		var role string
		if err := rows.Scan(&ms.Ranch.ID, &ms.Ranch.Name, &ms.Ranch.OwnerUserID, &ms.Ranch.CreatedAt, &role); err != nil {
			return nil, err
		}
		ms.Role = ranches.Role(role)
		out = append(out, ms)
	}
	return out, rows.Err()
}

func (r *RanchesRepo) ListInvitesByEmail(ctx context.Context, email string) ([]ranches.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ranch_id, user_id, email, role,
		       accepted, invited_by, created_at, updated_at
		FROM ranch_members
		WHERE lower(email) = lower($1) AND NOT accepted
		ORDER BY created_at, id
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMembers(rows)
}

func scanMember(row rowScanner) (ranches.Member, error) {
	var m ranches.Member
	var userID, invitedBy sql.NullString
	var role string

	if err := row.Scan(
		&m.ID,
		&m.RanchID,
		&userID,
		&m.Email,
		&role,
		&m.Accepted,
		&invitedBy,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return ranches.Member{}, ranches.ErrNotFound
		}
		return ranches.Member{}, err
	}

	m.UserID = userID.String
	m.InvitedBy = invitedBy.String
	m.Role = ranches.Role(role)
	return m, nil
}

func collectMembers(rows *sql.Rows) ([]ranches.Member, error) {
	out := make([]ranches.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
