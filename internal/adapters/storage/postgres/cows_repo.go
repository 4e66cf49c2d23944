package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"ranchbook/internal/domain/cows"
)

type CowsRepo struct {
	db *sql.DB
}

func NewCowsRepo(db *sql.DB) *CowsRepo {
	return &CowsRepo{db: db}
}

var _ cows.Repository = (*CowsRepo)(nil)

func (r *CowsRepo) Create(ctx context.Context, c cows.Cow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cows (
			id, ranch_id,
			name, description, status, breed,
			birth_month, birth_year,
			pasture_id, photos, mother_tag,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		c.ID,
		c.RanchID,
		c.Name,
		c.Description,
		string(c.Status),
		c.Breed,
		c.BirthMonth,
		c.BirthYear,
		toNullString(c.PastureID),
		encodePhotos(c.Photos),
		c.MotherTag,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *CowsRepo) UpdateFields(ctx context.Context, c cows.Cow) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cows
		SET
			name = $2,
			description = $3,
			status = $4,
			breed = $5,
			birth_month = $6,
			birth_year = $7,
			pasture_id = $8,
			photos = $9,
			mother_tag = $10,
			updated_at = $11
		WHERE id = $1
	`,
		c.ID,
		c.Name,
		c.Description,
		string(c.Status),
		c.Breed,
		c.BirthMonth,
		c.BirthYear,
		toNullString(c.PastureID),
		encodePhotos(c.Photos),
		c.MotherTag,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cows.ErrNotFound
	}
	return nil
}

func (r *CowsRepo) Delete(ctx context.Context, id string) error {
	// tags/notes/medical caen por ON DELETE CASCADE
	res, err := r.db.ExecContext(ctx, `DELETE FROM cows WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cows.ErrNotFound
	}
	return nil
}

func (r *CowsRepo) GetByID(ctx context.Context, id string) (cows.Cow, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return cows.Cow{}, cows.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, ranch_id,
			name, description, status, breed,
			birth_month, birth_year,
			pasture_id, photos, mother_tag,
			created_at, updated_at
		FROM cows
		WHERE id = $1
	`, id)

	c, err := scanCow(row)
	if err != nil {
		return cows.Cow{}, err
	}

	if err := r.loadChildren(ctx, &c); err != nil {
		return cows.Cow{}, err
	}
	return c, nil
}

func (r *CowsRepo) ListByRanch(ctx context.Context, ranchID string) ([]cows.Cow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, ranch_id,
			name, description, status, breed,
			birth_month, birth_year,
			pasture_id, photos, mother_tag,
			created_at, updated_at
		FROM cows
		WHERE ranch_id = $1
		ORDER BY created_at DESC, id
	`, ranchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cows.Cow, 0)
	for rows.Next() {
		c, err := scanCow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *CowsRepo) CountByRanch(ctx context.Context, ranchID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cows WHERE ranch_id = $1`, ranchID).Scan(&n)
	return n, err
}

func (r *CowsRepo) InsertTags(ctx context.Context, ranchID, cowID string, tags []cows.Tag) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range tags {
		number := cows.NormalizeTagNumber(t.Number)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cow_tags (id, ranch_id, cow_id, label, number)
			VALUES ($1,$2,$3,$4,$5)
		`, t.ID, ranchID, cowID, string(t.Label), number)
		if err != nil {
			if isUniqueViolation(err) {
				// la tx ya abortó; buscamos al dueño con el pool
				owner := r.tagOwner(ctx, ranchID, number)
				return &cows.DuplicateTagError{Number: number, CowID: owner}
			}
			return err
		}
	}
	return tx.Commit()
}

func (r *CowsRepo) DeleteTags(ctx context.Context, ranchID, cowID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cow_tags WHERE ranch_id = $1 AND cow_id = $2`, ranchID, cowID)
	return err
}

func (r *CowsRepo) ListTagsByRanch(ctx context.Context, ranchID string) ([]cows.RanchTag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cow_id, label, number
		FROM cow_tags
		WHERE ranch_id = $1
	`, ranchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cows.RanchTag, 0)
	for rows.Next() {
		var t cows.RanchTag
		var label string
		if err := rows.Scan(&t.CowID, &label, &t.Number); err != nil {
			return nil, err
		}
		t.Label = cows.TagLabel(label)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *CowsRepo) AddNote(ctx context.Context, cowID string, n cows.Note) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cow_notes (id, cow_id, text, created_at)
		VALUES ($1,$2,$3,$4)
	`, n.ID, cowID, n.Text, n.CreatedAt); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE cows SET updated_at = $2 WHERE id = $1`, cowID, n.CreatedAt)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return cows.ErrNotFound
	}
	return tx.Commit()
}

func (r *CowsRepo) AddMedicalIssue(ctx context.Context, cowID string, m cows.MedicalIssue) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cow_medical_issues (id, cow_id, label, created_at)
		VALUES ($1,$2,$3,$4)
	`, m.ID, cowID, m.Label, m.CreatedAt); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE cows SET updated_at = $2 WHERE id = $1`, cowID, m.CreatedAt)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return cows.ErrNotFound
	}
	return tx.Commit()
}

func (r *CowsRepo) SearchMedical(ctx context.Context, ranchID, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT mi.cow_id
		FROM cow_medical_issues mi
		JOIN cows c ON c.id = mi.cow_id
		WHERE c.ranch_id = $1 AND mi.label ILIKE '%' || $2 || '%'
		ORDER BY mi.cow_id
	`, ranchID, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *CowsRepo) ListBreedPresets(ctx context.Context, ranchID string) ([]string, error) {
	return r.listPresets(ctx, "breed_presets", ranchID)
}

func (r *CowsRepo) AddBreedPreset(ctx context.Context, ranchID, name string) error {
	return r.addPreset(ctx, "breed_presets", ranchID, name)
}

func (r *CowsRepo) ListMedicalPresets(ctx context.Context, ranchID string) ([]string, error) {
	return r.listPresets(ctx, "medical_presets", ranchID)
}

func (r *CowsRepo) AddMedicalPreset(ctx context.Context, ranchID, label string) error {
	return r.addPreset(ctx, "medical_presets", ranchID, label)
}

func (r *CowsRepo) listPresets(ctx context.Context, table, ranchID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM `+table+` WHERE ranch_id = $1 ORDER BY name`, ranchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *CowsRepo) addPreset(ctx context.Context, table, ranchID, name string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO `+table+` (ranch_id, name) VALUES ($1, $2)
		ON CONFLICT (ranch_id, name) DO NOTHING
	`, ranchID, name)
	return err
}

// tagOwner busca qué vaca tiene hoy el número; "" si nadie (race fugaz).
func (r *CowsRepo) tagOwner(ctx context.Context, ranchID, number string) string {
	var owner string
	_ = r.db.QueryRowContext(ctx,
		`SELECT cow_id FROM cow_tags WHERE ranch_id = $1 AND number = $2`,
		ranchID, number).Scan(&owner)
	return owner
}

func (r *CowsRepo) loadChildren(ctx context.Context, c *cows.Cow) error {
	tagRows, err := r.db.QueryContext(ctx, `
		SELECT id, label, number
		FROM cow_tags
		WHERE cow_id = $1
		ORDER BY id
	`, c.ID)
	if err != nil {
		return err
	}
	defer tagRows.Close()

	c.Tags = make([]cows.Tag, 0)
	for tagRows.Next() {
		var t cows.Tag
		var label string
		if err := tagRows.Scan(&t.ID, &label, &t.Number); err != nil {
			return err
		}
		t.CowID = c.ID
		t.Label = cows.TagLabel(label)
		c.Tags = append(c.Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return err
	}

	noteRows, err := r.db.QueryContext(ctx, `
		SELECT id, text, created_at
		FROM cow_notes
		WHERE cow_id = $1
		ORDER BY created_at
	`, c.ID)
	if err != nil {
		return err
	}
	defer noteRows.Close()

	c.Notes = make([]cows.Note, 0)
	for noteRows.Next() {
		var n cows.Note
		if err := noteRows.Scan(&n.ID, &n.Text, &n.CreatedAt); err != nil {
			return err
		}
		n.CowID = c.ID
		c.Notes = append(c.Notes, n)
	}
	if err := noteRows.Err(); err != nil {
		return err
	}

	medRows, err := r.db.QueryContext(ctx, `
		SELECT id, label, created_at
		FROM cow_medical_issues
		WHERE cow_id = $1
		ORDER BY created_at
	`, c.ID)
	if err != nil {
		return err
	}
	defer medRows.Close()

	c.MedicalIssues = make([]cows.MedicalIssue, 0)
	for medRows.Next() {
		var m cows.MedicalIssue
		if err := medRows.Scan(&m.ID, &m.Label, &m.CreatedAt); err != nil {
			return err
		}
		m.CowID = c.ID
		c.MedicalIssues = append(c.MedicalIssues, m)
	}
	return medRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCow(row rowScanner) (cows.Cow, error) {
	var c cows.Cow
	var status string
	var pastureID sql.NullString
	var photos sql.NullString

	if err := row.Scan(
		&c.ID,
		&c.RanchID,
		&c.Name,
		&c.Description,
		&status,
		&c.Breed,
		&c.BirthMonth,
		&c.BirthYear,
		&pastureID,
		&photos,
		&c.MotherTag,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return cows.Cow{}, cows.ErrNotFound
		}
		return cows.Cow{}, err
	}

	c.Status = cows.Status(status)
	if pastureID.Valid {
		c.PastureID = pastureID.String
	}
	c.Photos = decodePhotos(photos)
	return c, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// photos va como json TEXT: lista corta de URLs, no amerita tabla propia.
func encodePhotos(photos []string) string {
	if len(photos) == 0 {
		return "[]"
	}
	b, err := json.Marshal(photos)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodePhotos(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
