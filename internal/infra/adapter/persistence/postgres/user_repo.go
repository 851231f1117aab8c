// Package postgres reads user data straight from the Supabase Postgres
// database. It is used for the read-only user endpoints when
// SUPABASE_DB_URL is set, bypassing PostgREST.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"community-gateway/internal/domain/entity"
	"community-gateway/internal/repository"
)

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) repository.UserRepository {
	return &UserRepo{db: db}
}

func scanPublic(sc interface{ Scan(...any) error }) (entity.PublicProfile, error) {
	var (
		p         entity.PublicProfile
		fullName  sql.NullString
		avatarURL sql.NullString
		claims    []byte
		bio       []byte
	)
	if err := sc.Scan(&p.ID, &fullName, &avatarURL, &claims, &bio); err != nil {
		return p, err
	}
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	if avatarURL.Valid {
		p.AvatarURL = &avatarURL.String
	}
	p.Claims = json.RawMessage(claims)
	p.Bio = json.RawMessage(bio)
	return p, nil
}

// noRows reports a missing user the way PostgREST does for a single-row
// read, so both repositories surface the same message.
func noRows(id string) error {
	return &entity.StoreError{
		Message: entity.NoRowsMessage,
		Err:     fmt.Errorf("user %s: %w", id, entity.ErrNotFound),
	}
}

func (repo *UserRepo) GetPublic(ctx context.Context, id string) (*entity.PublicProfile, error) {
	const query = `
SELECT id, full_name, avatar_url, claims, bio
FROM public.users
WHERE id = $1
LIMIT 1`
	p, err := scanPublic(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, noRows(id)
	}
	if err != nil {
		return nil, fmt.Errorf("GetPublic: %w", err)
	}
	return &p, nil
}

func (repo *UserRepo) ListPublic(ctx context.Context, search string, limit int) ([]entity.PublicProfile, error) {
	const query = `
SELECT id, full_name, avatar_url, claims, bio
FROM public.users
WHERE deactivated = false
  AND ($1 = '' OR full_name ILIKE '%' || $1 || '%' OR bio::text ILIKE '%' || $1 || '%')
ORDER BY created_at DESC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, search, limit)
	if err != nil {
		return nil, fmt.Errorf("ListPublic: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]entity.PublicProfile, 0)
	for rows.Next() {
		p, err := scanPublic(rows)
		if err != nil {
			return nil, fmt.Errorf("ListPublic: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListPublic: %w", err)
	}
	return out, nil
}

func (repo *UserRepo) GetSelf(ctx context.Context, id string) (json.RawMessage, error) {
	const query = `
SELECT row_to_json(u)
FROM public.users u
WHERE u.id = $1`
	var raw []byte
	err := repo.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, noRows(id)
	}
	if err != nil {
		return nil, fmt.Errorf("GetSelf: %w", err)
	}
	return json.RawMessage(raw), nil
}
