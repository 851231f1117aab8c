// Package postgrest implements the user repositories over the
// service-role Supabase client.
package postgrest

import (
	"context"
	"encoding/json"
	"fmt"

	"community-gateway/internal/domain/entity"
	"community-gateway/internal/infra/supabase"
	"community-gateway/internal/repository"
)

const (
	tableUsers        = "users"
	tableProfiles     = "profiles"
	tableDeletedUsers = "deleted_users"
)

// Backend yields a service-role client per call.
type Backend interface {
	ServiceRole() *supabase.Client
}

type UserRepo struct{ b Backend }

func NewUserRepo(b Backend) repository.UserRepository {
	return &UserRepo{b: b}
}

func (repo *UserRepo) GetPublic(ctx context.Context, id string) (*entity.PublicProfile, error) {
	var p entity.PublicProfile
	err := repo.b.ServiceRole().From(tableUsers).
		Select(entity.PublicProfileColumns).
		Eq("id", id).
		Single(ctx, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (repo *UserRepo) ListPublic(ctx context.Context, search string, limit int) ([]entity.PublicProfile, error) {
	q := repo.b.ServiceRole().From(tableUsers).
		Select(entity.PublicProfileColumns).
		Eq("deactivated", "false").
		Order("created_at", false).
		Limit(limit)
	if search != "" {
		q = q.Or(fmt.Sprintf("full_name.ilike.%%%s%%,bio.ilike.%%%s%%", search, search))
	}
	res, err := q.Execute(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.PublicProfile, 0)
	if len(res.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(res.Data, &out); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return out, nil
}

func (repo *UserRepo) GetSelf(ctx context.Context, id string) (json.RawMessage, error) {
	var row json.RawMessage
	if err := repo.b.ServiceRole().From(tableUsers).Select("*").Eq("id", id).Single(ctx, &row); err != nil {
		return nil, err
	}
	return row, nil
}

type ProfileRepo struct{ b Backend }

func NewProfileRepo(b Backend) repository.ProfileRepository {
	return &ProfileRepo{b: b}
}

func (repo *ProfileRepo) Exists(ctx context.Context, id string) (bool, error) {
	res, err := repo.b.ServiceRole().From(tableProfiles).Select("id").Eq("id", id).Limit(1).Execute(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.Rows()
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (repo *ProfileRepo) Get(ctx context.Context, id string) (*entity.ProfileState, error) {
	res, err := repo.b.ServiceRole().From(tableProfiles).
		Select("id, locale, deactivated").
		Eq("id", id).
		Limit(1).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	var rows []entity.ProfileState
	if len(res.Data) > 0 {
		if err := json.Unmarshal(res.Data, &rows); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile %s: %w", id, entity.ErrNotFound)
	}
	return &rows[0], nil
}

func (repo *ProfileRepo) Update(ctx context.Context, id string, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	_, err := repo.b.ServiceRole().From(tableProfiles).Eq("id", id).Update(ctx, columns)
	return err
}

func (repo *ProfileRepo) Archive(ctx context.Context, u entity.DeletedUser) error {
	_, err := repo.b.ServiceRole().From(tableDeletedUsers).Insert(ctx, u)
	return err
}

// AccountAdmin drives the GoTrue admin API.
type AccountAdmin struct{ b Backend }

func NewAccountAdmin(b Backend) repository.AccountAdmin {
	return &AccountAdmin{b: b}
}

func (a *AccountAdmin) SetFullName(ctx context.Context, id, name string) error {
	_, err := a.b.ServiceRole().Admin().UpdateUserByID(ctx, id, supabase.UserAttributes{
		UserMetadata: map[string]any{"full_name": name},
	})
	return err
}

func (a *AccountAdmin) DeleteUser(ctx context.Context, id string) error {
	return a.b.ServiceRole().Admin().DeleteUser(ctx, id)
}
