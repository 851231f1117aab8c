// Package repository declares the storage ports the use cases depend on.
package repository

import (
	"context"
	"encoding/json"

	"community-gateway/internal/domain/entity"
)

// UserRepository serves the read side of the user API.
type UserRepository interface {
	// GetPublic returns the public columns of one user.
	GetPublic(ctx context.Context, id string) (*entity.PublicProfile, error)
	// ListPublic returns active users, newest first. search is already
	// sanitized; "" lists everyone.
	ListPublic(ctx context.Context, search string, limit int) ([]entity.PublicProfile, error)
	// GetSelf returns the full users row for the owner.
	GetSelf(ctx context.Context, id string) (json.RawMessage, error)
}

// ProfileRepository reads and writes profile rows.
type ProfileRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	// Get returns the locale and deactivation state of a profile, or
	// entity.ErrNotFound.
	Get(ctx context.Context, id string) (*entity.ProfileState, error)
	Update(ctx context.Context, id string, columns map[string]any) error
	Archive(ctx context.Context, u entity.DeletedUser) error
}

// AccountAdmin changes auth users.
type AccountAdmin interface {
	SetFullName(ctx context.Context, id, name string) error
	DeleteUser(ctx context.Context, id string) error
}
