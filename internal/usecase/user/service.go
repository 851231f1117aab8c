package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"community-gateway/internal/domain/entity"
	"community-gateway/internal/repository"
)

// ListLimit caps the public user listing.
const ListLimit = 100

// Identity is the session user a /me call acts for.
type Identity struct {
	ID           string
	Email        string
	UserMetadata map[string]any
}

func (i Identity) metaString(key string) string {
	s, _ := i.UserMetadata[key].(string)
	return s
}

// Service serves /api/users. Reads go through Users, which may be the
// direct Postgres repository; writes always use Profiles and Admin.
type Service struct {
	Users    repository.UserRepository
	Profiles repository.ProfileRepository
	Admin    repository.AccountAdmin
}

// GetPublic returns the five public columns of one user.
func (s *Service) GetPublic(ctx context.Context, id string) (*entity.PublicProfile, error) {
	p, err := s.Users.GetPublic(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return p, nil
}

// ListPublic lists active users matching q against full_name and bio.
func (s *Service) ListPublic(ctx context.Context, q string) ([]entity.PublicProfile, error) {
	users, err := s.Users.ListPublic(ctx, entity.SanitizeSearch(q), ListLimit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Me returns the caller's full users row.
func (s *Service) Me(ctx context.Context, who Identity) (json.RawMessage, error) {
	if who.ID == "" {
		return nil, ErrNoSession
	}
	row, err := s.Users.GetSelf(ctx, who.ID)
	if err != nil {
		return nil, fmt.Errorf("get self: %w", err)
	}
	return row, nil
}

// UpdateMe applies patch. "name" goes to the auth user's full_name, bio and
// deactivated go to the profile, anything else is entity.ErrInvalidParameter.
// Nothing is written when the patch is invalid.
func (s *Service) UpdateMe(ctx context.Context, who Identity, patch map[string]any) error {
	if who.ID == "" {
		return ErrNoSession
	}
	name, columns, err := entity.SplitProfilePatch(patch)
	if err != nil {
		return err
	}

	if name != "" {
		if err := s.Admin.SetFullName(ctx, who.ID, name); err != nil {
			return fmt.Errorf("update full name: %w", err)
		}
	}
	if err := s.Profiles.Update(ctx, who.ID, columns); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// SyncProfile keeps the signed-in user's profile in step with the page
// they opened. A deactivated profile is reactivated and a route locale that
// differs from the stored one is saved. It returns the profile locale after
// the sync, "" when the user has no profile or no stored locale.
func (s *Service) SyncProfile(ctx context.Context, userID, routeLocale string) (string, error) {
	if userID == "" {
		return "", ErrNoSession
	}
	p, err := s.Profiles.Get(ctx, userID)
	if errors.Is(err, entity.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get profile: %w", err)
	}

	stored := ""
	if p.Locale != nil {
		stored = *p.Locale
	}
	columns := map[string]any{}
	if p.Deactivated {
		columns["deactivated"] = false
	}
	if routeLocale != "" && routeLocale != stored {
		columns["locale"] = routeLocale
	}
	if len(columns) == 0 {
		return stored, nil
	}

	if err := s.Profiles.Update(ctx, userID, columns); err != nil {
		return stored, fmt.Errorf("sync profile: %w", err)
	}
	if p.Deactivated {
		slog.Info("user reactivated", slog.String("user_id", userID))
	}
	if l, ok := columns["locale"].(string); ok {
		stored = l
	}
	return stored, nil
}

// DeleteMe archives the profile into deleted_users and removes the auth
// user. A failed archive is logged and does not stop the deletion.
func (s *Service) DeleteMe(ctx context.Context, who Identity) error {
	if who.ID == "" {
		return ErrNoSession
	}

	exists, err := s.Profiles.Exists(ctx, who.ID)
	if err != nil {
		slog.Warn("profile lookup before delete failed",
			slog.String("user_id", who.ID),
			slog.String("error", err.Error()))
	}
	if exists {
		archived := entity.DeletedUser{
			ID:        who.ID,
			Email:     who.Email,
			FullName:  who.metaString("full_name"),
			AvatarURL: who.metaString("avatar_url"),
		}
		if err := s.Profiles.Archive(ctx, archived); err != nil {
			slog.Error("archive deleted user failed",
				slog.String("user_id", who.ID),
				slog.String("error", err.Error()))
		}
	}

	if err := s.Admin.DeleteUser(ctx, who.ID); err != nil {
		return fmt.Errorf("delete auth user: %w", err)
	}
	slog.Info("user deleted", slog.String("user_id", who.ID))
	return nil
}
