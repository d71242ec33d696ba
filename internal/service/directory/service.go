package directory

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-dating/internal/app"
	"github.com/oggyb/muzz-dating/internal/cache"
	"github.com/oggyb/muzz-dating/internal/db"
	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/model"
	"github.com/oggyb/muzz-dating/internal/repository"
)

// FallbackDisplayName is used when neither a display name nor an email is known.
const FallbackDisplayName = "Unknown"

// Service is the User Directory: profile records keyed by the auth subject id.
// Reads go through the Redis profile cache; every mutation invalidates it.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
}

// NewService creates the directory with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
	}
}

// UpsertIfAbsent creates the record iff no record exists for id.
//
// Behavior:
//   - A second call for the same id is a no-op; the first display name stays.
//   - Empty displayName falls back to email, then to "Unknown".
//   - The image field is written empty on creation.
//
// Returns true when the record was created by this call.
func (s *Service) UpsertIfAbsent(ctx context.Context, id, email, displayName string) (bool, error) {
	s.appCtx.Logger.Debug("UpsertIfAbsent called", "user", id)

	if strings.TrimSpace(id) == "" {
		return false, svcErr.Validation("user_id", "user id must not be empty")
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = strings.TrimSpace(email)
	}
	if name == "" {
		name = FallbackDisplayName
	}
	empty := ""

	created, err := s.users.CreateIfAbsent(ctx, db.User{
		ID:               id,
		Email:            email,
		DisplayName:      name,
		ProfileImageData: &empty,
	})
	if err != nil {
		s.appCtx.Logger.Error("CreateIfAbsent failed", "user", id, "err", err)
		return false, svcErr.Remote("create user", err)
	}
	return created, nil
}

// Get returns the user or a NotFoundError. Cache-first:
//  1. Attempts the Redis profile cache (users:<id>).
//  2. Falls back to the DB and fills the cache, unless a mutation
//     invalidated the entry while the DB read was in flight.
//
// Entries live for Profile.CacheTTL from the fill; hits do not extend them.
func (s *Service) Get(ctx context.Context, id string) (model.User, error) {
	s.appCtx.Logger.Debug("GetUser called", "user", id)

	key := s.appCtx.RedisCache.KeyForUser(id)
	var row db.User
	if err := s.appCtx.RedisCache.GetJSON(ctx, key, &row); err == nil {
		return model.ParseUser(row)
	} else if !errors.Is(err, cache.ErrMiss) {
		s.appCtx.Logger.Warn("profile cache read failed", "user", id, "err", err)
	}

	// read before the DB so a concurrent invalidation voids the fill
	version, verErr := s.appCtx.RedisCache.Version(ctx, key)

	row, err := s.users.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, svcErr.NotFound("user", id)
	}
	if err != nil {
		s.appCtx.Logger.Error("Get user failed", "user", id, "err", err)
		return model.User{}, svcErr.Remote("get user", err)
	}

	user, err := model.ParseUser(row)
	if err != nil {
		s.appCtx.Logger.Warn("discarded record", "kind", "user", "id", id, "reason", err)
		return model.User{}, err
	}
	if verErr == nil {
		if _, err := s.appCtx.RedisCache.FillJSON(ctx, key, version, row, s.appCtx.Config.Profile.CacheTTL); err != nil {
			s.appCtx.Logger.Warn("profile cache fill failed", "user", id, "err", err)
		}
	}
	return user, nil
}

// UpdateDisplayName overwrites the display name with the trimmed name.
// Empty names are a ValidationError; unknown users a NotFoundError.
func (s *Service) UpdateDisplayName(ctx context.Context, id, name string) error {
	s.appCtx.Logger.Debug("UpdateDisplayName called", "user", id)

	name = strings.TrimSpace(name)
	if name == "" {
		return svcErr.Validation("display_name", "display name must not be empty")
	}
	if err := s.mustExist(ctx, id); err != nil {
		return err
	}
	if err := s.users.UpdateDisplayName(ctx, id, name); err != nil {
		s.appCtx.Logger.Error("UpdateDisplayName failed", "user", id, "err", err)
		return svcErr.Remote("update display name", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// UpdateProfileImage stores image as base64 text. Size and format are not checked.
func (s *Service) UpdateProfileImage(ctx context.Context, id string, image []byte) error {
	s.appCtx.Logger.Debug("UpdateProfileImage called", "user", id, "bytes", len(image))

	if err := s.mustExist(ctx, id); err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(image)
	if err := s.users.UpdateProfileImage(ctx, id, encoded); err != nil {
		s.appCtx.Logger.Error("UpdateProfileImage failed", "user", id, "err", err)
		return svcErr.Remote("update profile image", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// UpdateProfile applies the profile edit screen: display name first, then the
// image when one is given. A failed image write does not undo the name.
func (s *Service) UpdateProfile(ctx context.Context, id string, name *string, image []byte) (model.User, error) {
	if name != nil {
		if err := s.UpdateDisplayName(ctx, id, *name); err != nil {
			return model.User{}, err
		}
	}
	if len(image) > 0 {
		if err := s.UpdateProfileImage(ctx, id, image); err != nil {
			return model.User{}, err
		}
	}
	return s.Get(ctx, id)
}

// ListCandidates returns every other user for the swipe deck.
// Rows that cannot be parsed are returned alongside, not dropped.
func (s *Service) ListCandidates(ctx context.Context, id string) ([]model.User, []*model.ParseError, error) {
	s.appCtx.Logger.Debug("ListCandidates called", "user", id)

	rows, err := s.users.ListExcept(ctx, id)
	if err != nil {
		s.appCtx.Logger.Error("ListExcept failed", "user", id, "err", err)
		return nil, nil, svcErr.Remote("list users", err)
	}
	users, discarded := model.ParseAll(rows, model.ParseUser)
	for _, d := range discarded {
		s.appCtx.Logger.Warn("discarded record", "kind", d.Kind, "id", d.ID, "reason", d.Reason)
	}
	return users, discarded, nil
}

func (s *Service) mustExist(ctx context.Context, id string) error {
	_, err := s.users.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound("user", id)
	}
	if err != nil {
		return svcErr.Remote("get user", err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if err := s.appCtx.RedisCache.Invalidate(ctx, s.appCtx.RedisCache.KeyForUser(id)); err != nil {
		s.appCtx.Logger.Warn("profile cache invalidation failed", "user", id, "err", err)
	}
}
