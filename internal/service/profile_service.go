package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/media"
	"github.com/fjod/gamestore/internal/repository"
	"github.com/google/uuid"
)

const maxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// BlobStore is the object storage the profile images live in.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}

// Profile is a user as shown to clients.
type Profile struct {
	*domain.User
	AvatarURL string `json:"avatar_url,omitempty"`
}

type ProfileService struct {
	users        repository.UserRepository
	blobs        BlobStore
	effects      *SideEffects
	cdnCloudName string
	now          func() time.Time
}

func NewProfileService(users repository.UserRepository, blobs BlobStore, effects *SideEffects, cdnCloudName string) *ProfileService {
	return &ProfileService{
		users:        users,
		blobs:        blobs,
		effects:      effects,
		cdnCloudName: cdnCloudName,
		now:          time.Now,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get user: %v", ErrRemote, err)
	}
	return s.profile(user), nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID, username, displayName, bio string) (*Profile, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 30 {
		return nil, fmt.Errorf("%w: username must be 3 to 30 characters", ErrInvalidInput)
	}
	if len(bio) > 500 {
		return nil, fmt.Errorf("%w: bio is longer than 500 characters", ErrInvalidInput)
	}

	err := s.users.UpdateProfile(ctx, userID, username, strings.TrimSpace(displayName), bio, s.now())
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: update profile: %v", ErrRemote, err)
	}
	return s.GetProfile(ctx, userID)
}

// UploadProfileImage stores the new image under a fresh name, points the
// profile at it and then drops the previous object.
func (s *ProfileService) UploadProfileImage(ctx context.Context, userID string, data []byte, contentType string) (*Profile, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrInvalidInput, contentType)
	}
	if len(data) == 0 || len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: image must be between 1 byte and 5 MiB", ErrInvalidInput)
	}

	current, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	previousPath := current.ProfileImagePath

	objectPath := fmt.Sprintf("profiles/%s/%s.%s", userID, uuid.NewString(), ext)
	if err := s.blobs.Upload(ctx, objectPath, data, contentType); err != nil {
		return nil, fmt.Errorf("%w: upload image: %v", ErrRemote, err)
	}

	url := s.blobs.PublicURL(objectPath)
	if err := s.users.UpdateProfileImage(ctx, userID, url, objectPath, s.now()); err != nil {
		s.effects.DeleteBlob(ctx, objectPath)
		return nil, fmt.Errorf("%w: save image url: %v", ErrRemote, err)
	}

	if previousPath != "" && previousPath != objectPath {
		s.effects.DeleteBlob(ctx, previousPath)
	}

	current.ProfileImageURL = url
	current.ProfileImagePath = objectPath
	return s.profile(current.User), nil
}

func (s *ProfileService) profile(u *domain.User) *Profile {
	p := &Profile{User: u}
	if s.cdnCloudName != "" && u.ProfileImagePath != "" {
		publicID := strings.TrimSuffix(u.ProfileImagePath, path.Ext(u.ProfileImagePath))
		p.AvatarURL = media.AvatarURL(s.cdnCloudName, publicID)
	}
	return p
}
