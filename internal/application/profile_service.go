package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/satriawb/postboard/internal/domain/entity"
	repo "github.com/satriawb/postboard/internal/domain/repository"
	"github.com/satriawb/postboard/pkg/helpers"
)

// ProfileService reads and mutates the caller's own user record. Avatars go
// to Google Cloud Storage; post images deliberately do not (they follow the
// local relative-path contract instead).
type ProfileService struct {
	Users     repo.UserRepository
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewProfileService(users repo.UserRepository, gcs *storage.Client, bucket string, logger *logrus.Logger) *ProfileService {
	return &ProfileService{Users: users, GCS: gcs, GCSBucket: bucket, Logger: logger}
}

func (s *ProfileService) Get(userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

type UpdateProfileInput struct {
	Name string
}

func (s *ProfileService) Update(userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Users.GetByID(userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if err := s.Users.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

// UploadAvatar stores the image in GCS and records its public URL.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	u, err := s.Users.GetByID(userID)
	if err != nil || u == nil {
		return "", ErrUserNotFound
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}

	u.AvatarURL = url
	if err := s.Users.Update(u); err != nil {
		return "", err
	}
	return url, nil
}
