package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nasihat/dashboard-api/internal/domain/entity"
	repo "github.com/nasihat/dashboard-api/internal/domain/repository"
	"github.com/nasihat/dashboard-api/pkg/helpers"
)

var ErrUserNotFound = errors.New("user not found")

// ProfileService serves the my-profile page: read and partial update of
// the current user's record, plus avatar upload to GCS.
type ProfileService struct {
	Repo      repo.UserRepository
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewProfileService(repo repo.UserRepository, gcs *storage.Client, gcsBucket string, logger *logrus.Logger) *ProfileService {
	return &ProfileService{Repo: repo, GCS: gcs, GCSBucket: gcsBucket, Logger: logger}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	sanitized := u.Sanitized()
	return &sanitized, nil
}

type UpdateProfileInput struct {
	Name   string
	Avatar string
}

// Update applies the provided fields only; empty strings leave the stored
// value untouched. Email and provider are immutable.
func (s *ProfileService) Update(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	upd := repo.UserUpdate{}
	if in.Name != "" {
		upd.Name = &in.Name
	}
	if in.Avatar != "" {
		upd.Avatar = &in.Avatar
	}
	u, err := s.Repo.Update(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	sanitized := u.Sanitized()
	return &sanitized, nil
}

// UploadAvatar stores the image in GCS under avatars/<uid>/ and records the
// public URL on the profile.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRepository, err)
	}
	if u == nil {
		return "", ErrUserNotFound
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}

	if _, err := s.Repo.Update(ctx, userID, repo.UserUpdate{Avatar: &url}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRepository, err)
	}
	return url, nil
}
