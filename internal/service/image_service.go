package service

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/observability"
	"github.com/freebook/backend/internal/repository"
	"github.com/freebook/backend/internal/storage"
)

// ImageService uploads images on behalf of a profile and only lets that
// profile delete them.
type ImageService struct {
	actors actors
	store  ImageStore
}

func NewImageService(accounts repository.AccountRepository, profiles repository.ProfileRepository, store ImageStore) *ImageService {
	return &ImageService{
		actors: actors{accounts: accounts, profiles: profiles},
		store:  store,
	}
}

func (s *ImageService) Upload(ctx context.Context, subject string, r io.Reader, size int64, filename, contentType string) (storage.Image, error) {
	actor, err := s.actors.resolve(ctx, subject)
	if err != nil {
		return storage.Image{}, err
	}
	img, err := s.store.Upload(ctx, actor.ID, r, size, filename, contentType)
	if err != nil {
		return storage.Image{}, err
	}
	observability.GetLogger(ctx).Info("image_uploaded", zap.String("img_id", img.ID), zap.String("owner", actor.ID))
	return img, nil
}

// Delete removes an image uploaded by the caller.
func (s *ImageService) Delete(ctx context.Context, subject, id string) error {
	actor, err := s.actors.resolve(ctx, subject)
	if err != nil {
		return err
	}
	owner, err := s.store.Owner(ctx, id)
	if err != nil {
		return err
	}
	if owner != actor.ID {
		return domain.ErrForbidden
	}
	return s.store.Delete(ctx, id)
}
