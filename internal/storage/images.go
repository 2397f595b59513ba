package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/freebook/backend/internal/domain"
)

const (
	imagePrefix = "images/"
	ownerMeta   = "Owner"
)

var ErrInvalidImageID = fmt.Errorf("invalid image id: %w", domain.ErrInvalidInput)

// ClientMinio is the subset of *minio.Client the image store uses.
type ClientMinio interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// Image identifies a stored object. ID is what clients send back to delete it.
type Image struct {
	ID  string `json:"imgId"`
	URL string `json:"imgUrl"`
}

type ImageStore struct {
	client    ClientMinio
	bucket    string
	publicURL string
}

// NewMinioImageStore connects to an S3 compatible endpoint. When publicURL is
// empty, image urls are built from the endpoint.
func NewMinioImageStore(endpoint, accessKey, secretKey, bucket, publicURL string, useSSL bool) (*ImageStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	if publicURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + endpoint
	}
	return NewImageStore(client, bucket, publicURL), nil
}

func NewImageStore(client ClientMinio, bucket, publicURL string) *ImageStore {
	return &ImageStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *ImageStore) EnsureBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload stores r under a fresh id keeping the extension of filename. owner
// is kept as object metadata so later deletes can be checked against it.
func (s *ImageStore) Upload(ctx context.Context, owner string, r io.Reader, size int64, filename, contentType string) (Image, error) {
	id := uuid.NewString() + strings.ToLower(path.Ext(filename))

	_, err := s.client.PutObject(ctx, s.bucket, imagePrefix+id, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{ownerMeta: owner},
	})
	if err != nil {
		return Image{}, fmt.Errorf("put object: %w", err)
	}
	return Image{ID: id, URL: s.URL(id)}, nil
}

// Owner returns the profile id the image was uploaded by.
func (s *ImageStore) Owner(ctx context.Context, id string) (string, error) {
	if !validID(id) {
		return "", ErrInvalidImageID
	}
	info, err := s.client.StatObject(ctx, s.bucket, imagePrefix+id, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", fmt.Errorf("image %s: %w", id, domain.ErrNotFound)
		}
		return "", fmt.Errorf("stat object: %w", err)
	}
	for k, v := range info.UserMetadata {
		if strings.EqualFold(k, ownerMeta) {
			return v, nil
		}
	}
	return "", nil
}

func (s *ImageStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrInvalidImageID
	}
	if err := s.client.RemoveObject(ctx, s.bucket, imagePrefix+id, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (s *ImageStore) URL(id string) string {
	return s.publicURL + "/" + s.bucket + "/" + imagePrefix + id
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}
