// Package blobstore provides the local-filesystem/S3 byte-fetching
// abstraction that areader/htsbam uses to locate BAM/BAI bytes.
// Unlike a chunked dataset store, this one only ever fetches whole
// objects by path/key — there is no chunked dataset format here,
// since this module never persists anything.
package blobstore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Storage fetches and probes for raw object bytes, from local disk or S3.
type Storage interface {
	ReadFile(path string) ([]byte, error)
	Exists(path string) (bool, error)
	// Describe returns a human-readable location string for logging.
	Describe() string
}

// Open returns the appropriate backend for path: S3 if path has the
// s3:// scheme, local filesystem otherwise.
func Open(ctx context.Context, path string) (Storage, error) {
	if strings.HasPrefix(path, "s3://") {
		return newS3Storage(ctx, path)
	}
	return localStorage{}, nil
}

type localStorage struct{}

func (localStorage) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (localStorage) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (localStorage) Describe() string { return "local filesystem" }

type s3Storage struct {
	bucket     string
	client     *s3.Client
	downloader *manager.Downloader
	ctx        context.Context
}

func newS3Storage(ctx context.Context, path string) (*s3Storage, error) {
	rest := strings.TrimPrefix(path, "s3://")
	bucket := rest
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		bucket = rest[:idx]
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &s3Storage{
		bucket:     bucket,
		client:     client,
		downloader: manager.NewDownloader(client),
		ctx:        ctx,
	}, nil
}

// key strips the s3://bucket/ prefix from a full s3:// URL, or treats
// path as already relative to the bucket.
func (s *s3Storage) key(path string) string {
	if strings.HasPrefix(path, "s3://") {
		rest := strings.TrimPrefix(path, "s3://")
		rest = strings.TrimPrefix(rest, s.bucket+"/")
		return rest
	}
	return strings.TrimPrefix(path, "/")
}

func (s *s3Storage) ReadFile(path string) ([]byte, error) {
	key := s.key(path)
	buf := manager.NewWriteAtBuffer([]byte{})
	_, err := s.downloader.Download(s.ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}
	return buf.Bytes(), nil
}

func (s *s3Storage) Exists(path string) (bool, error) {
	key := s.key(path)
	_, err := s.client.HeadObject(s.ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "404") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *s3Storage) Describe() string { return fmt.Sprintf("s3://%s", s.bucket) }
