package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Uploader stores image bytes and hands back a public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// PropertyImageKey builds users/<owner>/properties/<property>/images/<unique><ext>.
func PropertyImageKey(owner, propertySlug, filename string) string {
	return path.Join("users", slugOr(owner, "user"), "properties", slugOr(propertySlug, "property"),
		"images", uniqueName(filename))
}

// AvatarKey builds users/<owner>/avatar/<unique><ext>.
func AvatarKey(owner, filename string) string {
	return path.Join("users", slugOr(owner, "user"), "avatar", uniqueName(filename))
}

func uniqueName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.New().String(), ext)
}

func slugOr(s, fallback string) string {
	if v := slug.Make(s); v != "" {
		return v
	}
	return fallback
}

// S3 uploads to an S3 compatible bucket. With an account ID set it targets
// Cloudflare R2.
type S3 struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

type S3Config struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	opts := []func(*config.LoadOptions) error{}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AccountID != "" {
			o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
			o.UsePathStyle = true
			o.Region = "auto"
		}
	})

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
	}

	return &S3{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (s *S3) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload file to bucket: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *S3) Delete(ctx context.Context, url string) error {
	key := strings.TrimPrefix(strings.TrimPrefix(url, s.baseURL), "/")
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("could not delete file from bucket: %w", err)
	}
	return nil
}

// Local writes uploads below Dir and serves them from URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
}

func (l *Local) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	dest := filepath.Join(l.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("could not create upload dir: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("could not save file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("could not save file: %w", err)
	}
	return strings.TrimSuffix(l.URLPrefix, "/") + "/" + key, nil
}

func (l *Local) Delete(ctx context.Context, url string) error {
	key := strings.TrimPrefix(strings.TrimPrefix(url, strings.TrimSuffix(l.URLPrefix, "/")), "/")
	if key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("refusing to delete %q", url)
	}
	if err := os.Remove(filepath.Join(l.Dir, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
