package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/infra"
)

// ObjectPutter is the slice of the S3 API the uploader needs. Tests stub it.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader persists generated image payloads to S3-compatible object storage
// and returns a stable public URL for each.
type Uploader struct {
	client        ObjectPutter
	bucket        string
	publicBaseURL string
}

// NewUploader builds an Uploader from service configuration. A custom
// endpoint makes it work against MinIO and friends.
func NewUploader(ctx context.Context, cfg *infra.Config) (*Uploader, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: publicBaseURL(cfg),
	}, nil
}

// NewUploaderWithClient wires an Uploader around an existing client. Used by tests.
func NewUploaderWithClient(client ObjectPutter, bucket, publicBase string) *Uploader {
	return &Uploader{client: client, bucket: bucket, publicBaseURL: strings.TrimRight(publicBase, "/")}
}

// Upload stores the payload under a fresh key and returns its public URL.
// The payload is staged through a scratch file that is removed on every exit
// path; only a crash mid-upload can leak it, which is acceptable for an
// ephemeral temp file.
func (u *Uploader) Upload(ctx context.Context, payload []byte) (string, error) {
	tmp, err := os.CreateTemp("", "thumbnail-*.png")
	if err != nil {
		return "", fmt.Errorf("%w: create scratch file: %v", domain.ErrUploadFailed, err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(payload); err != nil {
		return "", fmt.Errorf("%w: write scratch file: %v", domain.ErrUploadFailed, err)
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return "", fmt.Errorf("%w: rewind scratch file: %v", domain.ErrUploadFailed, err)
	}

	key := fmt.Sprintf("thumbnails/%s.png", uuid.NewString())
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        tmp,
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object: %v", domain.ErrUploadFailed, err)
	}

	return u.publicBaseURL + "/" + key, nil
}

func publicBaseURL(cfg *infra.Config) string {
	if cfg.S3PublicBaseURL != "" {
		return strings.TrimRight(cfg.S3PublicBaseURL, "/")
	}
	if cfg.S3Endpoint != "" {
		return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
}
