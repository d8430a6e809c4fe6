package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rs/zerolog/log"
)

// MediaHost stores an uploaded file and returns the URL it is publicly served from.
type MediaHost interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// ObjectPutter is the part of the S3 client the media host uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3MediaConfig struct {
	Bucket        string
	Region        string
	Endpoint      string // S3-compatible endpoint such as MinIO; empty for AWS
	PublicBaseURL string
	KeyPrefix     string
}

type S3MediaHost struct {
	client ObjectPutter
	cfg    S3MediaConfig
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, cfg S3MediaConfig) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errs.NewConfigError("AWS credentials", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewS3MediaHost(client ObjectPutter, cfg S3MediaConfig) (*S3MediaHost, error) {
	if cfg.Bucket == "" {
		return nil, errs.NewConfigError("MEDIA_BUCKET", nil)
	}
	return &S3MediaHost{client: client, cfg: cfg}, nil
}

// Upload stores the file under a random key, keeping its extension.
func (h *S3MediaHost) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	key := h.objectKey(filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(h.cfg.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := h.client.PutObject(ctx, input); err != nil {
		return "", errs.NewUpstreamError("media host", err)
	}

	url := h.publicURL(key)
	log.Info().Str("key", key).Str("url", url).Msg("Uploaded media")
	return url, nil
}

func (h *S3MediaHost) objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	name := uuid.NewString() + ext
	if h.cfg.KeyPrefix == "" {
		return name
	}
	return strings.Trim(h.cfg.KeyPrefix, "/") + "/" + name
}

func (h *S3MediaHost) publicURL(key string) string {
	if h.cfg.PublicBaseURL != "" {
		return strings.TrimRight(h.cfg.PublicBaseURL, "/") + "/" + key
	}
	if h.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(h.cfg.Endpoint, "/"), h.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", h.cfg.Bucket, h.cfg.Region, key)
}
