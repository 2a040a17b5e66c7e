package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"voyage/config"
	"voyage/infras/otel"
	"voyage/shared/constant"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	otelAttrKey    = "s3.key"
	otelAttrBucket = "s3.bucket"
	otelAttrSize   = "s3.size"

	region = "auto"
)

var ErrStorageDisabled = errors.New("object storage is not configured")

// Object is a document to store. Bucket falls back to the configured one.
type Object struct {
	Bucket      string
	Key         string
	ContentType string
	Body        []byte
	Metadata    map[string]string
}

type S3 interface {
	PutObject(ctx context.Context, object Object) (url string, err error)
}

type s3Impl struct {
	client *s3.Client
	config *config.Config
	otel   otel.Otel
}

func New(config *config.Config, otel otel.Otel) S3 {
	if config.External.S3.APIEndpoint == "" {
		log.Warn().Msg("No S3 endpoint configured, statement export is disabled")

		return &disabledStorage{}
	}

	staticProvider := credentials.NewStaticCredentialsProvider(
		config.External.S3.AccessKeyID,
		config.External.S3.SecretAccessKey,
		"",
	)

	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithCredentialsProvider(staticProvider),
		awsConfig.WithRegion(region),
	)
	if err != nil {
		log.Err(err).Msg("Error loading AWS configuration")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(config.External.S3.APIEndpoint)
		o.UsePathStyle = true
	})

	return &s3Impl{
		client: client,
		config: config,
		otel:   otel,
	}
}

func (svc *s3Impl) PutObject(ctx context.Context, object Object) (url string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".PutObject")
	defer scope.End()

	bucket := object.Bucket
	if bucket == "" {
		bucket = svc.config.External.S3.BucketName
	}

	scope.SetAttributes(map[string]any{
		otelAttrKey:    object.Key,
		otelAttrBucket: bucket,
		otelAttrSize:   len(object.Body),
	})

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(object.Key),
		Body:          bytes.NewReader(object.Body),
		ContentType:   aws.String(object.ContentType),
		ContentLength: aws.Int64(int64(len(object.Body))),
		Metadata:      object.Metadata,
	})
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("key", object.Key).Msg("failed to upload object to S3")

		return constant.Empty, fmt.Errorf("failed to upload object to S3: %w", err)
	}

	return PublicURL(svc.config.External.S3.PublicDomain, object.Key), nil
}

// PublicURL joins the public domain and key with exactly one slash.
func PublicURL(domain, key string) string {
	return strings.TrimSuffix(domain, "/") + "/" + strings.TrimPrefix(key, "/")
}

type disabledStorage struct{}

func (d *disabledStorage) PutObject(_ context.Context, object Object) (string, error) {
	log.Warn().Str("key", object.Key).Msg("Object storage disabled, object dropped")

	return constant.Empty, ErrStorageDisabled
}
