package archive

import (
	"bytes"
	"context"
	"fmt"

	"product-manager/internal/clock"
	"product-manager/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// putObjectAPI is the part of *s3.Client the archiver uses.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Archiver uploads archives to an S3 bucket.
type s3Archiver struct {
	client putObjectAPI
	bucket string
	prefix string
	clock  clock.Clock
	logger zerolog.Logger
}

// NewS3Archiver creates an archiver uploading to bucket under prefix.
func NewS3Archiver(ctx context.Context, bucket, region, prefix string, clk clock.Clock, logger zerolog.Logger) (Archiver, error) {
	logger = logger.With().Str("component", "s3-archiver").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 archiver initialised")

	return newS3Archiver(s3.NewFromConfig(cfg), bucket, prefix, clk, logger), nil
}

func newS3Archiver(client putObjectAPI, bucket, prefix string, clk clock.Clock, logger zerolog.Logger) *s3Archiver {
	return &s3Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		clock:  clk,
		logger: logger,
	}
}

func (a *s3Archiver) Archive(ctx context.Context, products []model.Product) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, products); err != nil {
		return "", err
	}

	key := a.prefix + newArchiveName(a.clock.Now())

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(a.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(buf.Bytes()),
		ContentType:     aws.String("application/x-ndjson"),
		ContentEncoding: aws.String("gzip"),
	})
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("bucket", a.bucket).
			Str("key", key).
			Msg("failed to put archive object")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", a.bucket, key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", a.bucket, key)
	a.logger.Info().
		Str("location", location).
		Int("count", len(products)).
		Msg("products archived to S3")

	return location, nil
}
