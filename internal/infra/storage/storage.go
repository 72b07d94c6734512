package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/caarlos0/env/v11"
)

// deleteBatch is the DeleteObjects per-request key limit.
const deleteBatch = 1000

type StorageConfig struct {
	Bucket string `env:"S3_BUCKET" envDefault:"site-files"`
	Region string `env:"AWS_DEFAULT_REGION" envDefault:"eu-north-1"`
}

func NewStorageConfig() *StorageConfig {
	var cfg StorageConfig
	if err := env.Parse(&cfg); err != nil {
		panic(fmt.Sprintf("can't parse storage config, %v", err))
	}
	return &cfg
}

type Storage struct {
	client *s3.Client
	bucket string
	region string
}

func NewStorage(config aws.Config, cfg *StorageConfig) *Storage {
	return &Storage{
		client: initClient(config),
		bucket: cfg.Bucket,
		region: cfg.Region,
	}
}

func initClient(config aws.Config) *s3.Client {
	return s3.NewFromConfig(config, func(o *s3.Options) {
		o.UsePathStyle = true
	})
}

// SitePrefix is the key prefix holding every uploaded file of a site.
func SitePrefix(siteID uint64) string {
	return fmt.Sprintf("sites/%d/", siteID)
}

func (s *Storage) UploadFile(ctx context.Context, key string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading upload body: %v", err)
	}

	ct := http.DetectContentType(data)
	switch {
	case strings.HasSuffix(key, ".svg"):
		ct = "image/svg+xml"
	case strings.HasSuffix(key, ".css"):
		ct = "text/css"
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(ct),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *Storage) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var files []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s, %w", prefix, err)
		}
		for _, obj := range page.Contents {
			files = append(files, aws.ToString(obj.Key))
		}
	}
	return files, nil
}

// DeletePrefix removes every object under prefix and returns how many were
// deleted. An empty prefix is refused.
func (s *Storage) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, fmt.Errorf("refusing to delete an empty prefix")
	}
	keys, err := s.ListFiles(ctx, prefix)
	if err != nil {
		return 0, err
	}

	var deleted int
	for start := 0; start < len(keys); start += deleteBatch {
		end := min(start+deleteBatch, len(keys))
		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
		}
		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete objects under %s, %w", prefix, err)
		}
		for _, e := range out.Errors {
			slog.Error("object not deleted", "key", aws.ToString(e.Key), "err", aws.ToString(e.Message))
		}
		deleted += len(objects) - len(out.Errors)
	}
	return deleted, nil
}
