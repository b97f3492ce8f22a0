package main

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// exportArchive stores rendered export files.
type exportArchive interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// s3Archive writes export files to one bucket.
type s3Archive struct {
	client *s3.Client
	bucket string
}

// newS3Archive loads AWS credentials from the default chain.
func newS3Archive(ctx context.Context, bucket, region string) (*s3Archive, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &s3Archive{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// Put uploads body under key and returns its s3:// location.
func (a *s3Archive) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return "s3://" + a.bucket + "/" + key, nil
}

// archiveKey builds <prefix><userID>/<date>-<uuid>.<ext>, dated in logZone.
func archiveKey(prefix string, userID int, now time.Time, ext string) string {
	name := todayKey(now) + "-" + uuid.NewString() + "." + ext
	return prefix + path.Join(strconv.Itoa(userID), name)
}
