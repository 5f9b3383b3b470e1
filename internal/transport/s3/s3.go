// internal/transport/s3/s3.go

// Package s3 implements the backup transport for S3-compatible stores.
package s3

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/relicbackup/relic/internal/core"
	"github.com/relicbackup/relic/internal/transport"
)

// Config holds S3 connection configuration.
type Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Transport stores backup artifacts as objects under a key prefix.
type Transport struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an S3 transport.
func New(cfg Config) (*Transport, error) {
	if cfg.Bucket == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("s3 bucket is required"))
	}

	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true // Required for MinIO and most S3-compatible services
	}

	return &Transport{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		prefix: strings.TrimSuffix(cfg.Prefix, "/"),
	}, nil
}

func (t *Transport) key(name string) string {
	if t.prefix == "" {
		return name
	}
	return t.prefix + "/" + name
}

func (t *Transport) Destination() string {
	if t.prefix == "" {
		return "s3://" + t.bucket
	}
	return "s3://" + t.bucket + "/" + t.prefix
}

// Upload streams the local file into the bucket under name.
func (t *Transport) Upload(ctx context.Context, localPath, name string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return core.WrapError(core.ErrIO, err)
	}
	defer f.Close()

	_, err = t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(name)),
		Body:   f,
	})
	if err != nil {
		return core.WrapError(core.ErrTransport, err)
	}
	return nil
}

// List enumerates objects under the prefix, trimmed back to bare names.
func (t *Transport) List(ctx context.Context) ([]transport.Object, error) {
	var objects []transport.Object

	paginator := s3.NewListObjectsV2Paginator(t.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(t.bucket),
		Prefix: aws.String(t.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, core.WrapError(core.ErrTransport, err)
		}
		for _, obj := range page.Contents {
			name := aws.ToString(obj.Key)
			if t.prefix != "" {
				name = strings.TrimPrefix(name, t.prefix+"/")
			}
			if name == "" || strings.Contains(name, "/") {
				// Nested keys belong to someone else's layout
				continue
			}
			objects = append(objects, transport.Object{Name: name, Size: aws.ToInt64(obj.Size)})
		}
	}
	return objects, nil
}

// Delete removes one object by name.
func (t *Transport) Delete(ctx context.Context, name string) error {
	_, err := t.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(name)),
	})
	if err != nil {
		return core.WrapError(core.ErrTransport, err)
	}
	return nil
}
