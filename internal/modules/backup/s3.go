package backup

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultKeyTemplate = "backups/{Y}/{m}/{filename}"

type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// S3Uploader puts snapshots into an S3-compatible bucket.
type S3Uploader struct {
	client *s3.Client
	bucket string
}

var _ Uploader = (*S3Uploader)(nil)

func NewS3Uploader(opts S3Options) (*S3Uploader, error) {
	bucket := strings.TrimSpace(opts.Bucket)
	region := strings.TrimSpace(opts.Region)
	accessKey := strings.TrimSpace(opts.AccessKeyID)
	secretKey := strings.TrimSpace(opts.SecretAccessKey)
	if bucket == "" || region == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}

	s3opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: opts.PathStyle,
	}
	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		s3opts.BaseEndpoint = aws.String(strings.TrimSuffix(endpoint, "/"))
		// Custom endpoints (MinIO, R2) generally need path-style addressing.
		s3opts.UsePathStyle = true
	}
	return &S3Uploader{client: s3.New(s3opts), bucket: bucket}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	key = normalizeObjectKey(key)
	if key == "" {
		return fmt.Errorf("invalid s3 object key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	return err
}

func renderObjectKey(template, filename string, now time.Time) string {
	tpl := strings.TrimSpace(template)
	if tpl == "" {
		tpl = DefaultKeyTemplate
	}

	replacer := strings.NewReplacer(
		"{Y}", now.Format("2006"),
		"{m}", now.Format("01"),
		"{d}", now.Format("02"),
		"{H}", now.Format("15"),
		"{M}", now.Format("04"),
		"{s}", now.Format("05"),
		"{filename}", filename,
	)
	key := normalizeObjectKey(replacer.Replace(tpl))
	if key == "" {
		return filename
	}
	return key
}

func normalizeObjectKey(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	key = strings.TrimPrefix(key, "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	return key
}
