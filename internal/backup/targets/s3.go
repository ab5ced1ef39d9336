package targets

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ayushbarthwal/eatsafe/internal/backup"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

const defaultS3Region = "us-east-1"

// s3API is the subset of *s3.Client used by S3Target.
type s3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Target stores archives in an S3 bucket or an S3-compatible store such
// as MinIO.
type S3Target struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Target creates an S3 target from settings. Static credentials are
// used when both keys are set, otherwise the default AWS credential chain.
func NewS3Target(ctx context.Context, cfg *conf.S3BackupSettings) (*S3Target, error) {
	if cfg.Bucket == "" {
		return nil, configError("s3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = defaultS3Region
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to load AWS configuration: %w", err)).
			Component(component).
			Category(errors.CategoryConfiguration).
			Build()
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Most S3-compatible stores reject the default trailing checksums.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	})
	return newS3Target(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Target(client s3API, bucket, prefix string) *S3Target {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Target{client: client, bucket: bucket, prefix: prefix}
}

// Name returns the name of this target.
func (t *S3Target) Name() string { return "s3" }

// Store uploads the archive. S3 writes are atomic per object.
func (t *S3Target) Store(ctx context.Context, archivePath string, meta *backup.Metadata) (string, error) {
	name := path.Base(archivePath)
	if !backup.IsArchiveName(name) {
		return "", invalidName(name)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	key := t.prefix + name
	input := &s3.PutObjectInput{
		Bucket:      aws.String(t.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/gzip"),
	}
	if meta != nil {
		input.Metadata = map[string]string{
			"backup-id":       meta.ID,
			"source-type":     meta.SourceType,
			"snapshot-sha256": meta.Checksum,
		}
	}
	if _, err := t.client.PutObject(ctx, input); err != nil {
		return "", t.wrap(err, "put", key)
	}
	return fmt.Sprintf("s3://%s/%s", t.bucket, key), nil
}

// List returns the archives under the prefix, oldest first.
func (t *S3Target) List(ctx context.Context) ([]backup.ArchiveInfo, error) {
	p := s3.NewListObjectsV2Paginator(t.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(t.bucket),
		Prefix: aws.String(t.prefix),
	})

	var out []backup.ArchiveInfo
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, t.wrap(err, "list", t.prefix)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), t.prefix)
			if !backup.IsArchiveName(name) {
				continue
			}
			out = append(out, backup.ArchiveInfo{
				Name:    name,
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes one archive.
func (t *S3Target) Delete(ctx context.Context, name string) error {
	if !backup.IsArchiveName(name) {
		return invalidName(name)
	}
	key := t.prefix + name
	_, err := t.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return t.wrap(err, "delete", key)
	}
	return nil
}

func (t *S3Target) wrap(err error, op, key string) error {
	return errors.New(fmt.Errorf("s3 %s failed: %w", op, err)).
		Component(component).
		Category(errors.CategoryNetwork).
		Context("bucket", t.bucket).
		Context("key", key).
		Build()
}
