package attachments

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/prontuario/internal/filex"
	sc "github.com/dmitrijs2005/prontuario/internal/server/config"
)

// objectAPI is the part of *s3.Client the store needs.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Store keeps attachments in an S3-compatible bucket (AWS S3 or MinIO).
// Uploads are staged in a local temporary directory until Commit.
type S3Store struct {
	client  objectAPI
	bucket  string
	staging string
}

// NewS3Store builds a client from the S3 settings of c using static
// credentials and a custom base endpoint. Path-style addressing is used so
// MinIO works without virtual-host DNS.
func NewS3Store(ctx context.Context, c *sc.Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(c.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	staging, err := filex.EnsureDir(os.TempDir())
	if err != nil {
		return nil, err
	}

	return &S3Store{client: client, bucket: c.S3Bucket, staging: staging}, nil
}

func (s *S3Store) Stage(ctx context.Context, originalName string, r io.Reader) (Staged, error) {
	tmp, err := stageToFile(ctx, s.staging, r)
	if err != nil {
		return nil, err
	}

	return &s3Staged{
		name:  filex.GeneratedName(originalName),
		tmp:   tmp,
		store: s,
	}, nil
}

type s3Staged struct {
	name  string
	tmp   string
	store *S3Store
}

func (f *s3Staged) Name() string { return f.name }

func (f *s3Staged) Commit(ctx context.Context) error {
	file, err := os.Open(f.tmp)
	if err != nil {
		return fmt.Errorf("open staging file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat staging file: %w", err)
	}

	_, err = f.store.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(f.store.bucket),
		Key:           aws.String(f.name),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (f *s3Staged) Discard() error {
	return removeIfExists(f.tmp)
}

func (f *s3Staged) Remove(ctx context.Context) error {
	_, err := f.store.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(f.store.bucket),
		Key:    aws.String(f.name),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
