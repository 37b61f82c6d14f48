package draft

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/debemdeboas/archive-comments/internal/util/compression"
)

const s3Timeout = 10 * time.Second

// s3API is the subset of *s3.Client the repository calls.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Repository stores gzip-compressed slots as objects under prefix.
type S3Repository struct {
	client     s3API
	bucket     string
	prefix     string
	compressor compression.Compressor
}

func NewS3Repository(bucket, prefix, accessKeyID, accessKeySecret, baseEndpoint string) (*S3Repository, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion("auto"),
	}
	if accessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing S3 client: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if baseEndpoint != "" {
			o.BaseEndpoint = aws.String(baseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Repository(client, bucket, prefix), nil
}

func newS3Repository(client s3API, bucket, prefix string) *S3Repository {
	return &S3Repository{
		client:     client,
		bucket:     bucket,
		prefix:     prefix,
		compressor: compression.GzipCompressor{},
	}
}

func (r *S3Repository) objectKey(key SlotKey) string {
	return r.prefix + string(key)
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

func (r *S3Repository) SaveSlot(key SlotKey, content []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	if len(content) == 0 {
		_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(r.bucket),
			Key:    aws.String(r.objectKey(key)),
		})
		if isNotFound(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error checking slot %s: %w", key, err)
		}
	}

	compressed, err := r.compressor.Compress(content)
	if err != nil {
		return fmt.Errorf("error compressing slot: %w", err)
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(r.bucket),
		Key:             aws.String(r.objectKey(key)),
		Body:            bytes.NewReader(compressed),
		ContentEncoding: aws.String("gzip"),
		ContentType:     aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("error uploading slot %s: %w", key, err)
	}

	draftLogger.Debug().Str("bucket", r.bucket).Str("key", r.objectKey(key)).Msg("Slot uploaded")
	return nil
}

func (r *S3Repository) GetSlot(key SlotKey) (*Slot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.objectKey(key)),
	})
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("error downloading slot %s: %w", key, err)
	}
	defer out.Body.Close()

	compressed, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading slot %s: %w", key, err)
	}

	content, err := compression.Unpack(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing slot %s: %w", key, err)
	}

	slot := &Slot{Key: key, Content: content}
	if out.LastModified != nil {
		slot.UpdatedAt = *out.LastModified
	}
	return slot, nil
}

func (r *S3Repository) DeleteSlot(key SlotKey) error {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.objectKey(key)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("error deleting slot %s: %w", key, err)
	}
	return nil
}

func (r *S3Repository) ListSlots() ([]SlotKey, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	var keys []SlotKey
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(r.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error listing slots: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, SlotKey(strings.TrimPrefix(aws.ToString(obj.Key), r.prefix)))
		}
	}
	slices.Sort(keys)
	return keys, nil
}
