package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"product-catalog/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
)

const s3MaxInsertAttempts = 5

// S3API is the subset of the S3 client used by the repository.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds an S3 client for region. A non-empty endpoint switches
// to path-style addressing against that endpoint (LocalStack, MinIO).
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// s3Repository keeps the collection as a single JSON object.
type s3Repository struct {
	client S3API
	bucket string
	key    string
	policy ReadPolicy
	logger zerolog.Logger
}

// NewS3Repository creates a product repository stored at bucket/key.
func NewS3Repository(client S3API, bucket, key string, policy ReadPolicy, logger zerolog.Logger) ProductRepository {
	return &s3Repository{
		client: client,
		bucket: bucket,
		key:    key,
		policy: policy,
		logger: logger.With().
			Str("repository", "s3").
			Str("bucket", bucket).
			Str("key", key).
			Logger(),
	}
}

// LoadAll downloads and parses the object. A missing object is an empty collection.
func (r *s3Repository) LoadAll(ctx context.Context) ([]model.Product, error) {
	products, _, err := r.load(ctx)
	return products, err
}

// SaveAll uploads the collection unconditionally.
func (r *s3Repository) SaveAll(ctx context.Context, products []model.Product) error {
	data, err := encodeProducts(products)
	if err != nil {
		return err
	}

	if _, err := r.client.PutObject(ctx, r.putInput(data)); err != nil {
		r.logger.Error().Err(err).Msg("failed to put object to S3")
		return fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", r.bucket, r.key, err)
	}

	return nil
}

// Insert appends p with a conditional write on the ETag that was read,
// retrying when another writer replaced the object in between.
func (r *s3Repository) Insert(ctx context.Context, p *model.Product) error {
	for attempt := 1; attempt <= s3MaxInsertAttempts; attempt++ {
		products, etag, err := r.load(ctx)
		if err != nil {
			return err
		}

		p.ID = model.NextID(products)
		data, err := encodeProducts(append(products, *p))
		if err != nil {
			return err
		}

		input := r.putInput(data)
		if etag != "" {
			input.IfMatch = aws.String(etag)
		} else {
			input.IfNoneMatch = aws.String("*")
		}

		_, err = r.client.PutObject(ctx, input)
		if err == nil {
			return nil
		}
		if isPreconditionFailure(err) {
			r.logger.Debug().Int("attempt", attempt).Msg("insert lost race, retrying")
			continue
		}

		r.logger.Error().Err(err).Msg("failed to put object to S3")
		return fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", r.bucket, r.key, err)
	}

	return ErrInsertConflict
}

// load returns the collection and the ETag of the object it came from
// ("" when the object does not exist). S3 errors are always returned; the
// read policy only covers an object that does not parse.
func (r *s3Repository) load(ctx context.Context) ([]model.Product, string, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return []model.Product{}, "", nil
		}
		r.logger.Error().Err(err).Msg("failed to get object from S3")
		return nil, "", fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", r.bucket, r.key, err)
	}
	defer result.Body.Close()

	etag := aws.ToString(result.ETag)

	data, err := io.ReadAll(result.Body)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read S3 object body")
		return nil, "", fmt.Errorf("failed to read S3 object body: %w", err)
	}

	products, err := decodeProducts(data)
	if err != nil {
		products, err := r.policy.onReadFailure(r.logger, err)
		return products, etag, err
	}

	return products, etag, nil
}

func (r *s3Repository) putInput(data []byte) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}
}

func isPreconditionFailure(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}
