package publish

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"ui_forge_server/internal/types"
	"ui_forge_server/internal/utils"
)

const defaultKeyPrefix = "generated"

// S3API is the subset of the S3 client the publisher uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads pages to generated/<id>/<slug>.html in a bucket.
type S3Publisher struct {
	client S3API
	bucket string
	prefix string
}

func NewS3Publisher(client S3API, bucket string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, prefix: defaultKeyPrefix}
}

// LoadAWSConfig loads the default credential chain, optionally for a named profile.
func LoadAWSConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	optFns := []func(*config.LoadOptions) error{}
	if profile != "" {
		optFns = append(optFns, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		optFns = append(optFns, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return cfg, nil
}

// NewS3PublisherFromConfig builds the publisher from an AWS config.
func NewS3PublisherFromConfig(cfg aws.Config, bucket string) (*S3Publisher, error) {
	if bucket == "" {
		return nil, errors.New("S3_BUCKET is required for the s3 publish target")
	}
	return NewS3Publisher(s3.NewFromConfig(cfg), bucket), nil
}

// ValidateCredentials checks that the loaded credentials are accepted by STS.
func ValidateCredentials(ctx context.Context, cfg aws.Config) (string, error) {
	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("AWS credential check failed: %w", err)
	}
	return aws.ToString(out.Arn), nil
}

func (p *S3Publisher) Target() string { return "s3" }

func (p *S3Publisher) Key(result *types.GenerationResult) string {
	return path.Join(p.prefix, result.ID, utils.HTMLFileName(result.Name))
}

// Publish uploads the page and returns its s3:// URL.
func (p *S3Publisher) Publish(ctx context.Context, result *types.GenerationResult) (string, error) {
	if result == nil || result.HTML == "" {
		return "", ErrNothingToPublish
	}

	key := p.Key(result)
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(result.HTML),
		ContentType: aws.String("text/html; charset=utf-8"),
		Metadata: map[string]string{
			"result-id": result.ID,
			"ai-model":  result.Metadata.AIModel,
		},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("s3 upload of %s rejected (%s): %w", key, apiErr.ErrorCode(), err)
		}
		return "", fmt.Errorf("s3 upload of %s failed: %w", key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", p.bucket, key)
	log.Printf("Published result %s to %s", result.ID, location)
	return location, nil
}
