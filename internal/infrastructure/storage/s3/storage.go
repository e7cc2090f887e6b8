package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Storage keeps uploaded letters and rendered appeal documents in one bucket,
// keyed by letter ID.
type Storage struct {
	client *awss3.Client
	bucket string
}

func New(ctx context.Context, region, bucket string) (*Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Storage{
		client: awss3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

func NewWithClient(client *awss3.Client, bucket string) *Storage {
	return &Storage{client: client, bucket: bucket}
}

func (s *Storage) Save(ctx context.Context, key string, data io.Reader) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   data,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, nil
}

// Probe checks bucket reachability and credentials.
type Probe struct {
	storage *Storage
}

func NewProbe(storage *Storage) *Probe {
	return &Probe{storage: storage}
}

func (p *Probe) Name() string { return "s3" }

func (p *Probe) Check(ctx context.Context) error {
	_, err := p.storage.client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(p.storage.bucket),
	})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", p.storage.bucket, err)
	}
	return nil
}
