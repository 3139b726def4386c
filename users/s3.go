package users

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Backend stores the user list as one JSON object in S3.
type S3Backend struct {
	bucket string
	key    string
	s3     *s3.Client
}

func NewS3Backend(s3Client *s3.Client, bucket, key string) *S3Backend {
	return &S3Backend{
		bucket: bucket,
		key:    key,
		s3:     s3Client,
	}
}

func (s *S3Backend) Load(ctx context.Context) ([]byte, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			// Surface as the fs error the store treats as "first run"
			return nil, fs.ErrNotExist
		}
		return nil, fmt.Errorf("failed to get users object from S3: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *S3Backend) Save(ctx context.Context, data []byte) error {
	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put users object to S3: %w", err)
	}
	return nil
}
