// Package s3cache is an optional contentcache.Store backed by S3,
// following the teacher's S3Writer minimal-interface pattern
// (s3_writer.go: S3PutObjectAPI/S3GetObjectAPI satisfied directly by
// *s3.Client) so tests can substitute a mock without an adapter layer.
// The core pipeline never imports this package directly (spec §6
// "Optional on-disk caches are opaque to the core"); a caller wires it in
// behind contentcache.Store when S3-backed caching is desired.
package s3cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go"
)

// GetObjectAPI is the minimal S3 read surface this store needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// PutObjectAPI is the minimal S3 write surface this store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ClientAPI combines both, satisfied directly by *s3.Client.
type ClientAPI interface {
	GetObjectAPI
	PutObjectAPI
}

// Store is a contentcache.Store backed by one S3 bucket/prefix.
type Store struct {
	client ClientAPI
	bucket string
	prefix string
}

// New creates an S3-backed cache store. client is typically *s3.Client
// from github.com/aws/aws-sdk-go-v2/service/s3.
func New(client ClientAPI, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// Get implements contentcache.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    strPtr(s.prefix + key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("s3cache: get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("s3cache: read %s: %w", key, err)
	}
	return data, true, nil
}

// Put implements contentcache.Store.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    strPtr(s.prefix + key),
		Body:   bytes.NewReader(value),
	})
	if err != nil {
		return fmt.Errorf("s3cache: put %s: %w", key, err)
	}
	return nil
}

func strPtr(s string) *string { return &s }
