// Package storage fetches raw object content from the landing bucket.
//
// The reader is the only component that touches object bytes; the image
// pipeline deliberately bypasses it and hands the OCR capability a
// reference instead.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
)

// Reader reads the full content of one object.
type Reader interface {
	Read(ctx context.Context, bucket, key string) ([]byte, error)
}

// GetObjectAPI is the slice of the S3 client used by S3Reader.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Reader reads objects from S3 and transparently decompresses
// gzip-compressed content (detected by magic bytes, since uploaders do not
// reliably set Content-Encoding).
type S3Reader struct {
	client GetObjectAPI
}

// Compile-time interface check.
var _ Reader = (*S3Reader)(nil)

// NewS3Reader creates a reader backed by the given S3 client.
func NewS3Reader(client GetObjectAPI) *S3Reader {
	return &S3Reader{client: client}
}

// Read fetches the object and returns its (decompressed) content.
func (r *S3Reader) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("S3 GetObject %s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read object body %s/%s: %w", bucket, key, err)
	}

	if isGzip(data) {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open gzip stream %s/%s: %w", bucket, key, err)
		}
		defer gz.Close()
		decompressed, err := io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("decompress %s/%s: %w", bucket, key, err)
		}
		log.Debug().Str("key", key).Int("compressed", len(data)).Int("decompressed", len(decompressed)).Msg("Object gunzipped")
		return decompressed, nil
	}

	log.Debug().Str("bucket", bucket).Str("key", key).Int("bytes", len(data)).Msg("Object downloaded")
	return data, nil
}

// isGzip reports whether data starts with the gzip magic bytes.
func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}
