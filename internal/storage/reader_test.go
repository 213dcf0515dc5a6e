package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
)

type fakeGetObjectAPI struct {
	data []byte
	err  error

	gotBucket string
	gotKey    string
}

func (f *fakeGetObjectAPI) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gotBucket = *params.Bucket
	f.gotKey = *params.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.data))}, nil
}

func TestS3ReaderRead(t *testing.T) {
	api := &fakeGetObjectAPI{data: []byte("id,first_name\n1,Ann\n")}
	r := NewS3Reader(api)

	data, err := r.Read(context.Background(), "landing", "users.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "id,first_name\n1,Ann\n" {
		t.Errorf("unexpected content: %q", data)
	}
	if api.gotBucket != "landing" || api.gotKey != "users.csv" {
		t.Errorf("wrong request: bucket=%q key=%q", api.gotBucket, api.gotKey)
	}
}

func TestS3ReaderReadGzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(`[{"id": 1}]`))
	gz.Close()

	r := NewS3Reader(&fakeGetObjectAPI{data: buf.Bytes()})

	data, err := r.Read(context.Background(), "landing", "users.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `[{"id": 1}]` {
		t.Errorf("expected decompressed content, got %q", data)
	}
}

func TestS3ReaderReadError(t *testing.T) {
	wantErr := errors.New("NoSuchKey")
	r := NewS3Reader(&fakeGetObjectAPI{err: wantErr})

	if _, err := r.Read(context.Background(), "landing", "missing.csv"); !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped GetObject error, got %v", err)
	}
}
