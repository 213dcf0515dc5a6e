package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/fpineda/storage-ingest/internal/notification"
	"github.com/fpineda/storage-ingest/internal/ocr"
)

type fakeOCR struct {
	annotations []ocr.Annotation
	err         error
}

func (f *fakeOCR) DetectText(context.Context, notification.ObjectRef) ([]ocr.Annotation, error) {
	return f.annotations, f.err
}

func TestImagePipelineReturnsFullText(t *testing.T) {
	p := NewImagePipeline(&fakeOCR{annotations: []ocr.Annotation{
		{Description: "MEETING ROOM B\n2ND FLOOR"},
		{Description: "MEETING"},
		{Description: "ROOM"},
	}})

	detail, err := p.Process(context.Background(), notification.ObjectRef{Bucket: "uploads", Key: "sign.jpg"})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if detail != "MEETING ROOM B\n2ND FLOOR" {
		t.Errorf("Process detail = %q, want the first annotation", detail)
	}
}

func TestImagePipelineNoTextIsSuccess(t *testing.T) {
	p := NewImagePipeline(&fakeOCR{})

	detail, err := p.Process(context.Background(), notification.ObjectRef{Bucket: "uploads", Key: "blank.png"})
	if err != nil {
		t.Fatalf("Process returned error for empty result: %v", err)
	}
	if detail == "" {
		t.Error("Process detail is empty, want a no-text notice")
	}
}

func TestImagePipelineWrapsDetectionFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	p := NewImagePipeline(&fakeOCR{err: boom})

	_, err := p.Process(context.Background(), notification.ObjectRef{Bucket: "uploads", Key: "sign.jpg"})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Process error = %v, want *UpstreamError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Process error does not wrap the detection failure")
	}
}
