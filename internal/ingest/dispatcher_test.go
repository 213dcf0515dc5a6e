package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/fpineda/storage-ingest/internal/notification"
)

// fakePipeline records every call and returns canned results.
type fakePipeline struct {
	calls  []notification.ObjectRef
	detail string
	err    error
}

func (f *fakePipeline) Process(_ context.Context, ref notification.ObjectRef) (string, error) {
	f.calls = append(f.calls, ref)
	return f.detail, f.err
}

func envelope(bucket, key string) []byte {
	return []byte(`{"message":{"attributes":{"bucketId":"` + bucket + `","objectId":"` + key + `"}}}`)
}

func TestDispatchMalformedEnvelopeShortCircuits(t *testing.T) {
	pipeline := &fakePipeline{}
	d := NewDispatcher()
	d.Register(notification.Image, pipeline)

	for _, body := range [][]byte{nil, []byte("not json"), []byte(`{"nope":true}`)} {
		result := d.Dispatch(context.Background(), body)
		if result.Status != StatusBadRequest {
			t.Errorf("Dispatch(%q) status = %v, want StatusBadRequest", body, result.Status)
		}
	}
	if len(pipeline.calls) != 0 {
		t.Errorf("pipeline called %d times for malformed envelopes, want 0", len(pipeline.calls))
	}
}

func TestDispatchRoutesToRegisteredPipeline(t *testing.T) {
	pipeline := &fakePipeline{detail: "done"}
	d := NewDispatcher()
	d.Register(notification.Image, pipeline)

	result := d.Dispatch(context.Background(), envelope("uploads", "scan.png"))

	if result.Status != StatusOK {
		t.Fatalf("Dispatch status = %v, want StatusOK", result.Status)
	}
	if result.Detail != "done" {
		t.Errorf("Dispatch detail = %q, want %q", result.Detail, "done")
	}
	if len(pipeline.calls) != 1 {
		t.Fatalf("pipeline called %d times, want 1", len(pipeline.calls))
	}
	want := notification.ObjectRef{Bucket: "uploads", Key: "scan.png"}
	if pipeline.calls[0] != want {
		t.Errorf("pipeline received %+v, want %+v", pipeline.calls[0], want)
	}
}

func TestDispatchIgnoresUnregisteredClass(t *testing.T) {
	pipeline := &fakePipeline{}
	d := NewDispatcher()
	d.Register(notification.Image, pipeline)

	// A CSV arrives at an endpoint that only serves images.
	result := d.Dispatch(context.Background(), envelope("uploads", "people.csv"))

	if result.Status != StatusOK {
		t.Errorf("Dispatch status = %v, want StatusOK for unregistered class", result.Status)
	}
	if len(pipeline.calls) != 0 {
		t.Errorf("pipeline called %d times for unregistered class, want 0", len(pipeline.calls))
	}
}

func TestDispatchMapsErrorsToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"malformed payload", &MalformedPayloadError{Key: "a.json", Reason: "bad"}, StatusBadRequest},
		{"wrapped malformed payload", errors.Join(errors.New("outer"), &MalformedPayloadError{Key: "a.json"}), StatusBadRequest},
		{"fetch failure", &FetchError{Bucket: "b", Key: "a.json", Err: errors.New("boom")}, StatusError},
		{"upstream failure", &UpstreamError{Op: "insert rows", Err: errors.New("boom")}, StatusError},
		{"opaque failure", errors.New("boom"), StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher()
			d.Register(notification.StructuredRecord, &fakePipeline{err: tt.err})

			result := d.Dispatch(context.Background(), envelope("uploads", "a.json"))
			if result.Status != tt.want {
				t.Errorf("Dispatch status = %v, want %v", result.Status, tt.want)
			}
		})
	}
}
