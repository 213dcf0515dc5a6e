package notification

import (
	"errors"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	body := []byte(`{"message":{"attributes":{"objectId":"users/data.json","bucketId":"landing-zone"}}}`)

	ref, err := ParseEnvelope(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Bucket != "landing-zone" {
		t.Errorf("expected bucket landing-zone, got %q", ref.Bucket)
	}
	if ref.Key != "users/data.json" {
		t.Errorf("expected key users/data.json, got %q", ref.Key)
	}
}

func TestParseEnvelopeMissingAttributes(t *testing.T) {
	// Absent attributes are not an error — they default to empty strings.
	ref, err := ParseEnvelope([]byte(`{"message":{}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Bucket != "" || ref.Key != "" {
		t.Errorf("expected empty ref, got %+v", ref)
	}
}

func TestParseEnvelopeMalformed(t *testing.T) {
	cases := []struct {
		name string
		body []byte
	}{
		{"empty body", nil},
		{"invalid json", []byte(`{not json`)},
		{"no message field", []byte(`{"subscription":"projects/x"}`)},
		{"null message", []byte(`{"message":null}`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseEnvelope(tc.body); !errors.Is(err, ErrMalformedRequest) {
				t.Errorf("expected ErrMalformedRequest, got %v", err)
			}
		})
	}
}
