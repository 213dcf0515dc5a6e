package ocr

import "testing"

func TestParseAnnotations(t *testing.T) {
	raw := "```json\n[\"TOTAL $12.50\", \"TOTAL\", \"$12.50\"]\n```"

	annotations := ParseAnnotations(raw)
	if len(annotations) != 3 {
		t.Fatalf("expected 3 annotations, got %d", len(annotations))
	}
	if annotations[0].Description != "TOTAL $12.50" {
		t.Errorf("expected full text first, got %q", annotations[0].Description)
	}
}

func TestParseAnnotationsEmpty(t *testing.T) {
	if got := ParseAnnotations("[]"); len(got) != 0 {
		t.Errorf("expected no annotations for empty array, got %v", got)
	}
	if got := ParseAnnotations(""); len(got) != 0 {
		t.Errorf("expected no annotations for empty reply, got %v", got)
	}
}

func TestParseAnnotationsPlainText(t *testing.T) {
	// A reply that ignores the JSON contract degrades to one annotation.
	annotations := ParseAnnotations("The sign reads STOP")
	if len(annotations) != 1 || annotations[0].Description != "The sign reads STOP" {
		t.Errorf("unexpected annotations: %v", annotations)
	}
}

func TestMIMEForKey(t *testing.T) {
	cases := map[string]string{
		"scan.png":   "image/png",
		"scan.PNG":   "image/png",
		"photo.jpg":  "image/jpeg",
		"photo.jpeg": "image/jpeg",
	}
	for key, want := range cases {
		if got := MIMEForKey(key); got != want {
			t.Errorf("MIMEForKey(%q) = %q, want %q", key, got, want)
		}
	}
}
