package notification

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		key  string
		want FileClass
	}{
		{"photo.png", Image},
		{"photo.jpg", Image},
		{"photo.jpeg", Image},
		{"scans/RECEIPT.JPEG", Image},
		{"users.json", StructuredRecord},
		{"exports/Users.JSON", StructuredRecord},
		{"users.csv", TabularRecord},
		{"users.txt", TabularRecord},
		{"Exports/USERS.CSV", TabularRecord},
		{"archive.tar.gz", Unsupported},
		{"document.pdf", Unsupported},
		{"noextension", Unsupported},
		{"", Unsupported},
		{"trailingdot.", Unsupported},
		{"json", Unsupported}, // suffix match requires the dot
	}

	for _, tc := range cases {
		if got := Classify(tc.key); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestFileClassString(t *testing.T) {
	cases := map[FileClass]string{
		Image:            "image",
		StructuredRecord: "structured",
		TabularRecord:    "tabular",
		Unsupported:      "unsupported",
	}
	for class, want := range cases {
		if got := class.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", class, got, want)
		}
	}
}
