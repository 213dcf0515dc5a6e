package notification

import "strings"

// FileClass is the ingestion route for an object, derived from its key suffix.
type FileClass int

const (
	// Unsupported objects are acknowledged and ignored.
	Unsupported FileClass = iota
	// Image objects go to optical text extraction.
	Image
	// StructuredRecord objects (JSON arrays) go to the document store.
	StructuredRecord
	// TabularRecord objects (delimited text) go to the warehouse.
	TabularRecord
)

// String returns the class name used in logs and metric dimensions.
func (c FileClass) String() string {
	switch c {
	case Image:
		return "image"
	case StructuredRecord:
		return "structured"
	case TabularRecord:
		return "tabular"
	default:
		return "unsupported"
	}
}

// Classify maps an object key to its ingestion route by case-insensitive
// suffix match. It is pure and total: unknown suffixes (and keys with no
// extension) classify as Unsupported rather than erroring.
func Classify(key string) FileClass {
	k := strings.ToLower(key)
	switch {
	case strings.HasSuffix(k, ".png"), strings.HasSuffix(k, ".jpg"), strings.HasSuffix(k, ".jpeg"):
		return Image
	case strings.HasSuffix(k, ".json"):
		return StructuredRecord
	case strings.HasSuffix(k, ".csv"), strings.HasSuffix(k, ".txt"):
		return TabularRecord
	default:
		return Unsupported
	}
}
