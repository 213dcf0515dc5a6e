// Package ocr extracts printed or handwritten text from images in the
// landing bucket. The capability operates strictly by reference: callers
// hand it an object reference and never touch the image bytes themselves.
package ocr

import (
	"context"

	"github.com/fpineda/storage-ingest/internal/notification"
)

// Annotation is one detected block of text. The first annotation of a
// result is the full concatenated text; any following annotations are
// individual blocks in reading order.
type Annotation struct {
	Description string
}

// Service detects text in the referenced image. An image with no readable
// text yields an empty annotation list and a nil error; only transport or
// service failures return an error.
type Service interface {
	DetectText(ctx context.Context, ref notification.ObjectRef) ([]Annotation, error)
}
