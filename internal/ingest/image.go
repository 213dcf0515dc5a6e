package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fpineda/storage-ingest/internal/notification"
	"github.com/fpineda/storage-ingest/internal/ocr"
)

// ImagePipeline hands the object reference to the OCR capability and
// surfaces the extracted text. It never fetches the image bytes itself and
// performs no writes, which makes it trivially safe under redelivery.
type ImagePipeline struct {
	ocr ocr.Service
}

// NewImagePipeline creates the pipeline over the given OCR service.
func NewImagePipeline(service ocr.Service) *ImagePipeline {
	return &ImagePipeline{ocr: service}
}

// Compile-time interface check.
var _ Pipeline = (*ImagePipeline)(nil)

// Process runs text detection for the referenced image. An image without
// readable text is a normal outcome, not an error.
func (p *ImagePipeline) Process(ctx context.Context, ref notification.ObjectRef) (string, error) {
	annotations, err := p.ocr.DetectText(ctx, ref)
	if err != nil {
		return "", &UpstreamError{Op: "text detection", Err: err}
	}

	if len(annotations) == 0 {
		log.Info().Str("key", ref.Key).Msg("No text detected in image")
		return fmt.Sprintf("no text detected in %s", ref.Key), nil
	}

	// The first annotation carries the full extracted text.
	text := annotations[0].Description
	log.Info().Str("key", ref.Key).Int("blocks", len(annotations)).Str("text", text).Msg("Text extracted from image")
	return text, nil
}
