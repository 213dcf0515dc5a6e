package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpineda/storage-ingest/internal/jsonutil"
	"github.com/fpineda/storage-ingest/internal/notification"
)

// DefaultModel is the Gemini model used for text detection unless
// GEMINI_MODEL overrides it.
const DefaultModel = "gemini-2.5-flash"

// presignExpiry bounds how long the model backend can fetch the image.
const presignExpiry = 15 * time.Minute

// ocrPrompt asks for Vision-style output: full text first, then the
// individual blocks in reading order.
const ocrPrompt = `Extract all readable text from the attached image.
Respond with ONLY a JSON array of strings. The first element must be the
complete extracted text; each following element is one text block in
reading order. Respond with [] if the image contains no readable text.`

// Presigner generates a time-limited GET URL for an S3 object.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// GeminiService implements Service with the Gemini API. The image is passed
// by reference as a presigned URL in FileData.FileURI; no bytes are fetched
// locally.
type GeminiService struct {
	client    *genai.Client
	presigner Presigner
	model     string
}

// Compile-time interface check.
var _ Service = (*GeminiService)(nil)

// NewGeminiService creates an OCR service over the given Gemini client and
// S3 presigner. The model is resolved from GEMINI_MODEL.
func NewGeminiService(client *genai.Client, presigner Presigner) *GeminiService {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = DefaultModel
	}
	return &GeminiService{client: client, presigner: presigner, model: model}
}

// DetectText presigns a GET URL for the referenced image and asks Gemini to
// transcribe it.
func (s *GeminiService) DetectText(ctx context.Context, ref notification.ObjectRef) ([]Annotation, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &ref.Bucket, Key: &ref.Key,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("presign GetObject %s/%s: %w", ref.Bucket, ref.Key, err)
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{FileData: &genai.FileData{FileURI: req.URL, MIMEType: MIMEForKey(ref.Key)}},
			{Text: ocrPrompt},
		},
	}}

	start := time.Now()
	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, &genai.GenerateContentConfig{})
	if err != nil {
		return nil, fmt.Errorf("gemini text detection: %w", err)
	}

	annotations := ParseAnnotations(resp.Text())
	log.Info().
		Str("key", ref.Key).
		Str("model", s.model).
		Int("annotations", len(annotations)).
		Dur("elapsed", time.Since(start)).
		Msg("Text detection complete")
	return annotations, nil
}

// ParseAnnotations converts the raw model reply into annotations. The model
// is asked for a JSON array of strings, but replies occasionally arrive as
// plain prose — those are degraded to a single full-text annotation rather
// than failed.
func ParseAnnotations(raw string) []Annotation {
	blocks, err := jsonutil.ParseJSON[[]string](raw)
	if err != nil {
		text := strings.TrimSpace(raw)
		if text == "" {
			return nil
		}
		log.Warn().Err(err).Msg("OCR reply was not a JSON array — using raw text")
		return []Annotation{{Description: text}}
	}

	annotations := make([]Annotation, 0, len(blocks))
	for _, b := range blocks {
		if strings.TrimSpace(b) == "" {
			continue
		}
		annotations = append(annotations, Annotation{Description: b})
	}
	return annotations
}

// MIMEForKey maps the supported image suffixes to their MIME type.
func MIMEForKey(key string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(key), ".png"):
		return "image/png"
	default:
		return "image/jpeg"
	}
}
