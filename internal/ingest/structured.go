package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpineda/storage-ingest/internal/docstore"
	"github.com/fpineda/storage-ingest/internal/notification"
	"github.com/fpineda/storage-ingest/internal/storage"
)

// StructuredPipeline loads a JSON array of records into the document store
// as one atomic batch. Records keyed by an explicit id are idempotent under
// redelivery; records without one get a generated id.
type StructuredPipeline struct {
	reader     storage.Reader
	store      docstore.Store
	collection string
}

// NewStructuredPipeline creates the pipeline writing to the named
// collection.
func NewStructuredPipeline(reader storage.Reader, store docstore.Store, collection string) *StructuredPipeline {
	return &StructuredPipeline{reader: reader, store: store, collection: collection}
}

// Compile-time interface check.
var _ Pipeline = (*StructuredPipeline)(nil)

// Process fetches, parses, stages, and commits the records.
func (p *StructuredPipeline) Process(ctx context.Context, ref notification.ObjectRef) (string, error) {
	raw, err := p.reader.Read(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return "", &FetchError{Bucket: ref.Bucket, Key: ref.Key, Err: err}
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		log.Warn().Err(err).Str("key", ref.Key).Msg("Payload is not an array of records")
		return "", &MalformedPayloadError{Key: ref.Key, Reason: err.Error()}
	}
	if records == nil {
		return "", &MalformedPayloadError{Key: ref.Key, Reason: "document is not a JSON array"}
	}

	batch := docstore.NewBatch(p.collection)
	for _, record := range records {
		id := coerceID(record["id"])
		if id == "" {
			id = uuid.NewString()
		}
		batch.Put(id, docstore.Document(record))
	}

	if err := p.store.Commit(ctx, batch); err != nil {
		if errors.Is(err, docstore.ErrBatchTooLarge) {
			return "", &MalformedPayloadError{Key: ref.Key, Reason: err.Error()}
		}
		return "", &UpstreamError{Op: "document batch commit", Err: err}
	}

	log.Info().Int("records", len(records)).Int("documents", batch.Len()).Str("collection", p.collection).Msg("Structured records upserted")
	return fmt.Sprintf("upserted %d documents into %s", batch.Len(), p.collection), nil
}

// coerceID turns an explicit id field of any scalar type into its string
// form; empty string means "absent" and triggers id generation.
func coerceID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(id)
	default:
		return fmt.Sprintf("%v", id)
	}
}
