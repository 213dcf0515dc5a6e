// Package docstore provides atomic multi-document upserts into the document
// store. Writes for one source object are staged into a Batch and committed
// as a single transaction: either every staged document is durably applied
// or none are.
//
// Staging is last-write-wins by document id, so a source file that repeats
// an id produces exactly one document reflecting the final record.
package docstore

import (
	"context"
	"errors"
)

// MaxBatchSize is the largest batch a single commit may carry. It matches
// the DynamoDB TransactWriteItems limit; oversized batches are rejected
// before any write rather than silently split into several transactions.
const MaxBatchSize = 100

// ErrBatchTooLarge is returned by Commit when the staged batch exceeds
// MaxBatchSize.
var ErrBatchTooLarge = errors.New("staged batch exceeds the transaction limit")

// Document is one record destined for the document store.
type Document map[string]any

// Batch stages keyed upserts for one atomic commit. It is not safe for
// concurrent use; each invocation builds its own batch.
type Batch struct {
	collection string
	order      []string
	docs       map[string]Document
}

// NewBatch creates an empty batch targeting the named collection.
func NewBatch(collection string) *Batch {
	return &Batch{
		collection: collection,
		docs:       make(map[string]Document),
	}
}

// Put stages an upsert for id. Re-staging an id replaces the earlier
// document (last write wins) while keeping its original position.
func (b *Batch) Put(id string, doc Document) {
	if _, exists := b.docs[id]; !exists {
		b.order = append(b.order, id)
	}
	b.docs[id] = doc
}

// Len returns the number of distinct documents staged.
func (b *Batch) Len() int {
	return len(b.order)
}

// Collection returns the batch's target collection.
func (b *Batch) Collection() string {
	return b.collection
}

// IDs returns the staged document ids in first-staged order.
func (b *Batch) IDs() []string {
	ids := make([]string, len(b.order))
	copy(ids, b.order)
	return ids
}

// Get returns the staged document for id.
func (b *Batch) Get(id string) (Document, bool) {
	doc, ok := b.docs[id]
	return doc, ok
}

// Store commits staged batches to the document store.
type Store interface {
	// Commit applies every document in the batch atomically. An empty batch
	// is a no-op. Returns ErrBatchTooLarge without writing anything if the
	// batch exceeds MaxBatchSize.
	Commit(ctx context.Context, batch *Batch) error
}
