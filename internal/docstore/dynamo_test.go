package docstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type fakeTransactAPI struct {
	calls  int
	inputs []*dynamodb.TransactWriteItemsInput
	err    error
}

func (f *fakeTransactAPI) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.calls++
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func TestBatchLastWriteWins(t *testing.T) {
	b := NewBatch("users")
	b.Put("7", Document{"name": "a"})
	b.Put("8", Document{"name": "x"})
	b.Put("7", Document{"name": "b"})

	if b.Len() != 2 {
		t.Fatalf("expected 2 staged documents, got %d", b.Len())
	}
	ids := b.IDs()
	if ids[0] != "7" || ids[1] != "8" {
		t.Errorf("expected first-staged order [7 8], got %v", ids)
	}
	doc, _ := b.Get("7")
	if doc["name"] != "b" {
		t.Errorf("expected last write to win for id 7, got %v", doc)
	}
}

func TestCommitWritesOneTransaction(t *testing.T) {
	api := &fakeTransactAPI{}
	store := NewDynamoStore(api, "ingest-documents")

	b := NewBatch("users")
	b.Put("7", Document{"name": "b"})
	b.Put("abc", Document{"name": "c"})

	if err := store.Commit(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.calls != 1 {
		t.Fatalf("expected 1 TransactWriteItems call, got %d", api.calls)
	}

	items := api.inputs[0].TransactItems
	if len(items) != 2 {
		t.Fatalf("expected 2 transact items, got %d", len(items))
	}
	first := items[0].Put
	if *first.TableName != "ingest-documents" {
		t.Errorf("wrong table: %s", *first.TableName)
	}
	if got := stringAttr(first.Item, "PK"); got != "COLLECTION#users" {
		t.Errorf("wrong PK: %q", got)
	}
	if got := stringAttr(first.Item, "SK"); got != "DOC#7" {
		t.Errorf("wrong SK: %q", got)
	}
	if got := stringAttr(first.Item, "name"); got != "b" {
		t.Errorf("document field lost: name=%q", got)
	}
	if stringAttr(first.Item, "updatedAt") == "" {
		t.Error("missing updatedAt attribute")
	}
}

func TestCommitEmptyBatchIsNoop(t *testing.T) {
	api := &fakeTransactAPI{}
	store := NewDynamoStore(api, "ingest-documents")

	if err := store.Commit(context.Background(), NewBatch("users")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.calls != 0 {
		t.Errorf("expected no calls for empty batch, got %d", api.calls)
	}
}

func TestCommitRejectsOversizedBatch(t *testing.T) {
	api := &fakeTransactAPI{}
	store := NewDynamoStore(api, "ingest-documents")

	b := NewBatch("users")
	for i := 0; i < MaxBatchSize+1; i++ {
		b.Put(fmt.Sprintf("id-%d", i), Document{"n": i})
	}

	err := store.Commit(context.Background(), b)
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
	if api.calls != 0 {
		t.Errorf("oversized batch must not reach the store, got %d calls", api.calls)
	}
}

func TestCommitPropagatesStoreError(t *testing.T) {
	wantErr := errors.New("TransactionCanceledException")
	store := NewDynamoStore(&fakeTransactAPI{err: wantErr}, "ingest-documents")

	b := NewBatch("users")
	b.Put("7", Document{"name": "b"})

	if err := store.Commit(context.Background(), b); !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
