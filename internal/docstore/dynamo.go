package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// Key layout for the single-table design: one partition per collection,
// one item per document.
const (
	pkPrefix = "COLLECTION#"
	skPrefix = "DOC#"
)

// TransactAPI is the slice of the DynamoDB client used by DynamoStore.
type TransactAPI interface {
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DynamoStore implements Store with DynamoDB TransactWriteItems, which gives
// the all-or-nothing commit the batch contract requires.
type DynamoStore struct {
	client    TransactAPI
	tableName string
}

// Compile-time interface check.
var _ Store = (*DynamoStore)(nil)

// NewDynamoStore creates a store writing to the given table. The client
// should come from the shared cold-start AWS config.
func NewDynamoStore(client TransactAPI, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

// TableName returns the backing table, for startup logging.
func (s *DynamoStore) TableName() string {
	return s.tableName
}

// Commit writes the staged batch in one transaction.
func (s *DynamoStore) Commit(ctx context.Context, batch *Batch) error {
	if batch.Len() == 0 {
		log.Debug().Str("collection", batch.Collection()).Msg("Empty batch — nothing to commit")
		return nil
	}
	if batch.Len() > MaxBatchSize {
		return fmt.Errorf("%w: %d documents staged, limit %d", ErrBatchTooLarge, batch.Len(), MaxBatchSize)
	}

	pk := pkPrefix + batch.Collection()
	updatedAt := time.Now().UTC().Format(time.RFC3339)

	items := make([]types.TransactWriteItem, 0, batch.Len())
	for _, id := range batch.IDs() {
		doc, _ := batch.Get(id)
		item, err := attributevalue.MarshalMap(doc)
		if err != nil {
			return fmt.Errorf("marshal document %s: %w", id, err)
		}
		// Key and audit attributes win over any same-named record fields.
		item["PK"] = &types.AttributeValueMemberS{Value: pk}
		item["SK"] = &types.AttributeValueMemberS{Value: skPrefix + id}
		item["updatedAt"] = &types.AttributeValueMemberS{Value: updatedAt}

		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: &s.tableName,
				Item:      item,
			},
		})
	}

	if _, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	}); err != nil {
		return fmt.Errorf("TransactWriteItems (%d documents, collection %s): %w", batch.Len(), batch.Collection(), err)
	}

	log.Info().
		Int("documents", batch.Len()).
		Str("collection", batch.Collection()).
		Msg("Document batch committed")
	return nil
}
