package ddbmap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDBClient is the narrow client interface required by the mapping.
// *dynamodb.Client satisfies it; tests substitute mocks.
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Table is a thin facade over the remote table operations. Every method is a
// single synchronous round trip; the facade performs no retries and no
// pagination of its own. Transport failures are wrapped in ServiceError with
// the failing operation attached.
type Table struct {
	name   string
	client DynamoDBClient
	keys   keySchema
	log    *slog.Logger
}

// newTable discovers the table's key schema and returns the facade.
func newTable(ctx context.Context, name string, client DynamoDBClient, log *slog.Logger) (*Table, error) {
	out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	})
	if err != nil {
		return nil, serviceError("DescribeTable", name, err)
	}
	if out.Table == nil {
		return nil, serviceError("DescribeTable", name, fmt.Errorf("empty table description"))
	}

	schema, err := keySchemaFromDescription(out.Table)
	if err != nil {
		return nil, err
	}

	return &Table{
		name:   name,
		client: client,
		keys:   schema,
		log:    log,
	}, nil
}

// Name returns the remote table name.
func (t *Table) Name() string { return t.name }

// KeyNames returns the primary key attribute names, partition key first.
func (t *Table) KeyNames() []string { return t.keys.names() }

// getItem fetches a single raw item. A nil item means the key is absent.
func (t *Table) getItem(ctx context.Context, key Item) (Item, error) {
	t.log.DebugContext(ctx, "performing a GetItem operation", "table", t.name)
	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.name),
		Key:       key,
	})
	if err != nil {
		return nil, serviceError("GetItem", t.name, err)
	}
	return out.Item, nil
}

// putItem stores a raw item, replacing any previous item under the same key.
func (t *Table) putItem(ctx context.Context, item Item) error {
	t.log.DebugContext(ctx, "performing a PutItem operation", "table", t.name)
	_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	})
	if err != nil {
		return serviceError("PutItem", t.name, err)
	}
	return nil
}

// deleteItem removes a raw item. Deleting an absent key is not an error at
// this level; the mapping layer enforces existence.
func (t *Table) deleteItem(ctx context.Context, key Item) error {
	t.log.DebugContext(ctx, "performing a DeleteItem operation", "table", t.name)
	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.name),
		Key:       key,
	})
	if err != nil {
		return serviceError("DeleteItem", t.name, err)
	}
	return nil
}

// updateItem applies a prebuilt update expression to a single item. The
// values map may be nil for expressions that only remove attributes.
func (t *Table) updateItem(ctx context.Context, key Item, update string, names map[string]string, values Item) error {
	t.log.DebugContext(ctx, "performing an UpdateItem operation",
		"table", t.name, "expression", update)
	input := &dynamodb.UpdateItemInput{
		TableName:                aws.String(t.name),
		Key:                      key,
		UpdateExpression:         aws.String(update),
		ExpressionAttributeNames: names,
	}
	if len(values) > 0 {
		input.ExpressionAttributeValues = values
	}
	_, err := t.client.UpdateItem(ctx, input)
	if err != nil {
		return serviceError("UpdateItem", t.name, err)
	}
	return nil
}

// scanPage fetches a single page of the table scan. A nil startKey starts a
// fresh scan; a nil returned next key means the scan is exhausted. When
// projection is non-empty only the named attributes are returned.
func (t *Table) scanPage(ctx context.Context, startKey Item, projection []string) (items []Item, next Item, err error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(t.name),
	}
	if startKey != nil {
		input.ExclusiveStartKey = startKey
	}
	if len(projection) > 0 {
		names := make([]expression.NameBuilder, len(projection))
		for i, name := range projection {
			names[i] = expression.Name(name)
		}
		expr, err := expression.NewBuilder().
			WithProjection(expression.NamesList(names[0], names[1:]...)).
			Build()
		if err != nil {
			return nil, nil, fmt.Errorf("ddbmap: failed to build projection expression: %w", err)
		}
		input.ProjectionExpression = expr.Projection()
		input.ExpressionAttributeNames = expr.Names()
	}

	t.log.DebugContext(ctx, "performing a Scan operation", "table", t.name)
	out, err := t.client.Scan(ctx, input)
	if err != nil {
		return nil, nil, serviceError("Scan", t.name, err)
	}
	if len(out.LastEvaluatedKey) > 0 {
		next = out.LastEvaluatedKey
	}
	return out.Items, next, nil
}

// itemCount returns the item count reported by the table metadata. The
// service refreshes the figure on its own schedule, roughly every six hours,
// so treat it as an estimate rather than a live count.
func (t *Table) itemCount(ctx context.Context) (int64, error) {
	t.log.DebugContext(ctx, "performing a DescribeTable operation", "table", t.name)
	out, err := t.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(t.name),
	})
	if err != nil {
		return 0, serviceError("DescribeTable", t.name, err)
	}
	if out.Table == nil {
		return 0, serviceError("DescribeTable", t.name, fmt.Errorf("empty table description"))
	}
	return aws.ToInt64(out.Table.ItemCount), nil
}
