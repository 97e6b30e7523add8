package ddbmock

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	ddbmap "github.com/mrtj/dynamodb-mapping"
)

// MemoryClient is an in-memory DynamoDB table that implements the client
// interface required by the mapping. It paginates scans like the real
// service, honoring page size and exclusive start keys, which makes it
// suitable for exercising lazy iteration without a network.
//
// Items are scanned in insertion order. All operations are safe for
// concurrent use.
type MemoryClient struct {
	mu        sync.Mutex
	tableName string
	hashKey   string
	rangeKey  string // empty for simple primary keys
	pageSize  int
	order     []string
	items     map[string]ddbmap.Item
	count     *int64 // DescribeTable item count override
	calls     CallCounts
}

// CallCounts records how many times each client operation was invoked.
type CallCounts struct {
	Get      int
	Put      int
	Delete   int
	Update   int
	Scan     int
	Describe int
}

// DefaultPageSize is the scan page size used unless overridden.
const DefaultPageSize = 100

// NewMemoryClient creates an in-memory table with the given name and a
// simple primary key named by hashKey.
func NewMemoryClient(tableName, hashKey string, opts ...func(*MemoryClient)) *MemoryClient {
	c := &MemoryClient{
		tableName: tableName,
		hashKey:   hashKey,
		pageSize:  DefaultPageSize,
		items:     make(map[string]ddbmap.Item),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithRangeKey configures a composite primary key.
func WithRangeKey(name string) func(*MemoryClient) {
	return func(c *MemoryClient) { c.rangeKey = name }
}

// WithPageSize caps the number of items returned per scan page, forcing
// pagination in tests.
func WithPageSize(n int) func(*MemoryClient) {
	return func(c *MemoryClient) { c.pageSize = n }
}

// WithItemCount pins the item count reported by DescribeTable, emulating
// the staleness of the real table metadata. Without it the live item count
// is reported.
func WithItemCount(n int64) func(*MemoryClient) {
	return func(c *MemoryClient) { c.count = &n }
}

var _ ddbmap.DynamoDBClient = (*MemoryClient)(nil)

// Calls returns a snapshot of the per-operation call counts.
func (c *MemoryClient) Calls() CallCounts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Len returns the live number of stored items.
func (c *MemoryClient) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *MemoryClient) checkTable(name *string) error {
	if aws.ToString(name) != c.tableName {
		return &types.ResourceNotFoundException{
			Message: aws.String(fmt.Sprintf("table not found: %s", aws.ToString(name))),
		}
	}
	return nil
}

// keyString builds the map index for an item's primary key attributes.
func (c *MemoryClient) keyString(item ddbmap.Item) (string, error) {
	hash, err := scalarString(item[c.hashKey])
	if err != nil {
		return "", fmt.Errorf("attribute %s: %w", c.hashKey, err)
	}
	if c.rangeKey == "" {
		return hash, nil
	}
	rng, err := scalarString(item[c.rangeKey])
	if err != nil {
		return "", fmt.Errorf("attribute %s: %w", c.rangeKey, err)
	}
	return hash + "|" + rng, nil
}

func scalarString(av types.AttributeValue) (string, error) {
	switch attr := av.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + attr.Value, nil
	case *types.AttributeValueMemberN:
		return "N:" + attr.Value, nil
	case *types.AttributeValueMemberB:
		return "B:" + base64.StdEncoding.EncodeToString(attr.Value), nil
	case nil:
		return "", fmt.Errorf("missing key attribute")
	default:
		return "", fmt.Errorf("invalid key attribute type %T", av)
	}
}

// keyOf extracts the primary key attributes of a stored item.
func (c *MemoryClient) keyOf(item ddbmap.Item) ddbmap.Item {
	key := ddbmap.Item{c.hashKey: item[c.hashKey]}
	if c.rangeKey != "" {
		key[c.rangeKey] = item[c.rangeKey]
	}
	return key
}

// GetItem returns the stored item under the request key, if any.
func (c *MemoryClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls.Get++
	if err := c.checkTable(params.TableName); err != nil {
		return nil, err
	}
	ks, err := c.keyString(params.Key)
	if err != nil {
		return nil, &types.ResourceNotFoundException{Message: aws.String(err.Error())}
	}
	item, ok := c.items[ks]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

// PutItem stores the request item, replacing any previous item under the
// same key.
func (c *MemoryClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls.Put++
	if err := c.checkTable(params.TableName); err != nil {
		return nil, err
	}
	ks, err := c.keyString(params.Item)
	if err != nil {
		return nil, &types.ResourceNotFoundException{Message: aws.String(err.Error())}
	}
	if _, exists := c.items[ks]; !exists {
		c.order = append(c.order, ks)
	}
	c.items[ks] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// DeleteItem removes the item under the request key. Deleting an absent key
// succeeds, as it does on the real service.
func (c *MemoryClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls.Delete++
	if err := c.checkTable(params.TableName); err != nil {
		return nil, err
	}
	ks, err := c.keyString(params.Key)
	if err != nil {
		return nil, &types.ResourceNotFoundException{Message: aws.String(err.Error())}
	}
	if _, exists := c.items[ks]; exists {
		delete(c.items, ks)
		for i, existing := range c.order {
			if existing == ks {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

// UpdateItem applies SET and REMOVE clauses of the request update
// expression. Updating an absent key creates the item from its key
// attributes, matching the upsert behavior of the real service.
func (c *MemoryClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls.Update++
	if err := c.checkTable(params.TableName); err != nil {
		return nil, err
	}
	ks, err := c.keyString(params.Key)
	if err != nil {
		return nil, &types.ResourceNotFoundException{Message: aws.String(err.Error())}
	}
	item, exists := c.items[ks]
	if !exists {
		item = copyItem(params.Key)
		c.order = append(c.order, ks)
		c.items[ks] = item
	}
	err = applyUpdateExpression(item,
		aws.ToString(params.UpdateExpression),
		params.ExpressionAttributeNames,
		params.ExpressionAttributeValues)
	if err != nil {
		return nil, fmt.Errorf("ddbmock: %w", err)
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

// Scan returns one page of items in insertion order. The page length is the
// lesser of the configured page size and the request limit; a
// LastEvaluatedKey is returned while items remain.
func (c *MemoryClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls.Scan++
	if err := c.checkTable(params.TableName); err != nil {
		return nil, err
	}

	start := 0
	if params.ExclusiveStartKey != nil {
		ks, err := c.keyString(params.ExclusiveStartKey)
		if err != nil {
			return nil, fmt.Errorf("ddbmock: invalid exclusive start key: %w", err)
		}
		for i, existing := range c.order {
			if existing == ks {
				start = i + 1
				break
			}
		}
	}

	limit := c.pageSize
	if params.Limit != nil && int(*params.Limit) < limit {
		limit = int(*params.Limit)
	}
	end := start + limit
	if end > len(c.order) {
		end = len(c.order)
	}

	projection, err := parseProjection(params.ProjectionExpression, params.ExpressionAttributeNames)
	if err != nil {
		return nil, fmt.Errorf("ddbmock: %w", err)
	}

	out := &dynamodb.ScanOutput{}
	for _, ks := range c.order[start:end] {
		out.Items = append(out.Items, projectItem(c.items[ks], projection))
	}
	if end < len(c.order) && end > start {
		out.LastEvaluatedKey = c.keyOf(c.items[c.order[end-1]])
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

// DescribeTable reports the key schema and the item count. The count is the
// pinned value when WithItemCount was used, otherwise the live count.
func (c *MemoryClient) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls.Describe++
	if err := c.checkTable(params.TableName); err != nil {
		return nil, err
	}

	schema := []types.KeySchemaElement{{
		AttributeName: aws.String(c.hashKey),
		KeyType:       types.KeyTypeHash,
	}}
	if c.rangeKey != "" {
		schema = append(schema, types.KeySchemaElement{
			AttributeName: aws.String(c.rangeKey),
			KeyType:       types.KeyTypeRange,
		})
	}

	count := int64(len(c.items))
	if c.count != nil {
		count = *c.count
	}

	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   aws.String(c.tableName),
			TableStatus: types.TableStatusActive,
			KeySchema:   schema,
			ItemCount:   aws.Int64(count),
		},
	}, nil
}

func copyItem(item ddbmap.Item) ddbmap.Item {
	dup := make(ddbmap.Item, len(item))
	for name, av := range item {
		dup[name] = av
	}
	return dup
}

// parseProjection resolves a comma-separated projection expression into
// attribute names. Placeholder tokens are looked up in the expression
// attribute names.
func parseProjection(expr *string, names map[string]string) ([]string, error) {
	if expr == nil || *expr == "" {
		return nil, nil
	}
	var resolved []string
	for _, token := range strings.Split(*expr, ",") {
		token = strings.TrimSpace(token)
		if strings.HasPrefix(token, "#") {
			name, ok := names[token]
			if !ok {
				return nil, fmt.Errorf("unresolved name placeholder %s", token)
			}
			resolved = append(resolved, name)
			continue
		}
		resolved = append(resolved, token)
	}
	return resolved, nil
}

func projectItem(item ddbmap.Item, projection []string) ddbmap.Item {
	if projection == nil {
		return copyItem(item)
	}
	projected := make(ddbmap.Item, len(projection))
	for _, name := range projection {
		if av, ok := item[name]; ok {
			projected[name] = av
		}
	}
	return projected
}

// applyUpdateExpression supports the top-level SET and REMOVE clauses
// produced by the mapping. Other update actions are not implemented.
func applyUpdateExpression(item ddbmap.Item, expr string, names map[string]string, values ddbmap.Item) error {
	setClause, removeClause := splitUpdateClauses(expr)

	resolveName := func(token string) (string, error) {
		token = strings.TrimSpace(token)
		if strings.HasPrefix(token, "#") {
			name, ok := names[token]
			if !ok {
				return "", fmt.Errorf("unresolved name placeholder %s", token)
			}
			return name, nil
		}
		return token, nil
	}

	if setClause != "" {
		for _, assignment := range strings.Split(setClause, ",") {
			parts := strings.SplitN(assignment, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("malformed SET assignment %q", assignment)
			}
			name, err := resolveName(parts[0])
			if err != nil {
				return err
			}
			placeholder := strings.TrimSpace(parts[1])
			value, ok := values[placeholder]
			if !ok {
				return fmt.Errorf("unresolved value placeholder %s", placeholder)
			}
			item[name] = value
		}
	}
	if removeClause != "" {
		for _, token := range strings.Split(removeClause, ",") {
			name, err := resolveName(token)
			if err != nil {
				return err
			}
			delete(item, name)
		}
	}
	return nil
}

func splitUpdateClauses(expr string) (set, remove string) {
	rest := strings.TrimSpace(expr)
	if i := strings.Index(rest, "REMOVE"); i >= 0 {
		remove = strings.TrimSpace(rest[i+len("REMOVE"):])
		rest = strings.TrimSpace(rest[:i])
	}
	if strings.HasPrefix(rest, "SET") {
		set = strings.TrimSpace(rest[len("SET"):])
	}
	return set, remove
}
