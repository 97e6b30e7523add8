package ddbmap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// stubClient implements DynamoDBClient for white box tests. Unset funcs
// return empty outputs.
type stubClient struct {
	getFunc      func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	putFunc      func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	deleteFunc   func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	updateFunc   func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	scanFunc     func(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	describeFunc func(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

func (s *stubClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, params, optFns...)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (s *stubClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if s.putFunc != nil {
		return s.putFunc(ctx, params, optFns...)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (s *stubClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, params, optFns...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (s *stubClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, params, optFns...)
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (s *stubClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if s.scanFunc != nil {
		return s.scanFunc(ctx, params, optFns...)
	}
	return &dynamodb.ScanOutput{}, nil
}

func (s *stubClient) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if s.describeFunc != nil {
		return s.describeFunc(ctx, params, optFns...)
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
			},
		},
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTable(t *testing.T) {
	ctx := context.Background()

	t.Run("discovers the key schema", func(t *testing.T) {
		table, err := newTable(ctx, "products", &stubClient{}, testLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.Name() != "products" {
			t.Errorf("unexpected table name %q", table.Name())
		}
		if len(table.KeyNames()) != 1 || table.KeyNames()[0] != "id" {
			t.Errorf("unexpected key names: %v", table.KeyNames())
		}
	})

	t.Run("describe failure", func(t *testing.T) {
		cause := errors.New("no such table")
		client := &stubClient{
			describeFunc: func(ctx context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
				return nil, cause
			},
		}
		_, err := newTable(ctx, "products", client, testLogger())
		var serr *ServiceError
		if !errors.As(err, &serr) {
			t.Fatalf("expected ServiceError, got %v", err)
		}
		if serr.Op != "DescribeTable" || !errors.Is(err, cause) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("empty description", func(t *testing.T) {
		client := &stubClient{
			describeFunc: func(ctx context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
				return &dynamodb.DescribeTableOutput{}, nil
			},
		}
		_, err := newTable(ctx, "products", client, testLogger())
		var serr *ServiceError
		if !errors.As(err, &serr) {
			t.Fatalf("expected ServiceError, got %v", err)
		}
	})
}

func TestTableOperationErrorsCarryOp(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("throttled")

	client := &stubClient{
		getFunc: func(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			return nil, cause
		},
		putFunc: func(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			return nil, cause
		},
		deleteFunc: func(ctx context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
			return nil, cause
		},
		updateFunc: func(ctx context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
			return nil, cause
		},
		scanFunc: func(ctx context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
			return nil, cause
		},
	}
	table, err := newTable(ctx, "products", client, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key := Item{"id": &types.AttributeValueMemberS{Value: "a"}}
	ops := map[string]func() error{
		"GetItem": func() error {
			_, err := table.getItem(ctx, key)
			return err
		},
		"PutItem": func() error {
			return table.putItem(ctx, key)
		},
		"DeleteItem": func() error {
			return table.deleteItem(ctx, key)
		},
		"UpdateItem": func() error {
			return table.updateItem(ctx, key, "REMOVE #key0", map[string]string{"#key0": "x"}, nil)
		},
		"Scan": func() error {
			_, _, err := table.scanPage(ctx, nil, nil)
			return err
		},
	}

	for op, call := range ops {
		t.Run(op, func(t *testing.T) {
			err := call()
			var serr *ServiceError
			if !errors.As(err, &serr) {
				t.Fatalf("expected ServiceError, got %v", err)
			}
			if serr.Op != op {
				t.Errorf("expected op %q, got %q", op, serr.Op)
			}
			if !errors.Is(err, cause) {
				t.Error("expected the wrapped cause to be reachable via errors.Is")
			}
		})
	}
}

func TestTableScanPage(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards the continuation token", func(t *testing.T) {
		var captured *dynamodb.ScanInput
		client := &stubClient{
			scanFunc: func(ctx context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
				captured = params
				return &dynamodb.ScanOutput{
					LastEvaluatedKey: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: "b"},
					},
				}, nil
			},
		}
		table, err := newTable(ctx, "products", client, testLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		start := Item{"id": &types.AttributeValueMemberS{Value: "a"}}
		_, next, err := table.scanPage(ctx, start, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if captured.ExclusiveStartKey == nil {
			t.Error("expected the start key to be forwarded")
		}
		if next == nil {
			t.Error("expected a continuation token")
		}
	})

	t.Run("exhausted scan yields no token", func(t *testing.T) {
		table, err := newTable(ctx, "products", &stubClient{}, testLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, next, err := table.scanPage(ctx, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next != nil {
			t.Errorf("expected no continuation token, got %v", next)
		}
	})

	t.Run("projection restricts attributes", func(t *testing.T) {
		var captured *dynamodb.ScanInput
		client := &stubClient{
			scanFunc: func(ctx context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
				captured = params
				return &dynamodb.ScanOutput{}, nil
			},
		}
		table, err := newTable(ctx, "products", client, testLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, _, err = table.scanPage(ctx, nil, []string{"pk", "sk"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if captured.ProjectionExpression == nil {
			t.Fatal("expected a projection expression")
		}
		if len(captured.ExpressionAttributeNames) != 2 {
			t.Errorf("expected 2 name placeholders, got %v", captured.ExpressionAttributeNames)
		}
		for _, name := range captured.ExpressionAttributeNames {
			if name != "pk" && name != "sk" {
				t.Errorf("unexpected projected attribute %q", name)
			}
		}
	})
}

func TestTableItemCount(t *testing.T) {
	ctx := context.Background()
	client := &stubClient{
		describeFunc: func(ctx context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
			return &dynamodb.DescribeTableOutput{
				Table: &types.TableDescription{
					ItemCount: aws.Int64(1000),
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
					},
				},
			}, nil
		},
	}
	table, err := newTable(ctx, "products", client, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := table.itemCount(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1000 {
		t.Errorf("expected the metadata count verbatim, got %d", count)
	}
}
