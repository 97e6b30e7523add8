package ddbmock

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type DynamoDBAPICall[T, U any] func(context.Context, *T, ...func(*dynamodb.Options)) (*U, error)

// MockClient is a simple expectation-based mock for the DynamoDB operations
// used by the mapping. Tests set the funcs for the operations they expect;
// any other call fails the test.
type MockClient struct {
	GetFunc      DynamoDBAPICall[dynamodb.GetItemInput, dynamodb.GetItemOutput]
	PutFunc      DynamoDBAPICall[dynamodb.PutItemInput, dynamodb.PutItemOutput]
	DeleteFunc   DynamoDBAPICall[dynamodb.DeleteItemInput, dynamodb.DeleteItemOutput]
	UpdateFunc   DynamoDBAPICall[dynamodb.UpdateItemInput, dynamodb.UpdateItemOutput]
	ScanFunc     DynamoDBAPICall[dynamodb.ScanInput, dynamodb.ScanOutput]
	DescribeFunc DynamoDBAPICall[dynamodb.DescribeTableInput, dynamodb.DescribeTableOutput]
}

// NewMockClient creates a mock whose operations all fail the test until
// overridden.
func NewMockClient(t *testing.T) *MockClient {
	return &MockClient{
		GetFunc:      defaultFunc[dynamodb.GetItemInput, dynamodb.GetItemOutput](t),
		PutFunc:      defaultFunc[dynamodb.PutItemInput, dynamodb.PutItemOutput](t),
		DeleteFunc:   defaultFunc[dynamodb.DeleteItemInput, dynamodb.DeleteItemOutput](t),
		UpdateFunc:   defaultFunc[dynamodb.UpdateItemInput, dynamodb.UpdateItemOutput](t),
		ScanFunc:     defaultFunc[dynamodb.ScanInput, dynamodb.ScanOutput](t),
		DescribeFunc: defaultFunc[dynamodb.DescribeTableInput, dynamodb.DescribeTableOutput](t),
	}
}

func defaultFunc[T, U any](t *testing.T) DynamoDBAPICall[T, U] {
	return func(ctx context.Context, params *T, optFns ...func(*dynamodb.Options)) (*U, error) {
		t.Helper()
		t.Fatalf("unexpected %T call", params)
		return nil, nil
	}
}

// GetItem delegates to GetFunc.
func (m *MockClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return m.GetFunc(ctx, params, optFns...)
}

// PutItem delegates to PutFunc.
func (m *MockClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return m.PutFunc(ctx, params, optFns...)
}

// DeleteItem delegates to DeleteFunc.
func (m *MockClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return m.DeleteFunc(ctx, params, optFns...)
}

// UpdateItem delegates to UpdateFunc.
func (m *MockClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return m.UpdateFunc(ctx, params, optFns...)
}

// Scan delegates to ScanFunc.
func (m *MockClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return m.ScanFunc(ctx, params, optFns...)
}

// DescribeTable delegates to DescribeFunc.
func (m *MockClient) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return m.DescribeFunc(ctx, params, optFns...)
}
