// Package ddbmock provides test doubles and integration-test scaffolding
// for the ddbmap package.
//
// # Mock Client
//
// MockClient is an expectation-based mock: set the func for each operation
// the test expects, and any unexpected call fails the test.
//
//	client := ddbmock.NewMockClient(t)
//	client.GetFunc = func(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
//	    return &dynamodb.GetItemOutput{}, nil
//	}
//
// # Memory Client
//
// MemoryClient is a functional in-memory table. It paginates scans like the
// real service and counts calls per operation, which makes it suitable for
// verifying lazy iteration behavior.
//
//	client := ddbmock.NewMemoryClient("products", "id", ddbmock.WithPageSize(2))
//	mapping, err := ddbmap.New(ctx, "products", ddbmap.Config{Client: client})
//
// # DynamoDB Local
//
// LocalDynamoDB connects to a DynamoDB Local instance for end-to-end
// integration tests. Tests using it are skipped when the instance is not
// reachable:
//
//	ddbmock.WithLocalDynamoDB(t, ddbmock.DefaultLocalPort, func(local *ddbmock.LocalDynamoDB) {
//	    local.WithMappingTable(t, "id", "", func(tableName string) {
//	        // exercise a real table
//	    })
//	})
package ddbmock
