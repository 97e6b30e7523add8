// Package ddbmap presents an Amazon DynamoDB table as an associative
// container over the AWS SDK for Go v2 client.
//
// The package hides two things from the caller: the wire-level pagination
// required to walk an unbounded table, and the translation between native
// Go values and DynamoDB's typed attribute representation.
//
// # Basic Usage
//
//	mapping, err := ddbmap.New(ctx, "my-table", ddbmap.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create or replace an item:
//	err = mapping.Set(ctx, ddbmap.SimpleKey("my-key"), map[string]ddbmap.Value{
//	    "description": "foo",
//	    "price":       123,
//	})
//
//	// Get a single item:
//	value, err := mapping.Get(ctx, ddbmap.SimpleKey("my-key"))
//
//	// Iterate over all items:
//	it := mapping.Items()
//	for it.Next(ctx) {
//	    fmt.Println(it.Key(), it.Value())
//	}
//	err = it.Err()
//
//	// Delete an item:
//	err = mapping.Delete(ctx, ddbmap.SimpleKey("my-key"))
//
// # Keys
//
// Tables with a simple primary key take a SimpleKey; tables with a
// composite primary key take a CompositeKey. The key attribute names are
// discovered from the table's key schema at construction, so callers only
// supply key values.
//
// # Values
//
// Values are maps of attribute name to Value, where a Value is recursively
// a string, Number, bool, nil, []byte, []Value, map[string]Value, or one of
// the set types. Numbers are carried as strings to preserve the full
// decimal precision of the stored attribute. See MarshalValue for the exact
// grammar.
//
// # Laziness and Cost
//
// Keys, Values and Items iterate lazily: successive scan pages are fetched
// only on demand. Draining an iterator over a large table performs an
// exhaustive, and potentially costly, scan. Len returns the best-effort
// item count from the table metadata instead of scanning.
//
// # Configuration
//
// The zero Config uses the default AWS credential chain. Alternatively
// inject a preconfigured client or aws.Config, or supply static
// credentials, a region and a profile. See Config.
//
// # Errors
//
// Absent keys surface as ErrKeyNotFound from Get and Delete. Values
// outside the representable grammar surface as ValidationError with the
// offending position. Transport failures are wrapped in ServiceError and
// propagated without retries; apply your own retry policy around the
// failing call.
package ddbmap
