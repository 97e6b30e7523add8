package ddbmap_test

import (
	"context"
	"errors"
	"fmt"

	ddbmap "github.com/mrtj/dynamodb-mapping"
	"github.com/mrtj/dynamodb-mapping/ddbmock"
)

func ExampleMapping() {
	ctx := context.Background()

	// Production code would use ddbmap.Config{} for the default AWS
	// credential chain; the in-memory client keeps the example runnable.
	client := ddbmock.NewMemoryClient("products", "id")
	mapping, err := ddbmap.New(ctx, "products", ddbmap.Config{Client: client})
	if err != nil {
		panic(err)
	}

	err = mapping.Set(ctx, ddbmap.SimpleKey("chair"), map[string]ddbmap.Value{
		"description": "a chair",
		"price":       123,
	})
	if err != nil {
		panic(err)
	}

	value, err := mapping.Get(ctx, ddbmap.SimpleKey("chair"))
	if err != nil {
		panic(err)
	}
	fmt.Println(value["description"])
	// Output: a chair
}

func ExampleMapping_Get_missingKey() {
	ctx := context.Background()
	client := ddbmock.NewMemoryClient("products", "id")
	mapping, err := ddbmap.New(ctx, "products", ddbmap.Config{Client: client})
	if err != nil {
		panic(err)
	}

	_, err = mapping.Get(ctx, ddbmap.SimpleKey("no-such-item"))
	fmt.Println(errors.Is(err, ddbmap.ErrKeyNotFound))
	// Output: true
}

func ExampleMapping_Items() {
	ctx := context.Background()
	client := ddbmock.NewMemoryClient("products", "id")
	mapping, err := ddbmap.New(ctx, "products", ddbmap.Config{Client: client})
	if err != nil {
		panic(err)
	}

	for _, name := range []string{"chair", "desk"} {
		err = mapping.Set(ctx, ddbmap.SimpleKey(name), map[string]ddbmap.Value{
			"stocked": true,
		})
		if err != nil {
			panic(err)
		}
	}

	it := mapping.Items()
	for it.Next(ctx) {
		fmt.Println(it.Key(), it.Value()["stocked"])
	}
	if err := it.Err(); err != nil {
		panic(err)
	}
	// Output:
	// chair true
	// desk true
}

func ExampleMapping_Update() {
	ctx := context.Background()
	client := ddbmock.NewMemoryClient("products", "id")
	mapping, err := ddbmap.New(ctx, "products", ddbmap.Config{Client: client})
	if err != nil {
		panic(err)
	}

	err = mapping.Set(ctx, ddbmap.SimpleKey("chair"), map[string]ddbmap.Value{
		"price":    ddbmap.Number("123"),
		"obsolete": true,
	})
	if err != nil {
		panic(err)
	}

	// Set price, remove obsolete, leave everything else untouched.
	err = mapping.Update(ctx, ddbmap.SimpleKey("chair"), map[string]ddbmap.Value{
		"price":    ddbmap.Number("99"),
		"obsolete": nil,
	})
	if err != nil {
		panic(err)
	}

	value, err := mapping.Get(ctx, ddbmap.SimpleKey("chair"))
	if err != nil {
		panic(err)
	}
	_, stillThere := value["obsolete"]
	fmt.Println(value["price"], stillThere)
	// Output: 99 false
}
