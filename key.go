package ddbmap

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// KeyValue is a primary key scalar: a string, a Number (or any Go integer),
// or a []byte. DynamoDB does not allow other types in key attributes.
type KeyValue = any

// Key identifies a single item in the table. Tables with a simple primary
// key use only the partition value; tables with a composite primary key
// require both the partition and the sort value.
type Key struct {
	Partition KeyValue
	Sort      KeyValue
}

// SimpleKey builds a Key for a table with a partition-only primary key.
func SimpleKey(partition KeyValue) Key {
	return Key{Partition: partition}
}

// CompositeKey builds a Key for a table with a partition and sort key.
func CompositeKey(partition, sort KeyValue) Key {
	return Key{Partition: partition, Sort: sort}
}

// String renders the key for error messages and logs.
func (k Key) String() string {
	if k.Sort == nil {
		return fmt.Sprintf("%v", k.Partition)
	}
	return fmt.Sprintf("(%v, %v)", k.Partition, k.Sort)
}

// keySchema holds the attribute names of the table's primary key, discovered
// once from the table description at construction time.
type keySchema struct {
	partitionName string
	sortName      string // empty for simple primary keys
}

func keySchemaFromDescription(desc *types.TableDescription) (keySchema, error) {
	var schema keySchema
	for _, element := range desc.KeySchema {
		if element.AttributeName == nil {
			continue
		}
		switch element.KeyType {
		case types.KeyTypeHash:
			schema.partitionName = *element.AttributeName
		case types.KeyTypeRange:
			schema.sortName = *element.AttributeName
		}
	}
	if schema.partitionName == "" {
		return schema, fmt.Errorf("ddbmap: table description has no partition key")
	}
	return schema, nil
}

// names returns the key attribute names, partition key first.
func (s keySchema) names() []string {
	if s.sortName == "" {
		return []string{s.partitionName}
	}
	return []string{s.partitionName, s.sortName}
}

// attributes translates a Key into the attribute map expected by the
// get-item and delete-item operations. The key arity must match the table's
// key schema exactly.
func (s keySchema) attributes(key Key) (Item, error) {
	if key.Partition == nil {
		return nil, &ValidationError{Path: s.partitionName, Reason: "missing partition key value"}
	}
	if s.sortName == "" && key.Sort != nil {
		return nil, &ValidationError{
			Path:   s.partitionName,
			Reason: "sort key value provided but the table has a simple primary key",
		}
	}
	if s.sortName != "" && key.Sort == nil {
		return nil, &ValidationError{Path: s.sortName, Reason: "missing sort key value"}
	}

	attrs := make(Item, 2)
	av, err := marshalKeyValue(s.partitionName, key.Partition)
	if err != nil {
		return nil, err
	}
	attrs[s.partitionName] = av

	if s.sortName != "" {
		av, err := marshalKeyValue(s.sortName, key.Sort)
		if err != nil {
			return nil, err
		}
		attrs[s.sortName] = av
	}
	return attrs, nil
}

// keyFromItem extracts the primary key values from a scanned item. Items
// missing a key attribute are malformed and abort the surrounding scan.
func (s keySchema) keyFromItem(item Item) (Key, error) {
	var key Key

	av, ok := item[s.partitionName]
	if !ok {
		return key, &ValidationError{Path: s.partitionName, Reason: "item is missing the partition key attribute"}
	}
	partition, err := unmarshalValue(s.partitionName, av)
	if err != nil {
		return key, err
	}
	key.Partition = partition

	if s.sortName != "" {
		av, ok := item[s.sortName]
		if !ok {
			return key, &ValidationError{Path: s.sortName, Reason: "item is missing the sort key attribute"}
		}
		sort, err := unmarshalValue(s.sortName, av)
		if err != nil {
			return key, err
		}
		key.Sort = sort
	}
	return key, nil
}

// marshalKeyValue encodes a key scalar, rejecting types that DynamoDB does
// not allow in key attributes.
func marshalKeyValue(path string, v KeyValue) (types.AttributeValue, error) {
	av, err := marshalValue(path, v)
	if err != nil {
		return nil, err
	}
	switch av.(type) {
	case *types.AttributeValueMemberS, *types.AttributeValueMemberN, *types.AttributeValueMemberB:
		return av, nil
	default:
		return nil, &ValidationError{Path: path, Reason: fmt.Sprintf("type %T is not a valid key type", v)}
	}
}
