package ddbmap

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is an alias for the dynamodb attribute value map.
type Item = map[string]types.AttributeValue

// Value is a native representation of a DynamoDB attribute value. A Value is
// recursively one of:
//
//   - nil
//   - string
//   - bool
//   - []byte
//   - Number (any Go integer or float is accepted on the encode side)
//   - []Value
//   - map[string]Value
//   - StringSet, NumberSet, BinarySet
//
// Values outside this grammar are rejected with a ValidationError.
type Value = any

// Number is a string-encoded DynamoDB number. Using a string representation
// preserves the full decimal precision of the stored attribute; use the
// Int64, Float64 and BigFloat methods for conversion.
type Number = attributevalue.Number

// StringSet is the native representation of a DynamoDB string set attribute.
type StringSet []string

// NumberSet is the native representation of a DynamoDB number set attribute.
type NumberSet []Number

// BinarySet is the native representation of a DynamoDB binary set attribute.
type BinarySet [][]byte

// MarshalValue encodes a native value into its DynamoDB attribute
// representation. Values outside the supported grammar return a
// ValidationError identifying the offending position.
func MarshalValue(v Value) (types.AttributeValue, error) {
	return marshalValue("", v)
}

// MarshalItem encodes a native attribute map into a DynamoDB item.
func MarshalItem(attrs map[string]Value) (Item, error) {
	item := make(Item, len(attrs))
	for name, v := range attrs {
		av, err := marshalValue(name, v)
		if err != nil {
			return nil, err
		}
		item[name] = av
	}
	return item, nil
}

func marshalValue(path string, v Value) (types.AttributeValue, error) {
	switch val := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case string:
		return &types.AttributeValueMemberS{Value: val}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: val}, nil
	case []byte:
		return &types.AttributeValueMemberB{Value: val}, nil
	case Number:
		if err := validateNumber(path, val); err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberN{Value: string(val)}, nil
	case int:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(val), 10)}, nil
	case int8:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(val), 10)}, nil
	case int16:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(val), 10)}, nil
	case int32:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(val), 10)}, nil
	case int64:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(val, 10)}, nil
	case uint:
		return &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(val), 10)}, nil
	case uint8:
		return &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(val), 10)}, nil
	case uint16:
		return &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(val), 10)}, nil
	case uint32:
		return &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(val), 10)}, nil
	case uint64:
		return &types.AttributeValueMemberN{Value: strconv.FormatUint(val, 10)}, nil
	case float32:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(float64(val), 'g', -1, 32)}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(val, 'g', -1, 64)}, nil
	case []Value:
		elems := make([]types.AttributeValue, len(val))
		for i, elem := range val {
			av, err := marshalValue(fmt.Sprintf("%s[%d]", path, i), elem)
			if err != nil {
				return nil, err
			}
			elems[i] = av
		}
		return &types.AttributeValueMemberL{Value: elems}, nil
	case map[string]Value:
		entries := make(map[string]types.AttributeValue, len(val))
		for name, elem := range val {
			av, err := marshalValue(joinPath(path, name), elem)
			if err != nil {
				return nil, err
			}
			entries[name] = av
		}
		return &types.AttributeValueMemberM{Value: entries}, nil
	case StringSet:
		if len(val) == 0 {
			return nil, &ValidationError{Path: path, Reason: "sets must not be empty"}
		}
		return &types.AttributeValueMemberSS{Value: val}, nil
	case NumberSet:
		if len(val) == 0 {
			return nil, &ValidationError{Path: path, Reason: "sets must not be empty"}
		}
		members := make([]string, len(val))
		for i, n := range val {
			if err := validateNumber(fmt.Sprintf("%s[%d]", path, i), n); err != nil {
				return nil, err
			}
			members[i] = string(n)
		}
		return &types.AttributeValueMemberNS{Value: members}, nil
	case BinarySet:
		if len(val) == 0 {
			return nil, &ValidationError{Path: path, Reason: "sets must not be empty"}
		}
		return &types.AttributeValueMemberBS{Value: val}, nil
	default:
		return nil, &ValidationError{Path: path, Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

// UnmarshalValue decodes a DynamoDB attribute value into its native
// representation. Numbers decode as Number, lists as []Value and maps as
// map[string]Value, so that MarshalValue(UnmarshalValue(av)) reproduces av.
func UnmarshalValue(av types.AttributeValue) (Value, error) {
	return unmarshalValue("", av)
}

// UnmarshalItem decodes a DynamoDB item into a native attribute map.
func UnmarshalItem(item Item) (map[string]Value, error) {
	attrs := make(map[string]Value, len(item))
	for name, av := range item {
		v, err := unmarshalValue(name, av)
		if err != nil {
			return nil, err
		}
		attrs[name] = v
	}
	return attrs, nil
}

func unmarshalValue(path string, av types.AttributeValue) (Value, error) {
	switch attr := av.(type) {
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberS:
		return attr.Value, nil
	case *types.AttributeValueMemberBOOL:
		return attr.Value, nil
	case *types.AttributeValueMemberB:
		return attr.Value, nil
	case *types.AttributeValueMemberN:
		return Number(attr.Value), nil
	case *types.AttributeValueMemberL:
		elems := make([]Value, len(attr.Value))
		for i, member := range attr.Value {
			v, err := unmarshalValue(fmt.Sprintf("%s[%d]", path, i), member)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return elems, nil
	case *types.AttributeValueMemberM:
		entries := make(map[string]Value, len(attr.Value))
		for name, member := range attr.Value {
			v, err := unmarshalValue(joinPath(path, name), member)
			if err != nil {
				return nil, err
			}
			entries[name] = v
		}
		return entries, nil
	case *types.AttributeValueMemberSS:
		return StringSet(attr.Value), nil
	case *types.AttributeValueMemberNS:
		members := make(NumberSet, len(attr.Value))
		for i, n := range attr.Value {
			members[i] = Number(n)
		}
		return members, nil
	case *types.AttributeValueMemberBS:
		return BinarySet(attr.Value), nil
	default:
		return nil, &ValidationError{Path: path, Reason: fmt.Sprintf("unsupported attribute type %T", av)}
	}
}

func validateNumber(path string, n Number) error {
	if _, _, err := big.ParseFloat(string(n), 10, 64, big.ToNearestEven); err != nil {
		return &ValidationError{Path: path, Reason: fmt.Sprintf("malformed number %q", string(n))}
	}
	return nil
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
