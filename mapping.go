package ddbmap

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Mapping presents a DynamoDB table as an associative container: point
// lookups, whole-value writes, deletes, membership tests and lazy iteration
// over keys, values and key-value pairs.
//
//	mapping, err := ddbmap.New(ctx, "products", ddbmap.Config{})
//	if err != nil {
//	    return err
//	}
//
//	err = mapping.Set(ctx, ddbmap.SimpleKey("chair"), map[string]ddbmap.Value{
//	    "description": "foo",
//	    "price":       123,
//	})
//	value, err := mapping.Get(ctx, ddbmap.SimpleKey("chair"))
//
// All operations are synchronous, blocking calls to the DynamoDB client;
// the mapping owns no connection pool and performs no retries. Concurrent
// use of a single Mapping is only as safe as the underlying client.
type Mapping struct {
	table *Table
}

// New connects the mapping to a DynamoDB table. The configuration is
// resolved exactly once; the table's key schema is discovered here with a
// describe-table call.
func New(ctx context.Context, tableName string, cfg Config) (*Mapping, error) {
	client, err := cfg.resolveClient(ctx)
	if err != nil {
		return nil, err
	}
	table, err := newTable(ctx, tableName, client, cfg.logger())
	if err != nil {
		return nil, err
	}
	return &Mapping{table: table}, nil
}

// Table returns the underlying table facade.
func (m *Mapping) Table() *Table { return m.table }

// Get retrieves the value stored under key, or ErrKeyNotFound if the key is
// absent. The returned map is a detached copy: mutating it does not change
// the stored item. Persist changes with Set, or use Update for
// attribute-level modifications.
func (m *Mapping) Get(ctx context.Context, key Key) (map[string]Value, error) {
	attrs, err := m.table.keys.attributes(key)
	if err != nil {
		return nil, err
	}
	item, err := m.table.getItem(ctx, attrs)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return UnmarshalItem(item)
}

// Set creates or replaces the item stored under key. Replacement is total:
// any previous value under the key is discarded, never merged. Attributes
// colliding with the table's key attribute names are overwritten by the key
// values.
func (m *Mapping) Set(ctx context.Context, key Key, value map[string]Value) error {
	keyAttrs, err := m.table.keys.attributes(key)
	if err != nil {
		return err
	}
	item, err := MarshalItem(value)
	if err != nil {
		return err
	}
	for name, av := range keyAttrs {
		item[name] = av
	}
	return m.table.putItem(ctx, item)
}

// Delete removes the item stored under key, or returns ErrKeyNotFound if
// the key is absent. The existence check costs one extra read before the
// delete; the check and the delete are not atomic.
func (m *Mapping) Delete(ctx context.Context, key Key) error {
	attrs, err := m.table.keys.attributes(key)
	if err != nil {
		return err
	}
	item, err := m.table.getItem(ctx, attrs)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return m.table.deleteItem(ctx, attrs)
}

// Contains reports whether an item exists under key. An absent key is a
// negative answer, not an error.
func (m *Mapping) Contains(ctx context.Context, key Key) (bool, error) {
	attrs, err := m.table.keys.attributes(key)
	if err != nil {
		return false, err
	}
	item, err := m.table.getItem(ctx, attrs)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

// Len returns the item count from the table metadata, verbatim. The service
// refreshes the count approximately every six hours, so the figure is a
// best-effort estimate and will lag behind recent writes. Counting the
// elements of Keys is the exact, and expensive, alternative.
func (m *Mapping) Len(ctx context.Context) (int64, error) {
	return m.table.itemCount(ctx)
}

// Update modifies individual attributes of the item stored under key,
// leaving unnamed attributes untouched. Non-nil change values are set; nil
// change values remove the attribute. An empty change set is a no-op.
func (m *Mapping) Update(ctx context.Context, key Key, changes map[string]Value) error {
	keyAttrs, err := m.table.keys.attributes(key)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		m.table.log.Warn("no update expression was built: empty change set", "table", m.table.name)
		return nil
	}

	// Attribute names go through placeholders so reserved words are safe.
	// Names are sorted for a deterministic expression.
	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		setParts    []string
		removeParts []string
		exprNames   = make(map[string]string, len(changes))
		exprValues  = make(Item)
	)
	for idx, name := range names {
		namePlaceholder := fmt.Sprintf("#key%d", idx)
		exprNames[namePlaceholder] = name
		if changes[name] == nil {
			removeParts = append(removeParts, namePlaceholder)
			continue
		}
		av, err := marshalValue(name, changes[name])
		if err != nil {
			return err
		}
		valuePlaceholder := fmt.Sprintf(":value%d", idx)
		exprValues[valuePlaceholder] = av
		setParts = append(setParts, namePlaceholder+" = "+valuePlaceholder)
	}

	var clauses []string
	if len(setParts) > 0 {
		clauses = append(clauses, "SET "+strings.Join(setParts, ", "))
	}
	if len(removeParts) > 0 {
		clauses = append(clauses, "REMOVE "+strings.Join(removeParts, ", "))
	}

	return m.table.updateItem(ctx, keyAttrs, strings.Join(clauses, " "), exprNames, exprValues)
}

// Keys returns a fresh iterator over the keys of the table. The scan
// projects only the key attributes, so full item payloads are never
// transferred.
func (m *Mapping) Keys() *ScanIterator {
	return newScanIterator(m.table, m.table.keys.names())
}

// Values returns a fresh iterator over the values of the table.
func (m *Mapping) Values() *ScanIterator {
	return newScanIterator(m.table, nil)
}

// Items returns a fresh iterator over the (key, value) pairs of the table.
func (m *Mapping) Items() *ScanIterator {
	return newScanIterator(m.table, nil)
}

// Scan returns a fresh iterator over the raw items of the table. It is
// equivalent to Items and exists for symmetry with the underlying scan
// operation.
func (m *Mapping) Scan() *ScanIterator {
	return newScanIterator(m.table, nil)
}
