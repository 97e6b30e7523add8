package ddbmap

import (
	"context"
)

// ScanIterator walks the table as a lazy, finite, forward-only sequence of
// (key, value) pairs. Pages are fetched on demand: advancing past the end of
// the current page issues a single scan request for the next page, so a
// consumer that stops early never pays for the rest of the table. Items are
// decoded at consumption time, when Next advances onto them.
//
// The iterator is not restartable; Keys, Values, Items and Scan on the
// mapping return a fresh iterator starting from the beginning of the table.
// Abandoning an iterator requires no cleanup: each page fetch is a discrete
// request with no held connection or server-side cursor.
//
//	it := mapping.Items()
//	for it.Next(ctx) {
//	    fmt.Println(it.Key(), it.Value())
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
//
// Iteration order is whatever the underlying scan yields; it is not
// insertion order, and concurrent writes may change it between full scans.
type ScanIterator struct {
	table      *Table
	projection []string // nil for full items, key names for keys-only scans

	page     []Item // current raw page
	pos      int    // read cursor into page
	startKey Item   // continuation token for the next page fetch
	started  bool   // at least one page has been fetched
	done     bool
	err      error

	key   Key
	value map[string]Value
}

func newScanIterator(table *Table, projection []string) *ScanIterator {
	return &ScanIterator{
		table:      table,
		projection: projection,
	}
}

// Next advances the iterator to the next item, fetching the next scan page
// when the current one is exhausted. It returns false when the sequence ends
// or an error occurs; check Err after iteration. The context applies to the
// page fetch performed by this call, if any.
func (it *ScanIterator) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}
	for {
		if it.pos < len(it.page) {
			raw := it.page[it.pos]
			it.pos++
			return it.consume(raw)
		}
		if it.started && it.startKey == nil {
			it.done = true
			return false
		}
		items, next, err := it.table.scanPage(ctx, it.startKey, it.projection)
		if err != nil {
			it.err = err
			it.done = true
			return false
		}
		it.started = true
		it.page = items
		it.pos = 0
		it.startKey = next
		// The service may legally return an empty page with a continuation
		// token; loop until items arrive or the token runs out.
	}
}

// consume decodes a raw item into the current key and value. A decode
// failure is fatal for the iterator: skipping undecodable items would
// silently corrupt the sequence.
func (it *ScanIterator) consume(raw Item) bool {
	key, err := it.table.keys.keyFromItem(raw)
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	value, err := UnmarshalItem(raw)
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	it.key = key
	it.value = value
	return true
}

// Key returns the primary key of the current item. Valid only after a call
// to Next returned true.
func (it *ScanIterator) Key() Key { return it.key }

// Value returns the decoded attributes of the current item, including the
// key attributes, as a detached copy. Valid only after a call to Next
// returned true. For keys-only iterators the value contains the key
// attributes alone.
func (it *ScanIterator) Value() map[string]Value { return it.value }

// Err returns the first error encountered during iteration, if any.
func (it *ScanIterator) Err() error { return it.err }
