package ddbmap

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by Get and Delete when no item exists under the
// requested key. Contains treats it as a negative answer instead of an error.
var ErrKeyNotFound = errors.New("ddbmap: key not found")

// ValidationError is returned when a native value falls outside the
// representable DynamoDB value grammar. Path identifies the offending value
// inside a nested structure, e.g. "details.tags[2]".
type ValidationError struct {
	Path   string // location of the offending value, empty for the root
	Reason string // human readable description of the violation
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("ddbmap: invalid value: %s", e.Reason)
	}
	return fmt.Sprintf("ddbmap: invalid value at %s: %s", e.Path, e.Reason)
}

// ServiceError wraps a failure reported by the DynamoDB client. The adapter
// performs no retries; the underlying error is preserved verbatim so callers
// can apply their own retry policy or inspect the AWS error chain.
type ServiceError struct {
	Op    string // the failing operation, e.g. "GetItem"
	Table string // the table the operation targeted
	Err   error  // the error returned by the client
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ddbmap: %s on table %s: %v", e.Op, e.Table, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func serviceError(op, table string, err error) error {
	return &ServiceError{Op: op, Table: table, Err: err}
}
