package wiki

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for link graph operations
var (
	ErrMissingField   = errors.New("required field missing")
	ErrLinkNotFound   = errors.New("link not found")
	ErrLoadInProgress = errors.New("load session in progress")
	ErrNoLoadSession  = errors.New("no load session open")
	ErrInvalidLink    = errors.New("invalid link record")
)

// ParseError reports a dump block that could not be turned into a PageRecord.
// It is fatal for that one block only.
type ParseError struct {
	Field     string
	StartByte int64
	StopByte  int64
	Err       error
}

func (e *ParseError) Error() string {
	if e.StartByte >= 0 && e.StopByte >= 0 {
		return fmt.Sprintf("parse %s (bytes %d-%d): %v", e.Field, e.StartByte, e.StopByte, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError reports a failure of the backing store: acquiring a
// connection, bulk import or query execution.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err for op. A nil err yields nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// ConfigurationError reports a setting the system refuses to run with, such
// as a backend that cannot do staged bulk imports.
type ConfigurationError struct {
	Setting string
	Value   string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s=%q: %v", e.Setting, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
