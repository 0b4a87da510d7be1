package store

import (
	"errors"
	"fmt"

	"github.com/abhisek/lexiz/internal/vocab"
)

// ErrStorage matches every error produced by the persistence layer.
var ErrStorage = errors.New("storage error")

// ErrCorrupt indicates a stored record exists but does not decode or
// validate against its schema. It also matches vocab.ErrNotFound so callers
// can treat corruption like a missing record.
var ErrCorrupt = &corruptError{}

type corruptError struct{}

func (*corruptError) Error() string { return "corrupt record" }

func (*corruptError) Is(target error) bool { return target == vocab.ErrNotFound }

// StorageError wraps a failure of the underlying key-value medium.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// CorruptRecordError reports a record that failed to decode or validate.
type CorruptRecordError struct {
	Key string
	Err error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record %q: %v", e.Key, e.Err)
}

func (e *CorruptRecordError) Unwrap() []error { return []error{ErrCorrupt, e.Err} }
