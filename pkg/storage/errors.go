package storage

import (
	"fmt"

	"go.uber.org/zap"
)

// ErrPrimaryKeyNotFound is returned by Get and Delete when no live metadata
// entry matches the requested primary key.
type ErrPrimaryKeyNotFound struct {
	PrimaryKey []byte
}

func (e *ErrPrimaryKeyNotFound) Error() string {
	return fmt.Sprintf("primary key %x not found", e.PrimaryKey)
}

// NewErrPrimaryKeyNotFound creates a new ErrPrimaryKeyNotFound.
func NewErrPrimaryKeyNotFound(primaryKey []byte) *ErrPrimaryKeyNotFound {
	return &ErrPrimaryKeyNotFound{PrimaryKey: primaryKey}
}

// ErrPrimaryKeyExists is returned by Insert when live metadata already
// exists for the record's primary key.
type ErrPrimaryKeyExists struct {
	PrimaryKey []byte
}

func (e *ErrPrimaryKeyExists) Error() string {
	return fmt.Sprintf("primary key %x already exists", e.PrimaryKey)
}

// NewErrPrimaryKeyExists creates a new ErrPrimaryKeyExists.
func NewErrPrimaryKeyExists(primaryKey []byte) *ErrPrimaryKeyExists {
	return &ErrPrimaryKeyExists{PrimaryKey: primaryKey}
}

// ErrStorage wraps an underlying KV-store fault (I/O, encoding) so callers
// can distinguish it from the two recoverable errors above without the
// Main Environment ever converting a real storage fault into one of them.
type ErrStorage struct {
	Op  string
	Err error
}

func (e *ErrStorage) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *ErrStorage) Unwrap() error { return e.Err }

// NewErrStorage creates a new ErrStorage.
func NewErrStorage(op string, err error) *ErrStorage {
	return &ErrStorage{Op: op, Err: err}
}

// Inconsistency is the panic value raised when the Main Environment detects
// that its own invariants have been violated: a log miss behind a
// referenced insert-operation-id, re-insertion of a supposedly-fresh
// operation id, or a missing present-op entry on delete. These are never
// returned as errors — the source environment treats them as unrecoverable
// corruption, not business-logic failures, and so does this one.
type Inconsistency struct {
	Message string
}

func (i Inconsistency) String() string { return i.Message }

// panicInconsistent logs a final diagnostic and panics with Inconsistency.
// Kept as a single chokepoint so every fatal invariant violation in this
// package is logged identically before the process dies.
func panicInconsistent(logger *zap.Logger, message string) {
	if logger != nil {
		logger.Error("main environment inconsistency detected", zap.String("message", message))
	}
	panic(Inconsistency{Message: message})
}
