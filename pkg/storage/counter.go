package storage

import (
	"github.com/dgraph-io/badger/v4"
)

// nextOperationID implements the distillation's fetch_add over
// next_operation_id. It reads and increments the counter inside txn, the
// same read/write transaction performing the insert or delete this id is
// for, so an aborted transaction burns no ids — exactly the design note
// this package is built against (badger's own leased/banked
// badger.Sequence, which the teacher uses for auto-increment columns in
// transaction.go's SequenceManager, does not give this guarantee, since it
// hands out ids from a pre-committed lease independent of any one
// transaction's outcome; that is why this package rolls its own counter
// instead of reusing SequenceManager).
func nextOperationID(txn *badger.Txn) (uint64, error) {
	var current uint64
	item, err := txn.Get([]byte(keyCounter))
	switch {
	case err == nil:
		if verr := item.Value(func(val []byte) error {
			current = decodeUint64(val)
			return nil
		}); verr != nil {
			return 0, NewErrStorage("read next_operation_id", verr)
		}
	case err == badger.ErrKeyNotFound:
		current = 0
	default:
		return 0, NewErrStorage("read next_operation_id", err)
	}

	if err := txn.Set([]byte(keyCounter), encodeUint64(current+1)); err != nil {
		return 0, NewErrStorage("advance next_operation_id", err)
	}
	return current, nil
}

// peekNextOperationID returns the counter's current value without advancing
// it, used by the read-only diagnostics in MaintenanceManager.GetStats.
func peekNextOperationID(txn *badger.Txn) (uint64, error) {
	item, err := txn.Get([]byte(keyCounter))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, NewErrStorage("read next_operation_id", err)
	}
	var v uint64
	err = item.Value(func(val []byte) error {
		v = decodeUint64(val)
		return nil
	})
	if err != nil {
		return 0, NewErrStorage("read next_operation_id", err)
	}
	return v, nil
}
