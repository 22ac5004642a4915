package storage

import (
	"github.com/dgraph-io/badger/v4"
)

func (e *MainEnvironment) getMetadata(txn *badger.Txn, primaryKey []byte) (RecordMetadata, bool, error) {
	item, err := txn.Get(metadataKey(primaryKey))
	if err == badger.ErrKeyNotFound {
		return RecordMetadata{}, false, nil
	}
	if err != nil {
		return RecordMetadata{}, false, NewErrStorage("read primary_key_to_metadata", err)
	}
	var meta RecordMetadata
	err = item.Value(func(val []byte) error {
		meta = decodeRecordMetadata(e.logger, val)
		return nil
	})
	if err != nil {
		return RecordMetadata{}, false, NewErrStorage("read primary_key_to_metadata", err)
	}
	return meta, true, nil
}

func (e *MainEnvironment) putMetadata(txn *badger.Txn, primaryKey []byte, meta RecordMetadata) error {
	if err := txn.Set(metadataKey(primaryKey), encodeRecordMetadata(meta)); err != nil {
		return NewErrStorage("write primary_key_to_metadata", err)
	}
	return nil
}

// metadataCount returns the current cardinality of primary_key_to_metadata.
// This is also the next dense record id to allocate, which only holds
// because metadata entries are tombstoned, never removed (see the
// distillation's §4.2 rationale and §9 design note).
func (e *MainEnvironment) metadataCount(txn *badger.Txn) (uint64, error) {
	n, err := e.countPrefix(txn, []byte(prefixMetadata))
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (e *MainEnvironment) markPresent(txn *badger.Txn, operationID uint64) error {
	key := presentKey(operationID)
	if _, err := txn.Get(key); err == nil {
		panicInconsistent(e.logger, "present_operation_ids already contains an operation id that was just allocated")
	} else if err != badger.ErrKeyNotFound {
		return NewErrStorage("read present_operation_ids", err)
	}
	if err := txn.Set(key, []byte{1}); err != nil {
		return NewErrStorage("write present_operation_ids", err)
	}
	return nil
}

func (e *MainEnvironment) unmarkPresent(txn *badger.Txn, operationID uint64) error {
	key := presentKey(operationID)
	if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
		panicInconsistent(e.logger, "present_operation_ids is missing the insert operation id being deleted")
	} else if err != nil {
		return NewErrStorage("read present_operation_ids", err)
	}
	if err := txn.Delete(key); err != nil {
		return NewErrStorage("delete present_operation_ids entry", err)
	}
	return nil
}

func (e *MainEnvironment) isPresent(txn *badger.Txn, operationID uint64) (bool, error) {
	_, err := txn.Get(presentKey(operationID))
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, NewErrStorage("read present_operation_ids", err)
	}
	return true, nil
}

func (e *MainEnvironment) appendLog(txn *badger.Txn, operationID uint64, op Operation) error {
	key := logKey(operationID)
	if _, err := txn.Get(key); err == nil {
		panicInconsistent(e.logger, "operation id already exists in operation_id_to_operation")
	} else if err != badger.ErrKeyNotFound {
		return NewErrStorage("read operation_id_to_operation", err)
	}
	data, err := encodeOperation(op)
	if err != nil {
		return err
	}
	if err := txn.Set(key, data); err != nil {
		return NewErrStorage("write operation_id_to_operation", err)
	}
	return nil
}

func (e *MainEnvironment) readLog(txn *badger.Txn, operationID uint64) (Operation, bool, error) {
	item, err := txn.Get(logKey(operationID))
	if err == badger.ErrKeyNotFound {
		return Operation{}, false, nil
	}
	if err != nil {
		return Operation{}, false, NewErrStorage("read operation_id_to_operation", err)
	}
	var op Operation
	err = item.Value(func(val []byte) error {
		decoded, derr := decodeOperation(val)
		if derr != nil {
			return derr
		}
		op = decoded
		return nil
	})
	if err != nil {
		return Operation{}, false, NewErrStorage("decode operation_id_to_operation", err)
	}
	return op, true, nil
}

func (e *MainEnvironment) countPrefix(txn *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	count := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		count++
	}
	return count, nil
}
