// Package storage implements the Main Environment: the transactional
// record cache that assigns stable record ids, versions every record, logs
// every insert and delete as an addressable monotonic operation, and serves
// point lookups by primary key and by operation id, all backed by a single
// Badger database.
package storage

import (
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/kurocache/recordcache/pkg/recordtype"
)

// MainEnvironment drives the four sub-stores described in keys.go over a
// single *badger.DB. It holds no per-call state of its own; every method
// takes the caller's transaction and operates entirely within it, per the
// concurrency model: one live read/write transaction at a time, any number
// of concurrent read-only snapshots.
type MainEnvironment struct {
	db     *badger.DB
	logger *zap.Logger
	pkEnc  *recordtype.PrimaryKeyEncoder
}

// Open opens the Main Environment over db. If createIfNotExist is false and
// the environment has never been initialized (no manifest key present),
// Open fails rather than silently creating the sub-stores.
func Open(db *badger.DB, createIfNotExist bool, logger *zap.Logger) (*MainEnvironment, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	env := &MainEnvironment{db: db, logger: logger, pkEnc: recordtype.NewPrimaryKeyEncoder()}

	err := db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyManifest))
		switch {
		case err == nil:
			return nil
		case err == badger.ErrKeyNotFound:
			if !createIfNotExist {
				return NewErrStorage("open", errEnvironmentNotInitialized)
			}
			return txn.Set([]byte(keyManifest), []byte("main_environment/v1"))
		default:
			return NewErrStorage("open", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return env, nil
}

var errEnvironmentNotInitialized = errNotInitialized{}

type errNotInitialized struct{}

func (errNotInitialized) Error() string {
	return "main environment not initialized and createIfNotExist is false"
}

// Insert assigns a record id (or reuses a stable one for a reinserted
// primary key), versions the record, appends an Insert operation to the
// log, and marks that operation present. See the distillation's §4.2 for
// the full algorithm. The operation id is allocated only after the
// consistency and primary-key checks pass, so a failed insert leaves the
// counter untouched even if the caller commits the transaction.
func (e *MainEnvironment) Insert(txn *badger.Txn, schema recordtype.Schema, record recordtype.Record) (recordID uint64, operationID uint64, err error) {
	if err := recordtype.CheckConsistency(schema, record); err != nil {
		return 0, 0, err
	}

	if schema.IsAppendOnly() {
		operationID, err = nextOperationID(txn)
		if err != nil {
			return 0, 0, err
		}
		record.Version = 1
		recordID = operationID
		if err := e.appendLog(txn, operationID, NewInsertOperation(recordID, record)); err != nil {
			return 0, 0, err
		}
		return recordID, operationID, nil
	}

	primaryKey, err := e.pkEnc.Encode(schema, record)
	if err != nil {
		return 0, 0, err
	}

	existing, found, err := e.getMetadata(txn, primaryKey)
	if err != nil {
		return 0, 0, err
	}

	var meta RecordMetadata
	switch {
	case !found:
		count, err := e.metadataCount(txn)
		if err != nil {
			return 0, 0, err
		}
		meta = RecordMetadata{ID: count, Version: 1}
	case existing.Present:
		return 0, 0, NewErrPrimaryKeyExists(primaryKey)
	default:
		meta = RecordMetadata{ID: existing.ID, Version: existing.Version + 1}
	}

	operationID, err = nextOperationID(txn)
	if err != nil {
		return 0, 0, err
	}

	meta.Present = true
	meta.InsertOperationID = operationID
	if err := e.putMetadata(txn, primaryKey, meta); err != nil {
		return 0, 0, err
	}

	if err := e.markPresent(txn, operationID); err != nil {
		return 0, 0, err
	}

	record.Version = meta.Version
	if err := e.appendLog(txn, operationID, NewInsertOperation(meta.ID, record)); err != nil {
		return 0, 0, err
	}

	return meta.ID, operationID, nil
}

// Delete tombstones the live record at record's primary key. The returned
// priorVersion is the version the record held immediately before deletion —
// delete does not mint a new version (see DESIGN.md's Open Question
// decision).
func (e *MainEnvironment) Delete(txn *badger.Txn, schema recordtype.Schema, record recordtype.Record) (priorVersion uint32, insertOperationID uint64, err error) {
	if schema.IsAppendOnly() {
		return 0, 0, NewErrPrimaryKeyNotFound(nil)
	}

	primaryKey, err := e.pkEnc.Encode(schema, record)
	if err != nil {
		return 0, 0, err
	}

	meta, found, err := e.getMetadata(txn, primaryKey)
	if err != nil {
		return 0, 0, err
	}
	if !found || !meta.Present {
		return 0, 0, NewErrPrimaryKeyNotFound(primaryKey)
	}

	insertOperationID = meta.InsertOperationID
	priorVersion = meta.Version

	tombstoned := RecordMetadata{ID: meta.ID, Version: meta.Version, Present: false}
	if err := e.putMetadata(txn, primaryKey, tombstoned); err != nil {
		return 0, 0, err
	}

	if err := e.unmarkPresent(txn, insertOperationID); err != nil {
		return 0, 0, err
	}

	tombstoneOperationID, err := nextOperationID(txn)
	if err != nil {
		return 0, 0, err
	}
	if err := e.appendLog(txn, tombstoneOperationID, NewDeleteOperation(insertOperationID)); err != nil {
		return 0, 0, err
	}

	return priorVersion, insertOperationID, nil
}

// Get returns the live record for the primary key carried by record, or
// ErrPrimaryKeyNotFound if there is none.
func (e *MainEnvironment) Get(txn *badger.Txn, schema recordtype.Schema, record recordtype.Record) (recordtype.Record, error) {
	if schema.IsAppendOnly() {
		return recordtype.Record{}, NewErrPrimaryKeyNotFound(nil)
	}
	primaryKey, err := e.pkEnc.Encode(schema, record)
	if err != nil {
		return recordtype.Record{}, err
	}
	meta, found, err := e.getMetadata(txn, primaryKey)
	if err != nil {
		return recordtype.Record{}, err
	}
	if !found || !meta.Present {
		return recordtype.Record{}, NewErrPrimaryKeyNotFound(primaryKey)
	}

	op, ok, err := e.readLog(txn, meta.InsertOperationID)
	if err != nil {
		return recordtype.Record{}, err
	}
	if !ok || op.Kind != OperationKindInsert {
		panicInconsistent(e.logger, "primary_key_to_metadata references an insert operation id that is not an Insert operation in the log")
	}
	return op.Record, nil
}

// GetByOperationID returns the record inserted by operationID, or (false,
// nil) if that operation id is not currently present (keyed schemas only —
// append-only schemas have no tombstones, so every log entry is live).
func (e *MainEnvironment) GetByOperationID(txn *badger.Txn, appendOnly bool, operationID uint64) (recordtype.Record, bool, error) {
	if !appendOnly {
		present, err := e.isPresent(txn, operationID)
		if err != nil {
			return recordtype.Record{}, false, err
		}
		if !present {
			return recordtype.Record{}, false, nil
		}
	}

	op, ok, err := e.readLog(txn, operationID)
	if err != nil {
		return recordtype.Record{}, false, err
	}
	if !ok {
		if appendOnly {
			return recordtype.Record{}, false, nil
		}
		panicInconsistent(e.logger, "present_operation_ids references an operation id with no log entry")
	}
	if op.Kind != OperationKindInsert {
		panicInconsistent(e.logger, "present_operation_ids references an operation id that is not an Insert operation in the log")
	}
	return op.Record, true, nil
}

// Count returns the number of live records: the log size for append-only
// schemas, or the present-set size for keyed schemas.
func (e *MainEnvironment) Count(txn *badger.Txn, appendOnly bool) (int, error) {
	prefix := []byte(prefixLog)
	if !appendOnly {
		prefix = []byte(prefixPresent)
	}
	return e.countPrefix(txn, prefix)
}

// PresentOperationIDs visits every currently-live operation id — the full
// log's keys for append-only schemas, or the present-set's keys for keyed
// schemas — calling visit once per id in ascending order. It stops and
// returns visit's error as soon as visit returns one. The sequence is valid
// only for the lifetime of txn.
func (e *MainEnvironment) PresentOperationIDs(txn *badger.Txn, appendOnly bool, visit func(operationID uint64) error) error {
	prefix := []byte(prefixLog)
	if !appendOnly {
		prefix = []byte(prefixPresent)
	}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		operationID := decodeUint64(key[len(prefix):])
		if err := visit(operationID); err != nil {
			return err
		}
	}
	return nil
}
