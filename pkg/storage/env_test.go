package storage_test

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurocache/recordcache/pkg/storage"
)

// TestEndToEndWalkthrough reproduces the literal scenario walked through in
// the distillation: an empty keyed schema S, two inserts, a delete, a
// reinsert that reuses the tombstoned id, and a separate append-only
// schema S' receiving three inserts.
func TestEndToEndWalkthrough(t *testing.T) {
	db := newTestDB(t)
	env := newTestEnv(t, db)
	schema := keyedSchema()

	// (1) empty open -> count == 0
	requireCount(t, db, env, false, 0)

	// (2) insert{id:1,name:"a"} -> (record_id, op_id) == (0, 0), version == 1
	update(t, db, func(txn *badger.Txn) error {
		recordID, opID, err := env.Insert(txn, schema, keyedRecord(schema, 1, "a"))
		require.NoError(t, err)
		assert.Equal(t, uint64(0), recordID)
		assert.Equal(t, uint64(0), opID)
		return nil
	})
	view(t, db, func(txn *badger.Txn) error {
		rec, err := env.Get(txn, schema, keyedRecord(schema, 1, ""))
		require.NoError(t, err)
		assert.Equal(t, uint32(1), rec.Version)
		assert.Equal(t, "a", rec.Values[1].String())
		return nil
	})
	requireCount(t, db, env, false, 1)

	// (3) insert{id:2,name:"b"} -> (1, 1), count == 2
	update(t, db, func(txn *badger.Txn) error {
		recordID, opID, err := env.Insert(txn, schema, keyedRecord(schema, 2, "b"))
		require.NoError(t, err)
		assert.Equal(t, uint64(1), recordID)
		assert.Equal(t, uint64(1), opID)
		return nil
	})
	requireCount(t, db, env, false, 2)

	// (4) delete(pk(1)) -> (prior_version, insert_op) == (1, 0), count == 1,
	// get_by_operation_id(0, false) == None, next delete op_id == 2
	update(t, db, func(txn *badger.Txn) error {
		priorVersion, insertOpID, err := env.Delete(txn, schema, keyedRecord(schema, 1, ""))
		require.NoError(t, err)
		assert.Equal(t, uint32(1), priorVersion)
		assert.Equal(t, uint64(0), insertOpID)
		return nil
	})
	requireCount(t, db, env, false, 1)
	view(t, db, func(txn *badger.Txn) error {
		_, ok, err := env.GetByOperationID(txn, false, 0)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})

	// (5) insert{id:1,name:"a2"} -> (0, 3): id reused, version == 2
	update(t, db, func(txn *badger.Txn) error {
		recordID, opID, err := env.Insert(txn, schema, keyedRecord(schema, 1, "a2"))
		require.NoError(t, err)
		assert.Equal(t, uint64(0), recordID)
		assert.Equal(t, uint64(3), opID)
		return nil
	})
	view(t, db, func(txn *badger.Txn) error {
		rec, err := env.Get(txn, schema, keyedRecord(schema, 1, ""))
		require.NoError(t, err)
		assert.Equal(t, uint32(2), rec.Version)
		return nil
	})

	// (6) append-only schema S' in its own fresh environment: three inserts
	// land at (0,0) (1,1) (2,2), all enumerable, delete is never invoked.
	aoDB := newTestDB(t)
	aoEnv := newTestEnv(t, aoDB)
	aoSchema := appendOnlySchema()
	var ids, opIDs []uint64
	update(t, aoDB, func(txn *badger.Txn) error {
		for _, name := range []string{"x", "y", "z"} {
			recordID, opID, err := aoEnv.Insert(txn, aoSchema, appendOnlyRecord(aoSchema, name))
			require.NoError(t, err)
			ids = append(ids, recordID)
			opIDs = append(opIDs, opID)
		}
		return nil
	})
	assert.Equal(t, []uint64{0, 1, 2}, ids)
	assert.Equal(t, ids, opIDs)

	var enumerated []uint64
	view(t, aoDB, func(txn *badger.Txn) error {
		return aoEnv.PresentOperationIDs(txn, true, func(opID uint64) error {
			enumerated = append(enumerated, opID)
			return nil
		})
	})
	assert.ElementsMatch(t, []uint64{0, 1, 2}, enumerated)
}

// TestInsertDuplicatePrimaryKeyFails covers the boundary behavior:
// double-inserting the same primary key fails with ErrPrimaryKeyExists and
// leaves state untouched.
func TestInsertDuplicatePrimaryKeyFails(t *testing.T) {
	db := newTestDB(t)
	env := newTestEnv(t, db)
	schema := keyedSchema()

	update(t, db, func(txn *badger.Txn) error {
		_, _, err := env.Insert(txn, schema, keyedRecord(schema, 1, "a"))
		return err
	})

	var errAfter error
	update(t, db, func(txn *badger.Txn) error {
		_, _, err := env.Insert(txn, schema, keyedRecord(schema, 1, "dup"))
		errAfter = err
		return nil // don't abort the transaction on the expected failure
	})

	var target *storage.ErrPrimaryKeyExists
	assert.ErrorAs(t, errAfter, &target)
	requireCount(t, db, env, false, 1)
}

// TestDeleteUnknownPrimaryKeyFails covers deleting an unknown key and
// deleting an already-tombstoned key, both ErrPrimaryKeyNotFound with no
// counter advance.
func TestDeleteUnknownPrimaryKeyFails(t *testing.T) {
	db := newTestDB(t)
	env := newTestEnv(t, db)
	schema := keyedSchema()

	var err error
	update(t, db, func(txn *badger.Txn) error {
		_, _, err = env.Delete(txn, schema, keyedRecord(schema, 99, ""))
		return nil
	})
	var notFound *storage.ErrPrimaryKeyNotFound
	assert.ErrorAs(t, err, &notFound)

	update(t, db, func(txn *badger.Txn) error {
		_, _, e := env.Insert(txn, schema, keyedRecord(schema, 1, "a"))
		require.NoError(t, e)
		_, _, e = env.Delete(txn, schema, keyedRecord(schema, 1, ""))
		require.NoError(t, e)
		return nil
	})

	update(t, db, func(txn *badger.Txn) error {
		_, _, err = env.Delete(txn, schema, keyedRecord(schema, 1, ""))
		return nil
	})
	assert.ErrorAs(t, err, &notFound)
}

// TestRecordIDStableAcrossDeleteReinsert is invariant I4 / property P2.
func TestRecordIDStableAcrossDeleteReinsert(t *testing.T) {
	db := newTestDB(t)
	env := newTestEnv(t, db)
	schema := keyedSchema()

	var firstID, secondID uint64
	update(t, db, func(txn *badger.Txn) error {
		var err error
		firstID, _, err = env.Insert(txn, schema, keyedRecord(schema, 7, "a"))
		require.NoError(t, err)
		_, _, err = env.Delete(txn, schema, keyedRecord(schema, 7, ""))
		require.NoError(t, err)
		secondID, _, err = env.Insert(txn, schema, keyedRecord(schema, 7, "b"))
		require.NoError(t, err)
		return nil
	})
	assert.Equal(t, firstID, secondID)
}

// TestVersionEqualsInsertCount is property P4 / invariant I5.
func TestVersionEqualsInsertCount(t *testing.T) {
	db := newTestDB(t)
	env := newTestEnv(t, db)
	schema := keyedSchema()

	const inserts = 4
	update(t, db, func(txn *badger.Txn) error {
		for k := 1; k <= inserts; k++ {
			rec := keyedRecord(schema, 42, "v")
			_, _, err := env.Insert(txn, schema, rec)
			require.NoError(t, err)
			if k < inserts {
				_, _, err = env.Delete(txn, schema, keyedRecord(schema, 42, ""))
				require.NoError(t, err)
			}
		}
		return nil
	})

	view(t, db, func(txn *badger.Txn) error {
		rec, err := env.Get(txn, schema, keyedRecord(schema, 42, ""))
		require.NoError(t, err)
		assert.Equal(t, uint32(inserts), rec.Version)
		return nil
	})
}

// TestOperationIDsAreDenseAndMonotonic is property P3 / invariant I1.
func TestOperationIDsAreDenseAndMonotonic(t *testing.T) {
	db := newTestDB(t)
	env := newTestEnv(t, db)
	schema := keyedSchema()

	update(t, db, func(txn *badger.Txn) error {
		for i := uint64(0); i < 5; i++ {
			_, opID, err := env.Insert(txn, schema, keyedRecord(schema, i, "x"))
			require.NoError(t, err)
			assert.Equal(t, i, opID)
		}
		return nil
	})
}

// TestRoundTripEquality is property P6: both lookup paths return a
// structurally equal record with the correct version.
func TestRoundTripEquality(t *testing.T) {
	db := newTestDB(t)
	env := newTestEnv(t, db)
	schema := keyedSchema()

	inserted := keyedRecord(schema, 5, "hello")
	var opID uint64
	update(t, db, func(txn *badger.Txn) error {
		var err error
		_, opID, err = env.Insert(txn, schema, inserted)
		require.NoError(t, err)
		return nil
	})

	view(t, db, func(txn *badger.Txn) error {
		byPK, err := env.Get(txn, schema, keyedRecord(schema, 5, ""))
		require.NoError(t, err)
		byOp, ok, err := env.GetByOperationID(txn, false, opID)
		require.NoError(t, err)
		require.True(t, ok)

		assert.Equal(t, uint32(1), byPK.Version)
		assert.True(t, byPK.Values[0].Equal(inserted.Values[0]))
		assert.True(t, byPK.Values[1].Equal(inserted.Values[1]))
		assert.True(t, byPK.Equal(byOp))
		return nil
	})
}

// TestPresentSetMatchesLiveMetadata is property P1 / invariant I3.
func TestPresentSetMatchesLiveMetadata(t *testing.T) {
	db := newTestDB(t)
	env := newTestEnv(t, db)
	schema := keyedSchema()

	update(t, db, func(txn *badger.Txn) error {
		for i := uint64(0); i < 3; i++ {
			_, _, err := env.Insert(txn, schema, keyedRecord(schema, i, "x"))
			require.NoError(t, err)
		}
		_, _, err := env.Delete(txn, schema, keyedRecord(schema, 1, ""))
		require.NoError(t, err)
		return nil
	})

	var present []uint64
	view(t, db, func(txn *badger.Txn) error {
		return env.PresentOperationIDs(txn, false, func(opID uint64) error {
			present = append(present, opID)
			return nil
		})
	})
	assert.ElementsMatch(t, []uint64{0, 2}, present)
	requireCount(t, db, env, false, 2)
}

// TestAppendOnlyDeleteNotSupported covers §4.3's note that append-only
// schemas have no keyed metadata to delete and so always fail
// ErrPrimaryKeyNotFound.
func TestAppendOnlyDeleteNotSupported(t *testing.T) {
	db := newTestDB(t)
	env := newTestEnv(t, db)
	schema := appendOnlySchema()

	update(t, db, func(txn *badger.Txn) error {
		_, _, err := env.Insert(txn, schema, appendOnlyRecord(schema, "x"))
		require.NoError(t, err)
		return nil
	})

	var err error
	update(t, db, func(txn *badger.Txn) error {
		_, _, err = env.Delete(txn, schema, appendOnlyRecord(schema, "x"))
		return nil
	})
	var notFound *storage.ErrPrimaryKeyNotFound
	assert.ErrorAs(t, err, &notFound)
}

// TestSchemaMismatchRejected exercises the always-on consistency check.
func TestSchemaMismatchRejected(t *testing.T) {
	db := newTestDB(t)
	env := newTestEnv(t, db)
	schema := keyedSchema()
	other := appendOnlySchema()

	rec := keyedRecord(schema, 1, "a")
	rec.SchemaID = other.Identifier

	update(t, db, func(txn *badger.Txn) error {
		_, _, err := env.Insert(txn, schema, rec)
		assert.Error(t, err)
		return nil
	})
}

func requireCount(t *testing.T, db *badger.DB, env *storage.MainEnvironment, appendOnly bool, want int) {
	t.Helper()
	view(t, db, func(txn *badger.Txn) error {
		got, err := env.Count(txn, appendOnly)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		return nil
	})
}

func update(t *testing.T, db *badger.DB, fn func(txn *badger.Txn) error) {
	t.Helper()
	require.NoError(t, db.Update(fn))
}

func view(t *testing.T, db *badger.DB, fn func(txn *badger.Txn) error) {
	t.Helper()
	require.NoError(t, db.View(fn))
}
