package storage_test

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kurocache/recordcache/pkg/recordtype"
	"github.com/kurocache/recordcache/pkg/storage"
)

// newTestDB opens an in-memory Badger instance for a single test, following
// the teacher's own test style (datasource_test.go, migration_test.go):
// testify require, in-memory store, no temp directory needed since this
// package never asserts on on-disk layout.
func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestEnv(t *testing.T, db *badger.DB) *storage.MainEnvironment {
	t.Helper()
	env, err := storage.Open(db, true, nil)
	require.NoError(t, err)
	return env
}

// keyedSchema builds schema S from the walkthrough: primary key id:UInt,
// payload name:String.
func keyedSchema() recordtype.Schema {
	return recordtype.Schema{
		Identifier: uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Fields: []recordtype.Field{
			{Name: "id", Type: recordtype.FieldTypeUInt},
			{Name: "name", Type: recordtype.FieldTypeString},
		},
		PrimaryIndex: []int{0},
	}
}

// appendOnlySchema builds schema S': the same payload shape, no primary key.
func appendOnlySchema() recordtype.Schema {
	return recordtype.Schema{
		Identifier: uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		Fields: []recordtype.Field{
			{Name: "name", Type: recordtype.FieldTypeString},
		},
	}
}

func keyedRecord(schema recordtype.Schema, id uint64, name string) recordtype.Record {
	return recordtype.Record{
		SchemaID: schema.Identifier,
		Values:   []recordtype.Value{recordtype.NewUInt(id), recordtype.NewString(name)},
	}
}

func appendOnlyRecord(schema recordtype.Schema, name string) recordtype.Record {
	return recordtype.Record{
		SchemaID: schema.Identifier,
		Values:   []recordtype.Value{recordtype.NewString(name)},
	}
}
