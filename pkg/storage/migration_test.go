package storage_test

import (
	"bytes"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurocache/recordcache/pkg/storage"
)

func TestMigrationManagerExportImport(t *testing.T) {
	srcDB := newTestDB(t)
	srcEnv := newTestEnv(t, srcDB)
	schema := keyedSchema()

	update(t, srcDB, func(txn *badger.Txn) error {
		for i := uint64(1); i <= 3; i++ {
			_, _, err := srcEnv.Insert(txn, schema, keyedRecord(schema, i, "row"))
			require.NoError(t, err)
		}
		return nil
	})

	srcMgr := storage.NewMigrationManager(srcDB, srcEnv)
	var buf bytes.Buffer
	require.NoError(t, srcMgr.ExportData(schema, "2026-07-31T00:00:00Z", &buf))
	assert.True(t, buf.Len() > 0)

	dstDB := newTestDB(t)
	dstEnv := newTestEnv(t, dstDB)
	dstMgr := storage.NewMigrationManager(dstDB, dstEnv)

	imported, err := dstMgr.ImportData(schema, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	requireCount(t, dstDB, dstEnv, false, 3)
}
