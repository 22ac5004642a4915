package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/kurocache/recordcache/pkg/recordtype"
)

// Export is the wire format written by ExportData, adapted from the
// teacher's migration.go ExportData{Version, ExportedAt, Tables} shape to a
// single schema's worth of live records instead of a whole multi-table
// database.
type Export struct {
	Version    int                 `json:"version"`
	ExportedAt string              `json:"exported_at"`
	SchemaID   string              `json:"schema_id"`
	AppendOnly bool                `json:"append_only"`
	Records    []ExportedRecord    `json:"records"`
}

// ExportedRecord pairs a record with the operation id it was inserted
// under, for reference; ImportData reinserts it fresh through env.Insert
// rather than replaying it at this operation id.
type ExportedRecord struct {
	OperationID uint64            `json:"operation_id"`
	Record      recordtype.Record `json:"record"`
}

// MigrationManager exports and imports the live contents of a schema's
// records, grounded on the teacher's MigrationManager (migration.go).
type MigrationManager struct {
	db  *badger.DB
	env *MainEnvironment
}

// NewMigrationManager creates a new MigrationManager.
func NewMigrationManager(db *badger.DB, env *MainEnvironment) *MigrationManager {
	return &MigrationManager{db: db, env: env}
}

// ExportData writes every currently-live record under schema to w as JSON.
func (m *MigrationManager) ExportData(schema recordtype.Schema, exportedAt string, w io.Writer) error {
	export := Export{
		Version:    1,
		ExportedAt: exportedAt,
		SchemaID:   schema.Identifier.String(),
		AppendOnly: schema.IsAppendOnly(),
	}

	err := m.db.View(func(txn *badger.Txn) error {
		return m.env.PresentOperationIDs(txn, schema.IsAppendOnly(), func(operationID uint64) error {
			record, ok, err := m.env.GetByOperationID(txn, schema.IsAppendOnly(), operationID)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			export.Records = append(export.Records, ExportedRecord{
				OperationID: operationID,
				Record:      record,
			})
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("storage: exporting records: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("storage: encoding export: %w", err)
	}
	return nil
}

// ImportData reads an Export previously produced by ExportData and
// reinserts every record through env.Insert (so ids, versions and the
// operation log are recomputed fresh rather than forcibly replayed at
// their original operation ids — imports land at the end of the
// destination environment's own log, the same way the teacher's
// importTable reinserts rows into a possibly nonempty destination table).
func (m *MigrationManager) ImportData(schema recordtype.Schema, r io.Reader) (int, error) {
	var export Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return 0, fmt.Errorf("storage: decoding export: %w", err)
	}

	imported := 0
	err := m.db.Update(func(txn *badger.Txn) error {
		for _, rec := range export.Records {
			if _, _, err := m.env.Insert(txn, schema, rec.Record); err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return imported, fmt.Errorf("storage: importing records: %w", err)
	}
	return imported, nil
}

// ExportToFile is a convenience wrapper around ExportData.
func (m *MigrationManager) ExportToFile(schema recordtype.Schema, exportedAt, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("storage: creating export file: %w", err)
	}
	defer f.Close()
	return m.ExportData(schema, exportedAt, f)
}

// ImportFromFile is a convenience wrapper around ImportData.
func (m *MigrationManager) ImportFromFile(schema recordtype.Schema, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("storage: opening import file: %w", err)
	}
	defer f.Close()
	return m.ImportData(schema, f)
}
