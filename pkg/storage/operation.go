package storage

import (
	"encoding/json"
	"fmt"

	"github.com/kurocache/recordcache/pkg/recordtype"
)

// OperationKind discriminates the Operation tagged union.
type OperationKind string

const (
	OperationKindInsert OperationKind = "insert"
	OperationKindDelete OperationKind = "delete"
)

// Operation is a single append-only entry in operation_id_to_operation.
// Exactly one of RecordID/Record (Kind == OperationKindInsert) or
// DeleteOperationID (Kind == OperationKindDelete) is meaningful at a time;
// the exact wire bytes are not part of the external contract, only the
// round-trip behavior is.
type Operation struct {
	Kind     OperationKind     `json:"kind"`
	RecordID uint64            `json:"record_id,omitempty"`
	Record   recordtype.Record `json:"record"`

	DeleteOperationID uint64 `json:"delete_operation_id,omitempty"`
}

// NewInsertOperation builds an Insert operation.
func NewInsertOperation(recordID uint64, record recordtype.Record) Operation {
	return Operation{Kind: OperationKindInsert, RecordID: recordID, Record: record}
}

// NewDeleteOperation builds a Delete operation referencing the
// insert-operation-id it tombstones.
func NewDeleteOperation(insertOperationID uint64) Operation {
	return Operation{Kind: OperationKindDelete, DeleteOperationID: insertOperationID}
}

// encodeOperation serializes op with encoding/json, following the same
// codec convention the teacher repo uses for every comparable concern
// (row_codec.go's RowCodec/TableInfoCodec/IndexValueCodec all marshal
// through encoding/json rather than a binary format).
func encodeOperation(op Operation) ([]byte, error) {
	b, err := json.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("storage: encoding operation: %w", err)
	}
	return b, nil
}

func decodeOperation(data []byte) (Operation, error) {
	var op Operation
	if err := json.Unmarshal(data, &op); err != nil {
		return Operation{}, fmt.Errorf("storage: decoding operation: %w", err)
	}
	return op, nil
}
