package storage

import "encoding/binary"

// Badger has no notion of separate buckets, so the four named sub-stores
// the distillation describes are modeled as disjoint key prefixes within a
// single keyspace, the same way the teacher's KeyEncoder models tables,
// rows, indexes and sequences as prefixes over one badger.DB
// (key_encoding.go).
const (
	prefixMetadata = "pk:"    // primary_key_to_metadata
	prefixPresent  = "opp:"   // present_operation_ids
	prefixLog      = "opl:"   // operation_id_to_operation
	keyCounter     = "meta:next_operation_id"
	keyManifest    = "meta:manifest"
)

func metadataKey(primaryKey []byte) []byte {
	return append([]byte(prefixMetadata), primaryKey...)
}

func presentKey(operationID uint64) []byte {
	return append([]byte(prefixPresent), encodeUint64(operationID)...)
}

func logKey(operationID uint64) []byte {
	return append([]byte(prefixLog), encodeUint64(operationID)...)
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
