package storage

import (
	"encoding/binary"

	"go.uber.org/zap"
)

// recordMetadataSize is the exact on-disk size of a RecordMetadata entry.
// Decoding is total on inputs of exactly this length; any other length is
// fatal store-level corruption (see decodeRecordMetadata).
const recordMetadataSize = 21

// RecordMetadata is the fixed-layout value stored per primary key in
// primary_key_to_metadata:
//
//	offset 0,  8 bytes, big-endian: record id
//	offset 8,  4 bytes, big-endian: version
//	offset 12, 1 byte:              presence tag (0 = tombstoned, 1 = live)
//	offset 13, 8 bytes, big-endian: insert operation id (valid iff tag == 1)
//
// Big-endian is used so that, were these values ever used as keys
// themselves, lexicographic byte order would match integer order — a
// property the other uint64-keyed sub-stores in this package already rely
// on.
type RecordMetadata struct {
	ID                uint64
	Version           uint32
	Present           bool
	InsertOperationID uint64
}

func encodeRecordMetadata(m RecordMetadata) []byte {
	buf := make([]byte, recordMetadataSize)
	binary.BigEndian.PutUint64(buf[0:8], m.ID)
	binary.BigEndian.PutUint32(buf[8:12], m.Version)
	if m.Present {
		buf[12] = 1
		binary.BigEndian.PutUint64(buf[13:21], m.InsertOperationID)
	}
	return buf
}

// decodeRecordMetadata decodes a RecordMetadata from exactly 21 bytes. Any
// other length indicates the store holds corrupted data for this key, which
// is a fatal condition rather than a recoverable error.
func decodeRecordMetadata(logger *zap.Logger, buf []byte) RecordMetadata {
	if len(buf) != recordMetadataSize {
		panicInconsistent(logger, "record metadata value is not 21 bytes")
	}
	m := RecordMetadata{
		ID:      binary.BigEndian.Uint64(buf[0:8]),
		Version: binary.BigEndian.Uint32(buf[8:12]),
		Present: buf[12] == 1,
	}
	if m.Present {
		m.InsertOperationID = binary.BigEndian.Uint64(buf[13:21])
	}
	return m
}
