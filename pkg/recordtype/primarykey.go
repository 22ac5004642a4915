package recordtype

import (
	"encoding/binary"
	"fmt"
)

// PrimaryKeyEncoder deterministically encodes a record's primary-key values
// into opaque bytes: each primary-key value is written with a 4-byte
// big-endian length prefix and no type tag (a schema fixes each position's
// type). This follows the badger key encoders this module is grounded on
// (key_encoding.go), adapted from string-joined keys to binary ones since
// primary keys here must support field types other than strings.
type PrimaryKeyEncoder struct{}

// NewPrimaryKeyEncoder creates a new PrimaryKeyEncoder.
func NewPrimaryKeyEncoder() *PrimaryKeyEncoder {
	return &PrimaryKeyEncoder{}
}

// Encode returns the primary key bytes for record under schema. Schema and
// record are assumed already consistency-checked (see CheckConsistency).
func (e *PrimaryKeyEncoder) Encode(schema Schema, record Record) ([]byte, error) {
	if schema.IsAppendOnly() {
		return nil, fmt.Errorf("recordtype: schema %s is append-only, has no primary key", schema.Identifier)
	}
	var out []byte
	for _, pos := range schema.PrimaryIndex {
		if pos < 0 || pos >= len(record.Values) {
			return nil, fmt.Errorf("recordtype: primary key position %d out of range", pos)
		}
		b, err := encodeKeyValue(record.Values[pos])
		if err != nil {
			return nil, err
		}
		out = appendLengthPrefixed(out, b)
	}
	return out, nil
}

func appendLengthPrefixed(dst []byte, b []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	dst = append(dst, lenBuf[:]...)
	return append(dst, b...)
}

func encodeKeyValue(v Value) ([]byte, error) {
	if v.IsNull() {
		return nil, fmt.Errorf("recordtype: primary key field cannot be null")
	}
	switch v.Type() {
	case FieldTypeUInt:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], v.UInt())
		return buf[:], nil
	case FieldTypeInt:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(v.Int()))
		return buf[:], nil
	case FieldTypeBoolean:
		if v.Boolean() {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case FieldTypeString, FieldTypeText:
		return []byte(v.String()), nil
	case FieldTypeBinary, FieldTypeBson:
		return v.Binary(), nil
	case FieldTypeDecimal:
		return []byte(v.Decimal().String()), nil
	case FieldTypeTimestamp, FieldTypeDate:
		b, err := v.Time().MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("recordtype: encoding time primary key: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("recordtype: field type %s is not valid in a primary key", v.Type())
	}
}
