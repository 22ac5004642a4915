// Package recordtype defines the record, schema and value model that the
// storage package operates on. The storage package never interprets field
// values beyond the schema-record consistency check; everything else here
// exists to give that check and the primary-key encoder a concrete type to
// work with.
package recordtype

// FieldType enumerates the closed set of value kinds a Field may hold.
type FieldType string

// String returns the field type's string representation.
func (t FieldType) String() string {
	return string(t)
}

const (
	FieldTypeUInt      FieldType = "uint"
	FieldTypeInt       FieldType = "int"
	FieldTypeFloat     FieldType = "float"
	FieldTypeBoolean   FieldType = "boolean"
	FieldTypeString    FieldType = "string"
	FieldTypeText      FieldType = "text"
	FieldTypeBinary    FieldType = "binary"
	FieldTypeDecimal   FieldType = "decimal"
	FieldTypeTimestamp FieldType = "timestamp"
	FieldTypeDate      FieldType = "date"
	FieldTypeBson      FieldType = "bson"
	FieldTypePoint     FieldType = "point"
)

// IsValid reports whether t is one of the closed set of known field types.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeUInt, FieldTypeInt, FieldTypeFloat, FieldTypeBoolean,
		FieldTypeString, FieldTypeText, FieldTypeBinary, FieldTypeDecimal,
		FieldTypeTimestamp, FieldTypeDate, FieldTypeBson, FieldTypePoint:
		return true
	default:
		return false
	}
}
