package recordtype

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrSchemaMismatch reports a record whose SchemaID does not match the
// schema it is being checked or inserted against.
type ErrSchemaMismatch struct {
	Expected uuid.UUID
	Actual   uuid.UUID
}

func (e *ErrSchemaMismatch) Error() string {
	return fmt.Sprintf("record schema %x does not match expected schema %x", e.Actual, e.Expected)
}

// ErrFieldArityMismatch reports a record with a different number of values
// than its schema declares fields.
type ErrFieldArityMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrFieldArityMismatch) Error() string {
	return fmt.Sprintf("record has %d values, schema declares %d fields", e.Actual, e.Expected)
}

// ErrFieldTypeMismatch reports a record value whose runtime type doesn't
// match its field's declared type, or a non-nullable field holding null.
type ErrFieldTypeMismatch struct {
	FieldName string
	Expected  FieldType
	Actual    FieldType
	NullOnNonNullable bool
}

func (e *ErrFieldTypeMismatch) Error() string {
	if e.NullOnNonNullable {
		return fmt.Sprintf("field %q is not nullable but holds null", e.FieldName)
	}
	return fmt.Sprintf("field %q expects type %s, got %s", e.FieldName, e.Expected, e.Actual)
}

func NewErrSchemaMismatch(expected, actual uuid.UUID) *ErrSchemaMismatch {
	return &ErrSchemaMismatch{Expected: expected, Actual: actual}
}

func NewErrFieldArityMismatch(expected, actual int) *ErrFieldArityMismatch {
	return &ErrFieldArityMismatch{Expected: expected, Actual: actual}
}

func NewErrFieldTypeMismatch(fieldName string, expected, actual FieldType, nullOnNonNullable bool) *ErrFieldTypeMismatch {
	return &ErrFieldTypeMismatch{
		FieldName:         fieldName,
		Expected:          expected,
		Actual:            actual,
		NullOnNonNullable: nullOnNonNullable,
	}
}
