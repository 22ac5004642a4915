package recordtype_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/kurocache/recordcache/pkg/recordtype"
)

func testSchema() recordtype.Schema {
	return recordtype.Schema{
		Identifier: uuid.MustParse("00000000-0000-0000-0000-0000000000aa"),
		Fields: []recordtype.Field{
			{Name: "id", Type: recordtype.FieldTypeUInt},
			{Name: "name", Type: recordtype.FieldTypeString, Nullable: true},
		},
		PrimaryIndex: []int{0},
	}
}

func TestCheckConsistencyAcceptsMatchingRecord(t *testing.T) {
	schema := testSchema()
	rec := recordtype.Record{
		SchemaID: schema.Identifier,
		Values:   []recordtype.Value{recordtype.NewUInt(1), recordtype.NewString("a")},
	}
	assert.NoError(t, recordtype.CheckConsistency(schema, rec))
}

func TestCheckConsistencyAcceptsNullableNull(t *testing.T) {
	schema := testSchema()
	rec := recordtype.Record{
		SchemaID: schema.Identifier,
		Values:   []recordtype.Value{recordtype.NewUInt(1), recordtype.Null(recordtype.FieldTypeString)},
	}
	assert.NoError(t, recordtype.CheckConsistency(schema, rec))
}

func TestCheckConsistencyRejectsSchemaMismatch(t *testing.T) {
	schema := testSchema()
	rec := recordtype.Record{
		SchemaID: uuid.New(),
		Values:   []recordtype.Value{recordtype.NewUInt(1), recordtype.NewString("a")},
	}
	var target *recordtype.ErrSchemaMismatch
	assert.ErrorAs(t, recordtype.CheckConsistency(schema, rec), &target)
}

func TestCheckConsistencyRejectsArityMismatch(t *testing.T) {
	schema := testSchema()
	rec := recordtype.Record{
		SchemaID: schema.Identifier,
		Values:   []recordtype.Value{recordtype.NewUInt(1)},
	}
	var target *recordtype.ErrFieldArityMismatch
	assert.ErrorAs(t, recordtype.CheckConsistency(schema, rec), &target)
}

func TestCheckConsistencyRejectsTypeMismatch(t *testing.T) {
	schema := testSchema()
	rec := recordtype.Record{
		SchemaID: schema.Identifier,
		Values:   []recordtype.Value{recordtype.NewInt(1), recordtype.NewString("a")},
	}
	var target *recordtype.ErrFieldTypeMismatch
	assert.ErrorAs(t, recordtype.CheckConsistency(schema, rec), &target)
}

func TestCheckConsistencyRejectsNullOnNonNullableField(t *testing.T) {
	schema := testSchema()
	rec := recordtype.Record{
		SchemaID: schema.Identifier,
		Values:   []recordtype.Value{recordtype.Null(recordtype.FieldTypeUInt), recordtype.NewString("a")},
	}
	var target *recordtype.ErrFieldTypeMismatch
	assert.ErrorAs(t, recordtype.CheckConsistency(schema, rec), &target)
}
