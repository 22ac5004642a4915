package recordtype

// CheckConsistency validates that record matches schema: same schema
// identifier, same field arity, and every non-null value's runtime type
// matching its field's declared type (nulls are only allowed for fields
// marked Nullable). This runs unconditionally on every insert rather than
// being compiled out in release builds, per the source implementation's own
// design note that the check is cheap enough (O(fields)) to always run.
func CheckConsistency(schema Schema, record Record) error {
	if record.SchemaID != schema.Identifier {
		return NewErrSchemaMismatch(schema.Identifier, record.SchemaID)
	}
	if len(record.Values) != len(schema.Fields) {
		return NewErrFieldArityMismatch(len(schema.Fields), len(record.Values))
	}
	for i, field := range schema.Fields {
		value := record.Values[i]
		if value.IsNull() {
			if !field.Nullable {
				return NewErrFieldTypeMismatch(field.Name, field.Type, value.Type(), true)
			}
			continue
		}
		if value.Type() != field.Type {
			return NewErrFieldTypeMismatch(field.Name, field.Type, value.Type(), false)
		}
	}
	return nil
}
