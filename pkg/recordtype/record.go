package recordtype

import "github.com/google/uuid"

// Record is an ordered list of typed field values belonging to a Schema.
// Version is mutated only by the storage package's Main Environment; callers
// must not set it themselves before an insert.
type Record struct {
	SchemaID uuid.UUID `json:"schema_id"`
	Values   []Value   `json:"values"`
	Version  uint32    `json:"version"`
}

// Clone returns a deep-enough copy of r suitable for storing independently
// of the caller's own copy (Values is re-sliced; individual Value structs
// are already immutable value types).
func (r Record) Clone() Record {
	out := Record{SchemaID: r.SchemaID, Version: r.Version}
	out.Values = append([]Value(nil), r.Values...)
	return out
}

// Equal reports whether two records are structurally equal: same schema,
// same version, same field values in order. Used by round-trip tests.
func (r Record) Equal(other Record) bool {
	if r.SchemaID != other.SchemaID || r.Version != other.Version {
		return false
	}
	if len(r.Values) != len(other.Values) {
		return false
	}
	for i := range r.Values {
		if !r.Values[i].Equal(other.Values[i]) {
			return false
		}
	}
	return true
}
