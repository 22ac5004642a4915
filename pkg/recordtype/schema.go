package recordtype

import "github.com/google/uuid"

// Field describes one positional column of a Schema.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Nullable bool      `json:"nullable"`
}

// Schema describes the shape of every Record sharing its Identifier.
// PrimaryIndex lists the positions (into Fields) that make up the primary
// key; an empty PrimaryIndex marks the schema append-only.
type Schema struct {
	Identifier   uuid.UUID `json:"identifier"`
	Fields       []Field   `json:"fields"`
	PrimaryIndex []int     `json:"primary_index,omitempty"`
}

// IsAppendOnly reports whether s has no primary key, per the distillation's
// definition: is_append_only == true iff the primary-key index list is
// empty.
func (s Schema) IsAppendOnly() bool {
	return len(s.PrimaryIndex) == 0
}

// FieldAt returns the field at the given primary-key position.
func (s Schema) FieldAt(pos int) Field {
	return s.Fields[pos]
}
