package recordtype

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Point is the concrete Go value behind FieldTypePoint: a bare coordinate
// pair. No geometry library is wired in for this — see DESIGN.md.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Value is a tagged union holding exactly one of the closed FieldType kinds,
// or the null sentinel.
type Value struct {
	typ      FieldType
	null     bool
	uintVal  uint64
	intVal   int64
	floatVal float64
	boolVal  bool
	strVal   string
	binVal   []byte
	decVal   decimal.Decimal
	timeVal  time.Time
	pointVal Point
}

// Null returns the null value for the given field type.
func Null(t FieldType) Value { return Value{typ: t, null: true} }

func NewUInt(v uint64) Value           { return Value{typ: FieldTypeUInt, uintVal: v} }
func NewInt(v int64) Value             { return Value{typ: FieldTypeInt, intVal: v} }
func NewFloat(v float64) Value         { return Value{typ: FieldTypeFloat, floatVal: v} }
func NewBoolean(v bool) Value          { return Value{typ: FieldTypeBoolean, boolVal: v} }
func NewString(v string) Value         { return Value{typ: FieldTypeString, strVal: v} }
func NewText(v string) Value           { return Value{typ: FieldTypeText, strVal: v} }
func NewBinary(v []byte) Value         { return Value{typ: FieldTypeBinary, binVal: v} }
func NewDecimal(v decimal.Decimal) Value {
	return Value{typ: FieldTypeDecimal, decVal: v}
}
func NewTimestamp(v time.Time) Value { return Value{typ: FieldTypeTimestamp, timeVal: v} }
func NewDate(v time.Time) Value      { return Value{typ: FieldTypeDate, timeVal: v} }
func NewBson(v []byte) Value         { return Value{typ: FieldTypeBson, binVal: v} }
func NewPoint(v Point) Value         { return Value{typ: FieldTypePoint, pointVal: v} }

// Type returns the value's field type.
func (v Value) Type() FieldType { return v.typ }

// IsNull reports whether v is the null sentinel for its field type.
func (v Value) IsNull() bool { return v.null }

func (v Value) UInt() uint64             { return v.uintVal }
func (v Value) Int() int64               { return v.intVal }
func (v Value) Float() float64           { return v.floatVal }
func (v Value) Boolean() bool            { return v.boolVal }
func (v Value) String() string           { return v.strVal }
func (v Value) Binary() []byte           { return v.binVal }
func (v Value) Decimal() decimal.Decimal { return v.decVal }
func (v Value) Time() time.Time          { return v.timeVal }
func (v Value) Point() Point             { return v.pointVal }

// Equal reports structural equality between two values, used by round-trip
// tests comparing an inserted record against what get/get-by-operation-id
// return.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ || v.null != other.null {
		return false
	}
	if v.null {
		return true
	}
	switch v.typ {
	case FieldTypeUInt:
		return v.uintVal == other.uintVal
	case FieldTypeInt:
		return v.intVal == other.intVal
	case FieldTypeFloat:
		return v.floatVal == other.floatVal
	case FieldTypeBoolean:
		return v.boolVal == other.boolVal
	case FieldTypeString, FieldTypeText:
		return v.strVal == other.strVal
	case FieldTypeBinary, FieldTypeBson:
		return string(v.binVal) == string(other.binVal)
	case FieldTypeDecimal:
		return v.decVal.Equal(other.decVal)
	case FieldTypeTimestamp, FieldTypeDate:
		return v.timeVal.Equal(other.timeVal)
	case FieldTypePoint:
		return v.pointVal == other.pointVal
	default:
		return false
	}
}

// jsonValue is Value's wire representation. Operation log entries are
// serialized with encoding/json (the codec the teacher already uses
// throughout pkg/resource/badger/row_codec.go), so Value needs an explicit
// tagged-union encoding rather than relying on interface{}.
type jsonValue struct {
	Type FieldType       `json:"type"`
	Null bool            `json:"null,omitempty"`
	UInt uint64          `json:"uint,omitempty"`
	Int  int64           `json:"int,omitempty"`
	Flt  float64         `json:"float,omitempty"`
	Bool bool            `json:"bool,omitempty"`
	Str  string          `json:"str,omitempty"`
	Bin  []byte          `json:"bin,omitempty"`
	Dec  string          `json:"dec,omitempty"`
	Time time.Time       `json:"time,omitempty"`
	Pt   *Point          `json:"point,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	jv := jsonValue{Type: v.typ, Null: v.null}
	if !v.null {
		switch v.typ {
		case FieldTypeUInt:
			jv.UInt = v.uintVal
		case FieldTypeInt:
			jv.Int = v.intVal
		case FieldTypeFloat:
			jv.Flt = v.floatVal
		case FieldTypeBoolean:
			jv.Bool = v.boolVal
		case FieldTypeString, FieldTypeText:
			jv.Str = v.strVal
		case FieldTypeBinary, FieldTypeBson:
			jv.Bin = v.binVal
		case FieldTypeDecimal:
			jv.Dec = v.decVal.String()
		case FieldTypeTimestamp, FieldTypeDate:
			jv.Time = v.timeVal
		case FieldTypePoint:
			p := v.pointVal
			jv.Pt = &p
		default:
			return nil, fmt.Errorf("recordtype: unknown field type %q", v.typ)
		}
	}
	return json.Marshal(jv)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var jv jsonValue
	if err := json.Unmarshal(data, &jv); err != nil {
		return err
	}
	out := Value{typ: jv.Type, null: jv.Null}
	if !jv.Null {
		switch jv.Type {
		case FieldTypeUInt:
			out.uintVal = jv.UInt
		case FieldTypeInt:
			out.intVal = jv.Int
		case FieldTypeFloat:
			out.floatVal = jv.Flt
		case FieldTypeBoolean:
			out.boolVal = jv.Bool
		case FieldTypeString, FieldTypeText:
			out.strVal = jv.Str
		case FieldTypeBinary, FieldTypeBson:
			out.binVal = jv.Bin
		case FieldTypeDecimal:
			d, err := decimal.NewFromString(jv.Dec)
			if err != nil {
				return fmt.Errorf("recordtype: decoding decimal value: %w", err)
			}
			out.decVal = d
		case FieldTypeTimestamp, FieldTypeDate:
			out.timeVal = jv.Time
		case FieldTypePoint:
			if jv.Pt != nil {
				out.pointVal = *jv.Pt
			}
		default:
			return fmt.Errorf("recordtype: unknown field type %q", jv.Type)
		}
	}
	*v = out
	return nil
}
