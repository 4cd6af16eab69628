package models

import (
	"fmt"
	"strconv"
)

// ValueKind identifies the type carried by a FieldValue
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindNumber
	KindBool
)

// FieldValue is a tagged union for record field values.
// Records carry heterogeneous CSV values (string/number/bool/null); all
// branching on the underlying type happens through this type rather than
// through interface assertions scattered across the engines.
type FieldValue struct {
	Kind   ValueKind `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Number float64   `json:"number,omitempty"`
	Bool   bool      `json:"bool,omitempty"`
}

// Null returns the null field value
func Null() FieldValue {
	return FieldValue{Kind: KindNull}
}

// Text returns a text field value
func Text(s string) FieldValue {
	return FieldValue{Kind: KindText, Text: s}
}

// Number returns a numeric field value
func Number(f float64) FieldValue {
	return FieldValue{Kind: KindNumber, Number: f}
}

// Boolean returns a boolean field value
func Boolean(b bool) FieldValue {
	return FieldValue{Kind: KindBool, Bool: b}
}

// FromAny converts an arbitrary parsed value into a FieldValue.
// Unrecognized types are stringified; nil becomes Null.
func FromAny(v any) FieldValue {
	switch val := v.(type) {
	case nil:
		return Null()
	case string:
		return Text(val)
	case float64:
		return Number(val)
	case float32:
		return Number(float64(val))
	case int:
		return Number(float64(val))
	case int64:
		return Number(float64(val))
	case int32:
		return Number(float64(val))
	case bool:
		return Boolean(val)
	case FieldValue:
		return val
	default:
		return Text(fmt.Sprintf("%v", val))
	}
}

// IsNull reports whether the value is null
func (v FieldValue) IsNull() bool {
	return v.Kind == KindNull
}

// String returns the string representation of the value.
// Null values render as the empty string.
func (v FieldValue) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// AsNumber attempts a numeric view of the value.
// Text values are parsed; null and boolean values are not numeric.
func (v FieldValue) AsNumber() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Number, true
	case KindText:
		f, err := strconv.ParseFloat(v.Text, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Any returns the underlying value as an interface, nil for null
func (v FieldValue) Any() any {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return v.Number
	case KindBool:
		return v.Bool
	default:
		return nil
	}
}

// Record is one input row: an ordered set of column values identified by
// its original 0-based row index. Records are immutable once loaded; the
// engines only read them.
type Record struct {
	Index   int                   `json:"index"`
	Columns []string              `json:"columns"`
	Values  map[string]FieldValue `json:"values"`
}

// NewRecord builds a record from parsed column values.
// Columns preserves the input column order for stable iteration.
func NewRecord(index int, columns []string, values map[string]FieldValue) Record {
	if values == nil {
		values = make(map[string]FieldValue)
	}
	return Record{Index: index, Columns: columns, Values: values}
}

// NewRecordFromAny builds a record from loosely typed values (e.g. parsed CSV cells)
func NewRecordFromAny(index int, columns []string, values map[string]any) Record {
	converted := make(map[string]FieldValue, len(values))
	for col, v := range values {
		converted[col] = FromAny(v)
	}
	return NewRecord(index, columns, converted)
}

// Value returns the value for a column, Null if the column is absent
func (r Record) Value(column string) FieldValue {
	if v, ok := r.Values[column]; ok {
		return v
	}
	return Null()
}
