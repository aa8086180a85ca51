package table

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueKind identifies what a Value holds
type ValueKind int

const (
	KindNull ValueKind = iota
	KindNumber
	KindString
)

// Value is a single scalar cell: a number, a string or null
type Value struct {
	kind ValueKind
	num  float64
	str  string
}

// Null returns the null value
func Null() Value { return Value{} }

// Number wraps a float64
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String wraps a string
func String(s string) Value { return Value{kind: KindString, str: s} }

// Of converts a loosely typed Go value (as produced by YAML or JSON decoding)
// into a Value. Unknown types are rendered with fmt and kept as strings.
func Of(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case uint:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case bool:
		if t {
			return Number(1)
		}
		return Number(0)
	case string:
		return String(t)
	default:
		return String(fmt.Sprint(t))
	}
}

// Kind reports what the value holds
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric interpretation of the value. Strings that parse as
// numbers are accepted.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// String renders the value as text. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	default:
		return ""
	}
}

// MarshalJSON encodes the value as a JSON number, string or null. NaN and
// infinities have no JSON form and encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	case KindString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// Row maps field names to values
type Row map[string]Value

// Table is an ordered sequence of rows. No schema is enforced.
type Table []Row

// FromMaps builds a Table from decoded YAML/JSON records
func FromMaps(records []map[string]any) Table {
	t := make(Table, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(rec))
		for k, v := range rec {
			row[k] = Of(v)
		}
		t = append(t, row)
	}
	return t
}

// Lookup returns the value of field in row i. ok is false when the field is
// absent from the row.
func (t Table) Lookup(i int, field string) (Value, bool) {
	if i < 0 || i >= len(t) {
		return Value{}, false
	}
	v, ok := t[i][field]
	return v, ok
}

// Fields returns the union of field names in first-seen order
func (t Table) Fields() []string {
	seen := make(map[string]bool)
	var fields []string
	for _, row := range t {
		// Map iteration is random; sort per row for determinism.
		keys := make([]string, 0, len(row))
		for k := range row {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			fields = append(fields, k)
		}
	}
	return fields
}
