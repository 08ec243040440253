package history

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Field pairs one snapshot key with its human-readable label.
type Field struct {
	Key   string
	Label string
}

// Schema is the ordered list of fields that participate in diffing for one
// entity family. Keys absent from the schema are ignored even when present in
// a snapshot, and diff output follows schema order.
type Schema []Field

// LabelFor returns the label declared for key, or the key itself when the
// schema does not know it.
func (s Schema) LabelFor(key string) string {
	for _, f := range s {
		if f.Key == key {
			return f.Label
		}
	}
	return key
}

// Snapshot is an in-memory capture of an entity's field values at one point
// in time. Snapshots are transient: only their diffs are ever persisted.
type Snapshot map[string]any

// ComputeDiffs returns one DiffInput per schema field whose stringified value
// differs between before and after. A nil value stringifies to nil, never to
// the text "null", so a nil-to-"null" edit is a real change.
//
// Diffing an empty before against a populated after yields a diff for every
// schema field with a non-nil after value (the creation case); the reverse
// yields old-value-to-nil diffs (the removal case).
func ComputeDiffs(before, after Snapshot, schema Schema) []DiffInput {
	var diffs []DiffInput
	for _, field := range schema {
		oldStr := Stringify(before[field.Key])
		newStr := Stringify(after[field.Key])
		if !equalValue(oldStr, newStr) {
			diffs = append(diffs, DiffInput{
				FieldLabel: field.Label,
				OldValue:   oldStr,
				NewValue:   newStr,
			})
		}
	}
	return diffs
}

func equalValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Stringify converts a snapshot value to its canonical string form, or nil
// for absent values. Nil interfaces and nil pointers of any type are absent;
// everything else gets exactly one canonical rendering so equality on the
// string is equality on the value.
func Stringify(v any) *string {
	if v == nil {
		return nil
	}

	// Unwrap pointers so *int64(nil) and friends count as absent.
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	v = rv.Interface()

	if t, ok := v.(time.Time); ok {
		s := t.Format(time.RFC3339)
		return &s
	}
	if stringer, ok := v.(fmt.Stringer); ok {
		s := stringer.String()
		return &s
	}

	// Kind-based dispatch so named types (enum strings, cent amounts) render
	// the same as their underlying kind.
	var s string
	switch rv.Kind() {
	case reflect.String:
		s = rv.String()
	case reflect.Bool:
		s = strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s = strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		s = strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		s = strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		s = strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	default:
		s = fmt.Sprintf("%v", v)
	}
	return &s
}
