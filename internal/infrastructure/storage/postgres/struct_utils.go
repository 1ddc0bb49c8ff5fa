package postgres

import (
	"reflect"
	"sync"
)

// column maps a db tag to the field index path inside a (possibly
// embedding) struct.
type column struct {
	name  string
	index []int
}

var columnCache sync.Map // map[reflect.Type][]column

// columnsOf lists the db-tagged fields of t, embedded structs flattened in
// declaration order. Results are cached per type.
func columnsOf(t reflect.Type) []column {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.([]column)
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []column
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, column{name: tag, index: f.Index})
	}

	columnCache.Store(t, cols)
	return cols
}

// ExtractDBColumns returns the db column names of T, embedded structs
// included (entity.Document, client.Info, documents.Amounts).
func ExtractDBColumns[T any]() []string {
	var zero T
	cols := columnsOf(reflect.TypeOf(zero))
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// ColumnsOf returns the db column names of v's dynamic type.
func ColumnsOf(v any) []string {
	cols := columnsOf(reflect.TypeOf(v))
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// StructToMap converts a struct (or pointer to struct) to column → value.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	cols := columnsOf(rv.Type())
	res := make(map[string]any, len(cols))
	for _, c := range cols {
		res[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return res
}

// Pick keeps the entries of data whose key is in cols, minus skip.
func Pick(data map[string]any, cols []string, skip ...string) map[string]any {
	out := make(map[string]any, len(cols))
next:
	for _, c := range cols {
		for _, s := range skip {
			if c == s {
				continue next
			}
		}
		if v, ok := data[c]; ok {
			out[c] = v
		}
	}
	return out
}
