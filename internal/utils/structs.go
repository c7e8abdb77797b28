package utils

import (
	"fmt"
	"reflect"
	"slices"
)

// ColumnTag names the struct tag that carries a field's column.
var ColumnTag = "db"

type column struct {
	name  string
	value reflect.Value
}

// columns returns the exported, tagged fields of input in declaration order.
func columns(input any) []column {

	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	t := v.Type()
	out := make([]column, 0, v.NumField())

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Tag.Get(ColumnTag)
		if name == "" || name == "-" {
			continue
		}

		out = append(out, column{name: name, value: v.Field(i)})
	}

	return out

}

// StructTagValues lists the column names of input, usable as a select list.
func StructTagValues(input any) []string {
	cols := columns(input)

	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.name)
	}

	return names
}

// StructToMap maps each column of input to its value for an insert. Columns
// listed in omit, such as store-assigned sequences, are left out.
func StructToMap(input any, omit ...string) map[string]any {
	result := make(map[string]any)

	for _, c := range columns(input) {
		if slices.Contains(omit, c.name) {
			continue
		}
		result[c.name] = c.value.Interface()
	}

	return result
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)

}
