package dispatch

import (
	"fmt"
	"strings"

	"github.com/ryanmoran/dockertask/internal/format"
)

// Transform maps a source field value to its displayed value.
type Transform func(value any) any

// Column selects one output field for ps. A nil Transform passes the field
// through unchanged.
type Column struct {
	Name      string
	Transform Transform
}

// Project keeps only the named columns of each record, applying each column's
// transform to its source field. Records are not modified. With no columns,
// records are returned as they are.
func Project(records []map[string]any, columns []Column) []map[string]any {
	if len(columns) == 0 {
		return records
	}

	projected := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any, len(columns))
		for _, column := range columns {
			value := lookupField(record, column.Name)
			if column.Transform != nil {
				value = column.Transform(value)
			}
			row[column.Name] = value
		}
		projected = append(projected, row)
	}

	return projected
}

// ColumnNames returns the names of columns, in order.
func ColumnNames(columns []Column) []string {
	names := make([]string, len(columns))
	for i, column := range columns {
		names[i] = column.Name
	}
	return names
}

// NamedTransform returns the transform registered under name. The empty name
// selects pass-through.
func NamedTransform(name string) (Transform, error) {
	switch name {
	case "":
		return nil, nil
	case "upper":
		return mapString(strings.ToUpper), nil
	case "lower":
		return mapString(strings.ToLower), nil
	case "short-id":
		return mapString(shortID), nil
	case "trim-slash":
		return mapString(func(s string) string { return strings.TrimPrefix(s, "/") }), nil
	case "first":
		return first, nil
	case "join":
		return func(value any) any { return format.Cell(value) }, nil
	default:
		return nil, fmt.Errorf("unknown column transform %q\nUse one of: upper, lower, short-id, trim-slash, first, join", name)
	}
}

func lookupField(record map[string]any, name string) any {
	if value, ok := record[name]; ok {
		return value
	}
	for key, value := range record {
		if strings.EqualFold(key, name) {
			return value
		}
	}
	return nil
}

// mapString applies fn to strings and to each string in a list.
func mapString(fn func(string) string) Transform {
	return func(value any) any {
		switch v := value.(type) {
		case string:
			return fn(v)
		case []any:
			mapped := make([]any, len(v))
			for i, item := range v {
				if s, ok := item.(string); ok {
					mapped[i] = fn(s)
				} else {
					mapped[i] = item
				}
			}
			return mapped
		case []string:
			mapped := make([]string, len(v))
			for i, s := range v {
				mapped[i] = fn(s)
			}
			return mapped
		default:
			return value
		}
	}
}

func first(value any) any {
	switch v := value.(type) {
	case []any:
		if len(v) > 0 {
			return v[0]
		}
		return nil
	case []string:
		if len(v) > 0 {
			return v[0]
		}
		return nil
	default:
		return value
	}
}

func shortID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
