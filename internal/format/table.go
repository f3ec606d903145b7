package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DefaultColumns are shown by ps when the task selects no columns.
var DefaultColumns = []string{"Id", "Image", "Command", "Status", "Names"}

// TableOptions controls how a table is drawn. The zero value draws a light
// bordered table with headers.
type TableOptions struct {
	// Style is one of "light", "rounded" or "plain".
	Style string
	// MaxWidth caps the width of the named columns; longer cells wrap.
	MaxWidth map[string]int
	// HideHeaders omits the header row.
	HideHeaders bool
}

// RenderTable writes records as a table with one column per entry of columns,
// in order. Missing fields render as empty cells.
func RenderTable(w io.Writer, columns []string, records []map[string]any, options TableOptions) error {
	if len(columns) == 0 {
		return nil
	}

	tw := table.NewWriter()
	style, err := tableStyle(options.Style)
	if err != nil {
		return err
	}
	tw.SetStyle(style)

	if !options.HideHeaders {
		header := make(table.Row, len(columns))
		for i, column := range columns {
			header[i] = column
		}
		tw.AppendHeader(header)
	}

	for _, record := range records {
		row := make(table.Row, len(columns))
		for i, column := range columns {
			row[i] = Cell(record[column])
		}
		tw.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, column := range columns {
		config := table.ColumnConfig{
			Number:      i + 1,
			AlignHeader: text.AlignLeft,
		}
		if width, ok := options.MaxWidth[column]; ok && width > 0 {
			config.WidthMax = width
		}
		configs = append(configs, config)
	}
	tw.SetColumnConfigs(configs)

	_, err = fmt.Fprintln(w, tw.Render())
	return err
}

// Cell formats a record value for display. Lists are joined with commas and
// nested objects are written as compact JSON.
func Cell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Cell(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
}

func tableStyle(name string) (table.Style, error) {
	switch name {
	case "", "light":
		return table.StyleLight, nil
	case "rounded":
		return table.StyleRounded, nil
	case "plain":
		style := table.StyleDefault
		style.Options = table.OptionsNoBordersAndSeparators
		return style, nil
	default:
		return table.Style{}, fmt.Errorf("unknown table style %q\nUse one of: light, rounded, plain", name)
	}
}

// CheckStyle reports an error for a style name RenderTable would reject.
func CheckStyle(name string) error {
	_, err := tableStyle(name)
	return err
}
