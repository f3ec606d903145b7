package format

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Repainter redraws a block of text in place. Each Repaint moves the cursor
// back to the top of the previous block and clears downward first.
type Repainter struct {
	out   io.Writer
	style string
	lines int
}

func NewRepainter(out io.Writer, style string) *Repainter {
	return &Repainter{out: out, style: style}
}

// Repaint replaces the previous block with a field/value table of record.
func (r *Repainter) Repaint(record map[string]any) error {
	var block strings.Builder
	rows := make([]map[string]any, 0, len(record))
	for _, key := range slices.Sorted(maps.Keys(record)) {
		rows = append(rows, map[string]any{"Field": key, "Value": Cell(record[key])})
	}
	err := RenderTable(&block, []string{"Field", "Value"}, rows, TableOptions{
		Style:    r.style,
		MaxWidth: map[string]int{"Value": 100},
	})
	if err != nil {
		return err
	}

	if r.lines > 0 {
		if _, err := fmt.Fprintf(r.out, "\033[%dA\033[J", r.lines); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(r.out, block.String()); err != nil {
		return err
	}
	r.lines = strings.Count(block.String(), "\n")

	return nil
}
