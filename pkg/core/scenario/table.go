package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blackcoderx/apicheck/pkg/core/value"
)

// Table is a step's data table. Row 0 is the header and is skipped by every
// accessor.
type Table [][]string

// Rows returns the data rows after the header.
func (t Table) Rows() [][]string {
	if len(t) <= 1 {
		return nil
	}
	return t[1:]
}

// Column returns the first cell of every data row.
func (t Table) Column() []string {
	rows := t.Rows()
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			out = append(out, strings.TrimSpace(row[0]))
		}
	}
	return out
}

// Object builds a JSON object from (key, value) data rows. Values are coerced
// with Coerce; later keys overwrite earlier ones.
func (t Table) Object() (value.Value, error) {
	fields := make(map[string]value.Value)
	for i, row := range t.Rows() {
		if len(row) < 2 {
			return value.Value{}, fmt.Errorf("table row %d: want key and value, got %d cell(s)", i+1, len(row))
		}
		fields[strings.TrimSpace(row[0])] = Coerce(row[1])
	}
	return value.ObjectValue(fields), nil
}

// Coerce turns a table cell into a number when it parses as one and keeps it
// as a string otherwise. Empty cells and integer-like cells with a leading
// zero ("02139") stay strings so identifiers keep their form.
func Coerce(cell string) value.Value {
	s := strings.TrimSpace(cell)
	if s == "" || hasLeadingZero(s) {
		return value.StringValue(cell)
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.HasPrefix(lower, "0x") {
		return value.StringValue(cell)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return value.StringValue(cell)
	}
	return value.NumberValue(n)
}

func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9'
}
