package vec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"modernc.org/sqlite/vtab"

	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/vector"
)

type match struct {
	row      int64
	distance float64
}

// Cursor iterates one search result.
type Cursor struct {
	table *Table
	rows  []match
	pos   int
}

// Filter runs the search for the pushed-down query and k.
func (c *Cursor) Filter(idxNum int, _ string, vals []vtab.Value) error {
	c.rows, c.pos = nil, 0
	if idxNum != idxQuery && idxNum != idxQueryK {
		return fmt.Errorf("vec: unsupported query plan")
	}
	if len(vals) == 0 || vals[0] == nil {
		return fmt.Errorf("vec: query argument is required")
	}
	k := DefaultK
	if idxNum == idxQueryK && len(vals) > 1 {
		var err error
		if k, err = asInt(vals[1]); err != nil {
			return err
		}
	}
	if k <= 0 {
		return nil
	}
	k = min(k, MaxK)

	idx, err := lookup(c.table.name)
	if err != nil {
		return err
	}
	if idx.Len() == 0 {
		return nil
	}
	query, err := decodeQuery(vals[0], idx.Dimension())
	if err != nil {
		return err
	}
	if len(query) != idx.Dimension() {
		return fmt.Errorf("vec: query has dimension %d, index has %d", len(query), idx.Dimension())
	}
	dists, rows, err := idx.Search(query, k)
	if err != nil {
		return err
	}
	out := make([]match, 0, len(rows))
	for i, row := range rows {
		if row == index.Sentinel {
			continue
		}
		out = append(out, match{row: row, distance: float64(dists[i])})
	}
	c.rows = out
	return nil
}

// Next advances the cursor.
func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

// Eof reports end-of-rows.
func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

// Column returns the value of a column in the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("vec: Column out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	switch col {
	case colRow:
		return c.rows[c.pos].row, nil
	case colDistance:
		return c.rows[c.pos].distance, nil
	case colQuery, colK:
		return nil, nil
	default:
		return nil, fmt.Errorf("vec: unsupported column %d", col)
	}
}

// Rowid returns the index row of the current match.
func (c *Cursor) Rowid() (int64, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return 0, fmt.Errorf("vec: Rowid out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	return c.rows[c.pos].row, nil
}

// Close releases resources.
func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }

// decodeQuery accepts a BLOB holding exactly dim float32 values or a TEXT
// vector.
func decodeQuery(v any, dim int) ([]float32, error) {
	switch val := v.(type) {
	case []byte:
		return vector.DecodeEmbeddingDim(val, dim)
	case string:
		return decodeQueryString(val)
	default:
		return nil, fmt.Errorf("vec: expected query as BLOB or TEXT, got %T", v)
	}
}

// decodeQueryString accepts a JSON float array or a comma-separated list.
func decodeQueryString(raw string) ([]float32, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("vec: query string is empty")
	}
	if strings.HasPrefix(s, "[") {
		var floats []float32
		if err := json.Unmarshal([]byte(s), &floats); err != nil {
			return nil, fmt.Errorf("vec: invalid JSON query: %w", err)
		}
		return floats, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, fmt.Errorf("vec: invalid query float %q: %w", p, err)
		}
		out = append(out, float32(f))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("vec: query string holds no floats")
	}
	return out, nil
}

func asInt(v vtab.Value) (int, error) {
	switch x := v.(type) {
	case int64:
		return int(x), nil
	case int:
		return x, nil
	case float64:
		return int(x), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(x))
	default:
		return 0, fmt.Errorf("vec: k must be an integer, got %T", v)
	}
}
