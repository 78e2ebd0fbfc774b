package vecadmin

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"modernc.org/sqlite/vtab"

	"github.com/viant/cinematch/engine"
	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/vec"
	"github.com/viant/cinematch/vector"
)

// ModuleName is the name used in CREATE VIRTUAL TABLE ... USING.
const ModuleName = "movie_admin"

// Tolerance is the largest L2 drift accepted between an indexed vector and
// its stored embedding.
const Tolerance = 1e-4

// Module implements vtab.Module.
type Module struct{}

// Table is bound to one metadata database path.
type Table struct {
	path string
}

// Cursor holds the single result row of an op.
type Cursor struct {
	table *Table
	rows  []string
	pos   int
}

// DriftError reports an index row that no longer matches the store.
type DriftError struct {
	Row      int64
	Distance float64
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("vecadmin: row %d drifted from stored embedding (l2=%g)", e.Row, e.Distance)
}

// Register registers the movie_admin module. It is idempotent.
func Register(db *sql.DB) error {
	if err := vtab.RegisterModule(db, ModuleName, &Module{}); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	return nil
}

// Create declares the single op column. args[3] is the metadata database path.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

// Connect attaches to an existing table.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

func (m *Module) connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("movie_admin: need a database path argument")
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(op)", args[2])); err != nil {
		return nil, err
	}
	path := strings.Trim(strings.TrimSpace(args[3]), `'"`)
	if path == "" {
		return nil, fmt.Errorf("movie_admin: empty database path")
	}
	return &Table{path: path}, nil
}

// BestIndex pushes down the op MATCH constraint.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		if c.Column == 0 && c.Op == vtab.OpMATCH {
			c.ArgIndex = 0
			c.Omit = true
			info.IdxNum = 1
			break
		}
	}
	return nil
}

func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }
func (t *Table) Disconnect() error          { return nil }
func (t *Table) Destroy() error             { return nil }

// Filter runs the requested op.
func (c *Cursor) Filter(idxNum int, _ string, vals []vtab.Value) error {
	c.rows, c.pos = nil, 0
	if idxNum != 1 || len(vals) == 0 || vals[0] == nil {
		return nil
	}
	op, ok := vals[0].(string)
	if !ok {
		return fmt.Errorf("movie_admin: MATCH expects TEXT, got %T", vals[0])
	}
	verb, name, _ := strings.Cut(op, ":")
	if verb != "verify" || name == "" {
		return fmt.Errorf("movie_admin: unsupported op %q", op)
	}
	idx, err := vec.Lookup(name)
	if err != nil {
		return err
	}
	db, err := engine.OpenReadOnly(c.table.path)
	if err != nil {
		return err
	}
	defer db.Close()
	n, err := Verify(context.Background(), db, idx)
	if err != nil {
		return err
	}
	c.rows = []string{fmt.Sprintf("verified:%d", n)}
	return nil
}

func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("movie_admin: Column out of range")
	}
	if col == 0 {
		return c.rows[c.pos], nil
	}
	return nil, nil
}

func (c *Cursor) Rowid() (int64, error) { return int64(c.pos + 1), nil }
func (c *Cursor) Close() error          { c.rows = nil; c.pos = 0; return nil }

// Verify compares every stored embedding with the vector idx holds for the
// same row and returns the number of rows checked.
func Verify(ctx context.Context, db *sql.DB, idx index.Index) (int, error) {
	rows, err := db.QueryContext(ctx, `SELECT row_idx, embedding FROM movies ORDER BY row_idx`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		var row int64
		var blob []byte
		if err := rows.Scan(&row, &blob); err != nil {
			return n, err
		}
		if row != int64(n) {
			return n, fmt.Errorf("vecadmin: row_idx gap at %d", n)
		}
		stored, err := vector.DecodeEmbeddingDim(blob, idx.Dimension())
		if err != nil {
			return n, err
		}
		indexed := idx.Vector(row)
		if indexed == nil {
			return n, fmt.Errorf("vecadmin: index has no row %d", row)
		}
		d, err := vector.L2Distance(stored, indexed)
		if err != nil {
			return n, fmt.Errorf("vecadmin: row %d: %w", row, err)
		}
		if d > Tolerance {
			return n, &DriftError{Row: row, Distance: d}
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, err
	}
	if n != idx.Len() {
		return n, fmt.Errorf("vecadmin: store holds %d rows, index holds %d", n, idx.Len())
	}
	return n, nil
}

// Check runs the verify op for the index attached as name through a
// movie_admin table over the database at path.
func Check(ctx context.Context, db *sql.DB, path, name string) (string, error) {
	if err := Register(db); err != nil {
		return "", err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	if _, err := conn.ExecContext(ctx, "CREATE VIRTUAL TABLE IF NOT EXISTS temp.movie_admin_op USING "+ModuleName+"("+quoted+")"); err != nil {
		return "", err
	}
	defer conn.ExecContext(context.WithoutCancel(ctx), "DROP TABLE IF EXISTS temp.movie_admin_op")
	var result string
	err = conn.QueryRowContext(ctx, `SELECT op FROM movie_admin_op WHERE op MATCH ?`, "verify:"+name).Scan(&result)
	return result, err
}
