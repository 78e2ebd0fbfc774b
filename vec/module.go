package vec

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"modernc.org/sqlite/vtab"

	"github.com/viant/cinematch/index"
)

// ModuleName is the name used in CREATE VIRTUAL TABLE ... USING.
const ModuleName = "movie_knn"

// DefaultK applies when no k constraint is given.
const DefaultK = 10

// MaxK caps a single scan.
const MaxK = 1000

const (
	colRow = iota
	colDistance
	colQuery
	colK
)

const (
	idxQuery = iota + 1
	idxQueryK
)

var (
	registryMu sync.RWMutex
	registry   = map[string]index.Index{}
)

// Attach makes idx available to virtual tables created with
// USING movie_knn(name). Attaching the same name again replaces the index.
func Attach(name string, idx index.Index) {
	registryMu.Lock()
	registry[name] = idx
	registryMu.Unlock()
}

// Detach removes a named index.
func Detach(name string) {
	registryMu.Lock()
	delete(registry, name)
	registryMu.Unlock()
}

// Lookup returns the index attached as name.
func Lookup(name string) (index.Index, error) { return lookup(name) }

func lookup(name string) (index.Index, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	idx, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("vec: no index attached as %q", name)
	}
	return idx, nil
}

// Module implements vtab.Module.
type Module struct{}

// Table is one movie_knn instance bound to an attached index name.
type Table struct {
	name string
}

// Register registers the movie_knn module. It is idempotent.
func Register(db *sql.DB) error {
	if err := vtab.RegisterModule(db, ModuleName, &Module{}); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	return nil
}

// Create declares the table schema. args[3], when present, names the
// attached index; it defaults to the table name.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

// Connect attaches to an existing table.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

func (m *Module) connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("vec: expected at least 3 args, got %d", len(args))
	}
	if err := ctx.EnableConstraintSupport(); err != nil {
		return nil, fmt.Errorf("vec: EnableConstraintSupport failed: %w", err)
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(row_idx INTEGER, distance REAL, query HIDDEN, k HIDDEN)", args[2])); err != nil {
		return nil, err
	}
	name := args[2]
	if len(args) > 3 {
		if a := strings.Trim(strings.TrimSpace(args[3]), `'"`); a != "" {
			name = a
		}
	}
	return &Table{name: name}, nil
}

// BestIndex requires a query constraint and pushes down k.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	var queryC, kC *vtab.Constraint
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		switch {
		case c.Column == colQuery && (c.Op == vtab.OpMATCH || c.Op == vtab.OpEQ):
			queryC = c
		case c.Column == colK && c.Op == vtab.OpEQ:
			kC = c
		}
	}
	if queryC == nil {
		return fmt.Errorf("vec: a query constraint is required")
	}
	queryC.ArgIndex = 0
	queryC.Omit = true
	info.IdxNum = idxQuery
	if kC != nil {
		kC.ArgIndex = 1
		kC.Omit = true
		info.IdxNum = idxQueryK
	}
	return nil
}

// Open allocates a cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect is a no-op; the index is owned by the registry.
func (t *Table) Disconnect() error { return nil }

// Destroy is a no-op.
func (t *Table) Destroy() error { return nil }
