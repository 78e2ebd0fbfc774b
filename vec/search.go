package vec

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/viant/cinematch/vector"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Neighbor is one movie_knn row joined with its catalog title.
type Neighbor struct {
	Row      int64
	ID       int64
	Title    string
	Distance float64
}

// Nearest runs a movie_knn scan over the index attached as name and joins
// the hits with the movies table of db. Rows come back by ascending
// distance.
func Nearest(ctx context.Context, db *sql.DB, name string, query []float32, k int) ([]Neighbor, error) {
	if !identPattern.MatchString(name) {
		return nil, fmt.Errorf("vec: invalid index name %q", name)
	}
	if _, err := lookup(name); err != nil {
		return nil, err
	}
	blob, err := vector.EncodeEmbedding(query)
	if err != nil {
		return nil, err
	}
	if err := Register(db); err != nil {
		return nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	table := "knn_" + name
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE VIRTUAL TABLE IF NOT EXISTS temp.%s USING %s(%s)", table, ModuleName, name)); err != nil {
		return nil, fmt.Errorf("vec: create %s: %w", table, err)
	}
	defer conn.ExecContext(context.WithoutCancel(ctx), "DROP TABLE IF EXISTS temp."+table)

	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`SELECT k.row_idx, m.id, m.title, k.distance
FROM %s k JOIN movies m ON m.row_idx = k.row_idx
WHERE k.query MATCH ? AND k.k = ?
ORDER BY k.distance, k.row_idx`, table), blob, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Neighbor
	for rows.Next() {
		var n Neighbor
		if err := rows.Scan(&n.Row, &n.ID, &n.Title, &n.Distance); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
