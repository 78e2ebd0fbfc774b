package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/engine"
	"github.com/viant/cinematch/vector"
)

// ErrCorrupt reports a store whose contents violate its invariants.
var ErrCorrupt = errors.New("store: corrupt metadata")

// Store wraps a SQLite database holding one build.
type Store struct {
	db *sql.DB
}

// Create opens (creating if needed) a writable store at path and applies the
// schema.
func Create(ctx context.Context, path string) (*Store, error) {
	db, err := engine.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing store for serving.
func OpenReadOnly(ctx context.Context, path string) (*Store, error) {
	db, err := engine.OpenReadOnly(path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// InsertMovies writes movies[i] with embeddings[i] at row_idx = offset+i in
// a single transaction.
func (s *Store) InsertMovies(ctx context.Context, offset int, movies []catalog.Movie, embeddings [][]float32) error {
	if len(movies) != len(embeddings) {
		return fmt.Errorf("store: %d movies but %d embeddings", len(movies), len(embeddings))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO movies(
		row_idx, id, external_id, title, overview, release_date,
		vote_average, vote_count, popularity, genres, poster_path, text_content, embedding
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range movies {
		m := &movies[i]
		genres := m.Genres
		if genres == nil {
			genres = []string{}
		}
		genresJSON, err := json.Marshal(genres)
		if err != nil {
			return fmt.Errorf("store: encode genres for movie %d: %w", m.ID, err)
		}
		blob, err := vector.EncodeEmbedding(embeddings[i])
		if err != nil {
			return fmt.Errorf("store: encode embedding for movie %d: %w", m.ID, err)
		}
		var external sql.NullInt64
		if m.ExternalID != nil {
			external = sql.NullInt64{Int64: *m.ExternalID, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			offset+i, m.ID, external, m.Title, m.Overview, m.ReleaseDate,
			m.VoteAverage, m.VoteCount, m.Popularity, string(genresJSON), m.PosterPath, m.TextContent, blob,
		); err != nil {
			return fmt.Errorf("store: insert movie %d: %w", m.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Count returns the number of stored movies.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Movies reads every movie in row_idx order. Embeddings are not loaded.
func (s *Store) Movies(ctx context.Context) ([]catalog.Movie, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		row_idx, id, external_id, title, overview, release_date,
		vote_average, vote_count, popularity, genres, poster_path, text_content
		FROM movies ORDER BY row_idx`)
	if err != nil {
		return nil, fmt.Errorf("store: query movies: %w", err)
	}
	defer rows.Close()

	var out []catalog.Movie
	for rows.Next() {
		var (
			m        catalog.Movie
			rowIdx   int64
			external sql.NullInt64
			genres   string
		)
		if err := rows.Scan(&rowIdx, &m.ID, &external, &m.Title, &m.Overview, &m.ReleaseDate,
			&m.VoteAverage, &m.VoteCount, &m.Popularity, &genres, &m.PosterPath, &m.TextContent); err != nil {
			return nil, fmt.Errorf("store: scan movie: %w", err)
		}
		if rowIdx != int64(len(out)) {
			return nil, fmt.Errorf("%w: expected row_idx %d, found %d", ErrCorrupt, len(out), rowIdx)
		}
		if external.Valid {
			id := external.Int64
			m.ExternalID = &id
		}
		if err := json.Unmarshal([]byte(genres), &m.Genres); err != nil {
			return nil, fmt.Errorf("%w: genres at row %d: %v", ErrCorrupt, rowIdx, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: read movies: %w", err)
	}
	return out, nil
}

// Embedding returns the stored embedding at row.
func (s *Store) Embedding(ctx context.Context, row int64) ([]float32, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT embedding FROM movies WHERE row_idx = ?`, row).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: row %d missing", ErrCorrupt, row)
	}
	if err != nil {
		return nil, fmt.Errorf("store: read embedding %d: %w", row, err)
	}
	return vector.DecodeEmbedding(blob)
}

// Distance computes vec_l2 between the stored embedding at row and v inside
// SQLite.
func (s *Store) Distance(ctx context.Context, row int64, v []float32) (float64, error) {
	blob, err := vector.EncodeEmbedding(v)
	if err != nil {
		return 0, err
	}
	var d sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `SELECT vec_l2(embedding, ?) FROM movies WHERE row_idx = ?`, blob, row).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: row %d missing", ErrCorrupt, row)
	}
	if err != nil {
		return 0, fmt.Errorf("store: vec_l2 at row %d: %w", row, err)
	}
	if !d.Valid {
		return 0, fmt.Errorf("%w: row %d has no embedding", ErrCorrupt, row)
	}
	return d.Float64, nil
}
