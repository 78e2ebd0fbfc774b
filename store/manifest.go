package store

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Manifest identifies one build. It is written once, after all rows.
type Manifest struct {
	BuildID       string
	Model         string
	Dimension     int
	Count         int
	Source        string
	IndexKind     string
	IndexChecksum string
	CreatedAt     time.Time
}

const (
	keyBuildID       = "build_id"
	keyModel         = "model"
	keyDimension     = "dimension"
	keyCount         = "count"
	keySource        = "source"
	keyIndexKind     = "index_kind"
	keyIndexChecksum = "index_checksum"
	keyCreatedAt     = "created_at"
)

func (m *Manifest) pairs() [][2]string {
	return [][2]string{
		{keyBuildID, m.BuildID},
		{keyModel, m.Model},
		{keyDimension, strconv.Itoa(m.Dimension)},
		{keyCount, strconv.Itoa(m.Count)},
		{keySource, m.Source},
		{keyIndexKind, m.IndexKind},
		{keyIndexChecksum, m.IndexChecksum},
		{keyCreatedAt, m.CreatedAt.UTC().Format(time.RFC3339Nano)},
	}
}

// PutManifest replaces the stored manifest.
func (s *Store) PutManifest(ctx context.Context, m Manifest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin manifest tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM manifest`); err != nil {
		return fmt.Errorf("store: clear manifest: %w", err)
	}
	for _, kv := range m.pairs() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO manifest(key, value) VALUES(?, ?)`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("store: write manifest %s: %w", kv[0], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit manifest: %w", err)
	}
	return nil
}

// Manifest reads the stored manifest. A missing key is ErrCorrupt.
func (s *Store) Manifest(ctx context.Context) (Manifest, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM manifest`)
	if err != nil {
		return Manifest{}, fmt.Errorf("store: query manifest: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Manifest{}, fmt.Errorf("store: scan manifest: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return Manifest{}, fmt.Errorf("store: read manifest: %w", err)
	}

	get := func(key string) (string, error) {
		v, ok := values[key]
		if !ok {
			return "", fmt.Errorf("%w: manifest key %q missing", ErrCorrupt, key)
		}
		return v, nil
	}
	atoi := func(key string) (int, error) {
		v, err := get(key)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: manifest key %q: %v", ErrCorrupt, key, err)
		}
		return n, nil
	}

	var m Manifest
	if m.BuildID, err = get(keyBuildID); err != nil {
		return Manifest{}, err
	}
	if m.Model, err = get(keyModel); err != nil {
		return Manifest{}, err
	}
	if m.Dimension, err = atoi(keyDimension); err != nil {
		return Manifest{}, err
	}
	if m.Count, err = atoi(keyCount); err != nil {
		return Manifest{}, err
	}
	if m.Source, err = get(keySource); err != nil {
		return Manifest{}, err
	}
	if m.IndexKind, err = get(keyIndexKind); err != nil {
		return Manifest{}, err
	}
	if m.IndexChecksum, err = get(keyIndexChecksum); err != nil {
		return Manifest{}, err
	}
	created, err := get(keyCreatedAt)
	if err != nil {
		return Manifest{}, err
	}
	if m.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Manifest{}, fmt.Errorf("%w: manifest created_at: %v", ErrCorrupt, err)
	}
	return m, nil
}
