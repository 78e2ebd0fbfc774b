package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/logging"
	"github.com/viant/cinematch/store"
)

const insertChunk = 500

// Bundle is everything a build produces.
type Bundle struct {
	Movies     []catalog.Movie
	Embeddings [][]float32
	Index      index.Index
	Source     string
	Model      string
}

// Save writes bundle into dir under a fresh build id and returns the
// manifest. Both files are written under temporary names and renamed into
// place once complete.
func Save(ctx context.Context, dir string, b Bundle) (*store.Manifest, error) {
	n := len(b.Movies)
	switch {
	case n == 0:
		return nil, fmt.Errorf("artifact: refusing to save an empty catalog")
	case len(b.Embeddings) != n:
		return nil, fmt.Errorf("artifact: %d movies but %d embeddings", n, len(b.Embeddings))
	case b.Index == nil || b.Index.Len() != n:
		return nil, fmt.Errorf("artifact: index does not hold %d rows", n)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create %s: %w", dir, err)
	}

	buildID := uuid.NewString()
	storePath, indexPath := Paths(dir)
	tmpStore := filepath.Join(dir, "."+StoreFile+"."+buildID)
	tmpIndex := filepath.Join(dir, "."+IndexFile+"."+buildID)
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpStore)
			_ = os.Remove(tmpIndex)
		}
	}()

	checksum, err := index.WriteFile(tmpIndex, b.Index, buildID)
	if err != nil {
		return nil, fmt.Errorf("artifact: write index: %w", err)
	}

	manifest := store.Manifest{
		BuildID:       buildID,
		Model:         b.Model,
		Dimension:     b.Index.Dimension(),
		Count:         n,
		Source:        b.Source,
		IndexKind:     string(b.Index.Kind()),
		IndexChecksum: checksum,
		CreatedAt:     time.Now().UTC(),
	}
	if err := writeStore(ctx, tmpStore, b, manifest); err != nil {
		return nil, err
	}

	if err := os.Rename(tmpIndex, indexPath); err != nil {
		return nil, fmt.Errorf("artifact: publish index: %w", err)
	}
	if err := os.Rename(tmpStore, storePath); err != nil {
		return nil, fmt.Errorf("artifact: publish store: %w", err)
	}
	committed = true

	log := logging.Component("artifact")
	log.Info().Str("build_id", buildID).Int("count", n).
		Str("kind", manifest.IndexKind).Str("dir", dir).Msg("artifacts saved")
	return &manifest, nil
}

func writeStore(ctx context.Context, path string, b Bundle, m store.Manifest) error {
	s, err := store.Create(ctx, path)
	if err != nil {
		return err
	}
	for start := 0; start < len(b.Movies); start += insertChunk {
		end := min(start+insertChunk, len(b.Movies))
		if err := s.InsertMovies(ctx, start, b.Movies[start:end], b.Embeddings[start:end]); err != nil {
			_ = s.Close()
			return err
		}
	}
	if err := s.PutManifest(ctx, m); err != nil {
		_ = s.Close()
		return err
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("artifact: close store: %w", err)
	}
	return nil
}
