package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/logging"
	"github.com/viant/cinematch/store"
)

// spotCheckTolerance bounds the vec_l2 distance between a stored embedding
// and the matching index vector.
const spotCheckTolerance = 1e-4

// LoadOptions carries the serving encoder identity. Empty fields skip the
// corresponding check.
type LoadOptions struct {
	Model     string
	Dimension int
}

// Artifacts is a verified, immutable build.
type Artifacts struct {
	Manifest store.Manifest
	Movies   []catalog.Movie
	Index    index.Index
}

// Load opens the artifacts in dir and verifies them against each other and
// against opts.
func Load(ctx context.Context, dir string, opts LoadOptions) (*Artifacts, error) {
	storePath, indexPath := Paths(dir)
	for _, p := range []string{storePath, indexPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, missing(p, err)
		}
	}

	file, err := index.ReadFile(indexPath)
	if err != nil {
		return nil, missing(indexPath, err)
	}

	s, err := store.OpenReadOnly(ctx, storePath)
	if err != nil {
		return nil, missing(storePath, err)
	}
	defer s.Close()

	manifest, err := s.Manifest(ctx)
	if err != nil {
		return nil, missing(storePath, err)
	}

	if err := expect("build_id", manifest.BuildID, file.BuildID); err != nil {
		return nil, err
	}
	if err := expect("index_checksum", manifest.IndexChecksum, file.Checksum); err != nil {
		return nil, err
	}
	if err := expect("index_kind", manifest.IndexKind, string(file.Kind)); err != nil {
		return nil, err
	}

	idx, err := NewIndex(file.Kind)
	if err != nil {
		return nil, missing(indexPath, err)
	}
	if err := file.Restore(idx); err != nil {
		return nil, missing(indexPath, err)
	}

	movies, err := s.Movies(ctx)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			return nil, missing(storePath, err)
		}
		return nil, err
	}

	if err := expect("count", itoa(manifest.Count), itoa(idx.Len())); err != nil {
		return nil, err
	}
	if err := expect("count", itoa(manifest.Count), itoa(len(movies))); err != nil {
		return nil, err
	}
	if err := expect("dimension", itoa(manifest.Dimension), itoa(idx.Dimension())); err != nil {
		return nil, err
	}
	if opts.Model != "" {
		if err := expect("model", manifest.Model, opts.Model); err != nil {
			return nil, err
		}
	}
	if opts.Dimension > 0 {
		if err := expect("dimension", itoa(manifest.Dimension), itoa(opts.Dimension)); err != nil {
			return nil, err
		}
	}
	if err := spotCheck(ctx, s, idx); err != nil {
		return nil, err
	}

	log := logging.Component("artifact")
	log.Info().Str("build_id", manifest.BuildID).Int("count", manifest.Count).
		Str("model", manifest.Model).Str("kind", manifest.IndexKind).Msg("artifacts loaded")
	return &Artifacts{Manifest: manifest, Movies: movies, Index: idx}, nil
}

// spotCheck compares the first, middle and last stored embeddings with the
// index vectors using the vec_l2 SQL function.
func spotCheck(ctx context.Context, s *store.Store, idx index.Index) error {
	n := int64(idx.Len())
	if n == 0 {
		return nil
	}
	for _, row := range []int64{0, n / 2, n - 1} {
		d, err := s.Distance(ctx, row, idx.Vector(row))
		if err != nil {
			return &MismatchError{Field: "embedding", Want: "row " + strconv.FormatInt(row, 10), Got: err.Error()}
		}
		if d > spotCheckTolerance {
			return &MismatchError{
				Field: "embedding",
				Want:  "row " + strconv.FormatInt(row, 10),
				Got:   fmt.Sprintf("l2 distance %.6f", d),
			}
		}
	}
	return nil
}

func expect(field, want, got string) error {
	if want != got {
		return &MismatchError{Field: field, Want: want, Got: got}
	}
	return nil
}

func itoa(n int) string { return strconv.Itoa(n) }
