package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/index"
)

func testBundle(t *testing.T, kind index.Kind) Bundle {
	t.Helper()
	movies := []catalog.Movie{
		{ID: 1, Title: "Alpha", Genres: []string{"Drama"}, TextContent: "Alpha: one"},
		{ID: 2, Title: "Bravo", Genres: []string{}, TextContent: "Bravo: two"},
		{ID: 3, Title: "Charlie", Genres: []string{"Comedy"}, TextContent: "Charlie: three"},
	}
	vecs := [][]float32{{1, 0}, {0, 1}, {0.6, 0.8}}
	idx, err := NewIndex(kind)
	require.NoError(t, err)
	require.NoError(t, idx.Build(vecs))
	return Bundle{Movies: movies, Embeddings: vecs, Index: idx, Source: "tmdb", Model: "hash-bow-v1/2"}
}

func TestSaveLoad(t *testing.T) {
	for _, kind := range []index.Kind{index.KindFlat, index.KindVPTree} {
		t.Run(string(kind), func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			manifest, err := Save(ctx, dir, testBundle(t, kind))
			require.NoError(t, err)
			assert.NotEmpty(t, manifest.BuildID)
			assert.Len(t, manifest.IndexChecksum, 64)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 2, "temporary files must not remain")

			a, err := Load(ctx, dir, LoadOptions{Model: "hash-bow-v1/2", Dimension: 2})
			require.NoError(t, err)
			assert.Equal(t, manifest.BuildID, a.Manifest.BuildID)
			assert.Equal(t, string(kind), a.Manifest.IndexKind)
			require.Len(t, a.Movies, 3)
			assert.Equal(t, "Charlie", a.Movies[2].Title)

			dist, rows, err := a.Index.Search([]float32{0, 1}, 1)
			require.NoError(t, err)
			assert.Equal(t, []int64{1}, rows)
			assert.InDelta(t, 0, dist[0], 1e-6)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(context.Background(), t.TempDir(), LoadOptions{})
	require.ErrorIs(t, err, ErrArtifactMissing)
	assert.Contains(t, err.Error(), StoreFile)
}

func TestLoadCorruptIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	_, err := Save(ctx, dir, testBundle(t, index.KindFlat))
	require.NoError(t, err)

	_, indexPath := Paths(dir)
	require.NoError(t, os.WriteFile(indexPath, []byte("garbage"), 0o644))
	_, err = Load(ctx, dir, LoadOptions{})
	require.ErrorIs(t, err, ErrArtifactMissing)
}

func TestLoadModelMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	_, err := Save(ctx, dir, testBundle(t, index.KindFlat))
	require.NoError(t, err)

	_, err = Load(ctx, dir, LoadOptions{Model: "all-minilm"})
	var mm *MismatchError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, "model", mm.Field)

	_, err = Load(ctx, dir, LoadOptions{Dimension: 384})
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, "dimension", mm.Field)
}

func TestLoadRejectsMixedBuilds(t *testing.T) {
	ctx := context.Background()
	first, second := t.TempDir(), t.TempDir()
	_, err := Save(ctx, first, testBundle(t, index.KindFlat))
	require.NoError(t, err)
	_, err = Save(ctx, second, testBundle(t, index.KindFlat))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(first, IndexFile))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(second, IndexFile), data, 0o644))

	_, err = Load(ctx, second, LoadOptions{})
	var mm *MismatchError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, "build_id", mm.Field)
}

func TestSaveRejectsInconsistentBundle(t *testing.T) {
	b := testBundle(t, index.KindFlat)
	b.Embeddings = b.Embeddings[:2]
	_, err := Save(context.Background(), t.TempDir(), b)
	require.Error(t, err)

	_, err = Save(context.Background(), t.TempDir(), Bundle{})
	require.Error(t, err)
}
