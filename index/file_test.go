package index_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/index/flat"
	"github.com/viant/cinematch/index/vptree"
)

func TestWriteReadFileRoundTrip(t *testing.T) {
	src := flat.New()
	require.NoError(t, src.Build([][]float32{{0, 0}, {1, 0}, {0, 2}, {3, 3}}))
	path := filepath.Join(t.TempDir(), "movies.index")
	sum, err := index.WriteFile(path, src, "build-1")
	require.NoError(t, err)

	f, err := index.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, index.KindFlat, f.Kind)
	assert.Equal(t, "build-1", f.BuildID)
	assert.Equal(t, sum, f.Checksum)

	dst := flat.New()
	require.NoError(t, f.Restore(dst))
	assert.Equal(t, src.Len(), dst.Len())
	assert.Equal(t, src.Dimension(), dst.Dimension())

	q := []float32{0.9, 0.1}
	wantD, wantR, _ := src.Search(q, 3)
	gotD, gotR, _ := dst.Search(q, 3)
	assert.Equal(t, wantR, gotR)
	assert.Equal(t, wantD, gotD)

	assert.Error(t, f.Restore(vptree.New()), "kind mismatch")
}

func TestReadFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.index")
	require.NoError(t, os.WriteFile(path, []byte("not an index file"), 0o644))
	_, err := index.ReadFile(path)
	require.ErrorIs(t, err, index.ErrCorrupt)

	idx := flat.New()
	require.NoError(t, idx.Build([][]float32{{1, 2}}))
	data, err := index.Encode(idx, "b")
	require.NoError(t, err)
	f, err := index.Decode(data[:len(data)-2])
	require.NoError(t, err)
	require.ErrorIs(t, f.Restore(flat.New()), index.ErrCorrupt)
}
