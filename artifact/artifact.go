// Package artifact saves and loads the pair of build outputs, the SQLite
// metadata store and the vector index file, and checks that they belong
// together.
package artifact

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/index/flat"
	"github.com/viant/cinematch/index/vptree"
)

const (
	StoreFile = "movies.db"
	IndexFile = "movies.index"
)

// ErrArtifactMissing reports an absent or unreadable artifact file.
var ErrArtifactMissing = errors.New("artifact: missing or unreadable")

// MismatchError reports artifacts that exist but disagree with each other or
// with the configured encoder.
type MismatchError struct {
	Field string
	Want  string
	Got   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("artifact: %s mismatch: expected %q, found %q", e.Field, e.Want, e.Got)
}

// Paths returns the store and index file paths inside dir.
func Paths(dir string) (storePath, indexPath string) {
	return filepath.Join(dir, StoreFile), filepath.Join(dir, IndexFile)
}

// NewIndex returns an empty index of kind.
func NewIndex(kind index.Kind) (index.Index, error) {
	switch kind {
	case index.KindFlat:
		return flat.New(), nil
	case index.KindVPTree:
		return vptree.New(), nil
	default:
		return nil, fmt.Errorf("artifact: unsupported index kind %q", kind)
	}
}

func missing(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrArtifactMissing, path, err)
}
