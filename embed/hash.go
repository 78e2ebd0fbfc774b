package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/viant/cinematch/vector"
)

// DefaultHashDimension is used when NewHashEncoder gets a non-positive size.
const DefaultHashDimension = 384

// HashEncoder is a feature-hashing bag-of-words encoder. Each token of two or
// more characters is hashed with FNV-1a into a signed bucket; the result is
// L2-normalised. It needs no network and is fully deterministic.
type HashEncoder struct {
	dim int
}

// NewHashEncoder returns a HashEncoder producing dim-length vectors.
func NewHashEncoder(dim int) *HashEncoder {
	if dim <= 0 {
		dim = DefaultHashDimension
	}
	return &HashEncoder{dim: dim}
}

func (e *HashEncoder) Dimension() int { return e.dim }

func (e *HashEncoder) Model() string { return fmt.Sprintf("hash-bow-v1/%d", e.dim) }

func (e *HashEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v := make([]float32, e.dim)
	for _, tok := range Tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		bucket := sum % uint64(e.dim)
		if sum>>63 == 1 {
			v[bucket]--
		} else {
			v[bucket]++
		}
	}
	vector.Normalize(v)
	return v, nil
}

func (e *HashEncoder) EncodeMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Encode(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Tokenize lower-cases text and splits it on anything that is not a letter
// or digit. Single-character tokens are dropped.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 1 {
			out = append(out, f)
		}
	}
	return out
}
