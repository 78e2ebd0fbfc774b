package embed

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/cinematch/config"
)

// fakeEmbeddings answers with vectors whose first component is the input
// length, returned in reverse index order.
func fakeEmbeddings(t *testing.T, dim int, batches *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		var req embeddingRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "all-minilm", req.Model)
		batches.Add(1)

		type item struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		var data []item
		for i := len(req.Input) - 1; i >= 0; i-- {
			v := make([]float32, dim)
			v[0] = float32(len(req.Input[i]))
			data = append(data, item{Index: i, Embedding: v})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
}

func TestHTTPEncoderBatches(t *testing.T) {
	var batches atomic.Int32
	srv := fakeEmbeddings(t, 4, &batches)
	defer srv.Close()

	enc := NewHTTPEncoder(HTTPOptions{Endpoint: srv.URL + "/v1", APIKey: "secret", Dimension: 4, BatchSize: 2})
	vecs, err := enc.EncodeMany(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	require.NoError(t, err)
	require.Len(t, vecs, 5)
	for i, v := range vecs {
		assert.Equal(t, float32(i+1), v[0])
	}
	assert.Equal(t, int32(3), batches.Load())
	assert.Equal(t, "all-minilm", enc.Model())
}

func TestHTTPEncoderRejectsWrongDimension(t *testing.T) {
	var batches atomic.Int32
	srv := fakeEmbeddings(t, 3, &batches)
	defer srv.Close()

	enc := NewHTTPEncoder(HTTPOptions{Endpoint: srv.URL + "/v1/embeddings", APIKey: "secret", Dimension: 4})
	_, err := enc.Encode(context.Background(), "hello")
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 4, dimErr.Want)
	assert.Equal(t, 3, dimErr.Got)
}

func TestHTTPEncoderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPEncoder(HTTPOptions{Endpoint: srv.URL}).Encode(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestNewSelectsProvider(t *testing.T) {
	enc, err := New(config.EncoderConfig{Provider: "hash", Dimension: 32})
	require.NoError(t, err)
	assert.IsType(t, &HashEncoder{}, enc)
	assert.Equal(t, 32, enc.Dimension())

	enc, err = New(config.EncoderConfig{Provider: "http", Model: "nomic-embed-text", Dimension: 768})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", enc.Model())
	assert.Equal(t, 768, enc.Dimension())

	_, err = New(config.EncoderConfig{Provider: "onnx"})
	require.Error(t, err)
}

func TestHTTPEncoderOpensCircuit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	enc := NewHTTPEncoder(HTTPOptions{Endpoint: srv.URL})
	for i := 0; i < 5; i++ {
		_, err := enc.Encode(context.Background(), "x")
		require.Error(t, err)
	}
	_, err := enc.Encode(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, int32(5), calls.Load())
}

func TestHTTPEncoderRejectsBadIndices(t *testing.T) {
	for name, indices := range map[string][]int{
		"duplicate":    {0, 0},
		"out of range": {0, 2},
		"negative":     {-1, 1},
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				data := make([]map[string]any, 0, len(indices))
				for _, idx := range indices {
					data = append(data, map[string]any{"index": idx, "embedding": []float32{1, 0}})
				}
				_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
			}))
			defer srv.Close()

			enc := NewHTTPEncoder(HTTPOptions{Endpoint: srv.URL, Dimension: 2})
			_, err := enc.EncodeMany(context.Background(), []string{"a", "b"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "index")
		})
	}
}
