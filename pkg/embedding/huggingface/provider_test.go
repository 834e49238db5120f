package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecomm-product-bot/pkg/embedding"
	"ecomm-product-bot/pkg/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRequiresToken(t *testing.T) {
	_, err := NewHuggingFaceProvider("", "", "", nil)
	require.Error(t, err)
	assert.Equal(t, failure.KindProvider, failure.KindOf(err))
}

func TestGenerateBatch(t *testing.T) {
	var calls int
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/BAAI/bge-base-en-v1.5/pipeline/feature-extraction", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Options.WaitForModel)

		out := make([][]float32, len(req.Inputs))
		for i, in := range req.Inputs {
			out[i] = []float32{float32(len(in)), 1}
		}
		_ = json.NewEncoder(w).Encode(out)
	})

	p, err := NewHuggingFaceProvider("hf_test", "", srv.URL, srv.Client())
	require.NoError(t, err)
	p.batchSize = 2

	vectors, err := p.GenerateBatch(context.Background(), []string{"a", "bb", "ccc"}, embedding.TaskRetrievalDocument)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, [][]float32{{1, 1}, {2, 1}, {3, 1}}, vectors)

	res, err := p.Generate(context.Background(), "dddd", embedding.TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 1}, res.Embedding.Values)
	assert.Equal(t, "huggingface", p.Name())
}

func TestGenerateClassifiesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   failure.Kind
	}{
		{"model loading", http.StatusServiceUnavailable, failure.KindTransient},
		{"rate limited", http.StatusTooManyRequests, failure.KindTransient},
		{"bad token", http.StatusUnauthorized, failure.KindRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			})
			p, err := NewHuggingFaceProvider("hf_test", "", srv.URL, srv.Client())
			require.NoError(t, err)

			_, err = p.Generate(context.Background(), "x", embedding.TaskRetrievalQuery)
			require.Error(t, err)
			assert.Equal(t, tt.want, failure.KindOf(err))
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestGenerateCountMismatch(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	p, err := NewHuggingFaceProvider("hf_test", "", srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "x", embedding.TaskRetrievalQuery)
	require.Error(t, err)
	assert.Equal(t, failure.KindRemote, failure.KindOf(err))
}
