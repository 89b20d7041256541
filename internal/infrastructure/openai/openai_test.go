package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/go-backend/internal/cfg"
	"github.com/stylefeed/go-backend/pkg/e"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)            {}
func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

func testCfg(baseURL string) *cfg.OpenAICfg {
	return &cfg.OpenAICfg{
		BaseURL:        baseURL,
		ApiKey:         "test-key",
		EmbeddingModel: "text-embedding-3-small",
		ChatModel:      "gpt-4o-mini",
		Timeout:        2 * time.Second,
		MaxRetries:     1,
	}
}

func TestEmbed(t *testing.T) {
	ctx := context.Background()

	t.Run("sends model and input, returns vector", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/embeddings", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "text-embedding-3-small", req["model"])
			assert.Equal(t, "wool coat", req["input"])

			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
			})
		}))
		defer srv.Close()

		client := NewClient(testCfg(srv.URL), nopLogger{})
		vector, err := client.Embed(ctx, "wool coat")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
	})

	t.Run("empty data is an empty vector error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
		}))
		defer srv.Close()

		client := NewClient(testCfg(srv.URL), nopLogger{})
		_, err := client.Embed(ctx, "x")
		assert.ErrorIs(t, err, e.ErrEmptyVector)
	})

	t.Run("retries on server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"embedding": []float32{1}}},
			})
		}))
		defer srv.Close()

		config := testCfg(srv.URL)
		config.MaxRetries = 3
		client := NewClient(config, nopLogger{})

		vector, err := client.Embed(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, []float32{1}, vector)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		config := testCfg(srv.URL)
		config.MaxRetries = 2
		client := NewClient(config, nopLogger{})

		_, err := client.Embed(ctx, "x")
		require.Error(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("requests json mode and returns raw content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)

			var req struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
				ResponseFormat struct {
					Type string `json:"type"`
				} `json:"response_format"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "gpt-4o-mini", req.Model)
			assert.Equal(t, "json_object", req.ResponseFormat.Type)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "user", req.Messages[1].Role)

			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": `{"recommendations":[]}`}},
				},
			})
		}))
		defer srv.Close()

		client := NewClient(testCfg(srv.URL), nopLogger{})
		raw, err := client.Generate(ctx, "you are a stylist", "saved products: ...")
		require.NoError(t, err)
		assert.JSONEq(t, `{"recommendations":[]}`, string(raw))
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}))
		defer srv.Close()

		client := NewClient(testCfg(srv.URL), nopLogger{})
		_, err := client.Generate(ctx, "s", "u")
		assert.Error(t, err)
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		config := testCfg(srv.URL)
		config.MaxRetries = 5
		client := NewClient(config, nopLogger{})

		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.Generate(cancelCtx, "s", "u")
		assert.Error(t, err)
	})
}
