package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinic-assistant/internal/llm"
)

func embeddingsServer(t *testing.T, dim int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		type datum struct {
			Embedding []float64 `json:"embedding"`
		}
		data := make([]datum, len(req.Input))
		for i := range req.Input {
			vec := make([]float64, dim)
			vec[0] = float64(i + 1)
			data[i] = datum{Embedding: vec}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
}

func TestEmbedTexts(t *testing.T) {
	server := embeddingsServer(t, 4)
	defer server.Close()

	client := llm.NewEmbeddingsClient(server.URL, "test-key", "test-model", 4, 5*time.Second)

	vectors, err := client.EmbedTexts(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	for i, vec := range vectors {
		if len(vec) != 4 {
			t.Errorf("vector %d has dimension %d, want 4", i, len(vec))
		}
	}
	// Vectors come back in input order.
	if vectors[0][0] != 1 || vectors[1][0] != 2 {
		t.Errorf("vectors out of input order: %v", vectors)
	}
}

func TestEmbedTexts_EmptyInput(t *testing.T) {
	client := llm.NewEmbeddingsClient("http://unused", "k", "m", 4, time.Second)

	if _, err := client.EmbedTexts(context.Background(), nil); err == nil {
		t.Fatal("EmbedTexts(nil) should fail without hitting the network")
	}
}

func TestEmbedTexts_SizeMismatch(t *testing.T) {
	server := embeddingsServer(t, 4)
	defer server.Close()

	// Client expects 8-dimensional vectors but the server returns 4.
	client := llm.NewEmbeddingsClient(server.URL, "test-key", "test-model", 8, 5*time.Second)

	_, err := client.EmbedTexts(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("EmbedTexts() should reject vectors of the wrong size")
	}
	if !strings.Contains(err.Error(), "expected 8") {
		t.Errorf("error = %v, want size mismatch detail", err)
	}
}

func TestEmbedTexts_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer server.Close()

	client := llm.NewEmbeddingsClient(server.URL, "k", "m", 4, time.Second)

	if _, err := client.EmbedTexts(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("EmbedTexts() should fail when the response count differs from the input count")
	}
}

func TestEmbedTexts_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := llm.NewEmbeddingsClient(server.URL, "k", "m", 4, time.Second)

	_, err := client.EmbedTexts(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("EmbedTexts() should surface non-200 responses")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error = %v, want status code included", err)
	}
}
