package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"clinic-assistant/internal/handlers"
	"clinic-assistant/internal/prompt"
)

func promptsRouter(store prompt.Store) http.Handler {
	h := handlers.NewPromptsHandler(store)
	r := chi.NewRouter()
	r.Get("/api/prompts", h.List)
	r.Post("/api/prompts", h.Save)
	r.Put("/api/prompts", h.Save)
	r.Get("/api/prompts/active", h.Active)
	return r
}

func TestPromptsHandler_ActiveDefaultsWhenEmpty(t *testing.T) {
	router := promptsRouter(prompt.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/prompts/active", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var active prompt.Prompt
	if err := json.Unmarshal(rec.Body.Bytes(), &active); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if active.ID != "default" {
		t.Errorf("active.ID = %q, want default prompt on empty store", active.ID)
	}
	if active.Content == "" {
		t.Error("default prompt has no content")
	}
}

func TestPromptsHandler_SaveActivatesPrompt(t *testing.T) {
	store := prompt.NewMemoryStore()
	router := promptsRouter(store)

	body := `{"name":"Friendly","content":"You are friendly.","is_active":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/prompts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var saved prompt.Prompt
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if saved.ID == "" || !saved.IsActive {
		t.Errorf("saved = %+v", saved)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/prompts/active", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var active prompt.Prompt
	if err := json.Unmarshal(rec.Body.Bytes(), &active); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if active.ID != saved.ID {
		t.Errorf("active.ID = %q, want %q", active.ID, saved.ID)
	}
}

func TestPromptsHandler_SaveValidation(t *testing.T) {
	router := promptsRouter(prompt.NewMemoryStore())

	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{"content":"c"}`},
		{name: "missing content", body: `{"name":"n"}`},
		{name: "invalid json", body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/prompts", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestPromptsHandler_LastActiveWins(t *testing.T) {
	store := prompt.NewMemoryStore()
	router := promptsRouter(store)

	for _, name := range []string{"First", "Second"} {
		body := `{"name":"` + name + `","content":"content for ` + name + `","is_active":true}`
		req := httptest.NewRequest(http.MethodPut, "/api/prompts", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("save %s status = %d", name, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/prompts/active", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var active prompt.Prompt
	if err := json.Unmarshal(rec.Body.Bytes(), &active); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if active.Name != "Second" {
		t.Errorf("active.Name = %q, want the most recently activated prompt", active.Name)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var prompts []prompt.Prompt
	if err := json.Unmarshal(rec.Body.Bytes(), &prompts); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("listed %d prompts, want 2", len(prompts))
	}
	activeCount := 0
	for _, p := range prompts {
		if p.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Errorf("%d active prompts, want exactly 1", activeCount)
	}
}
