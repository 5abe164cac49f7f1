package recommend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cinematch/models"
	"cinematch/services/recommend"
)

type staticExclusions []string

func (s staticExclusions) ExclusionList() []string { return s }

type staticKey string

func (k staticKey) GroqAPIKey() string { return string(k) }

// completionServer returns a stub that replies to every chat completion with
// the given message content, capturing the system prompt it received.
func completionServer(t *testing.T, content string, systemPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			t.Errorf("expected bearer auth, got %q", got)
		}
		var req struct {
			Model          string `json:"model"`
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %q", req.ResponseFormat.Type)
		}
		if systemPrompt != nil && len(req.Messages) > 0 && req.Messages[0].Role == "system" {
			*systemPrompt = req.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func validCompletion(t *testing.T) string {
	t.Helper()
	movies := make([]models.Movie, 5)
	for i := range movies {
		movies[i] = models.Movie{
			Name:             "Movie " + string(rune('A'+i)),
			SmallDescription: "small",
			Genre:            "Drama",
			BigDescription:   "big",
			Synopsis:         "synopsis",
		}
	}
	payload, err := json.Marshal(map[string]any{"movies": movies})
	if err != nil {
		t.Fatalf("marshal completion: %v", err)
	}
	return string(payload)
}

func TestGetRecommendationsReturnsModelMovies(t *testing.T) {
	var prompt string
	srv := completionServer(t, validCompletion(t), &prompt)

	svc := recommend.NewService(staticExclusions(nil), staticKey("gsk_test"), recommend.Options{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})

	movies, source, err := svc.GetRecommendations(context.Background(), "heartwarming drama")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if source != recommend.SourceLive {
		t.Fatalf("expected live source, got %q", source)
	}
	if len(movies) != 5 {
		t.Fatalf("expected 5 movies, got %d", len(movies))
	}
	for _, m := range movies {
		if m.Name == "" || m.Genre == "" || m.SmallDescription == "" || m.BigDescription == "" || m.Synopsis == "" {
			t.Fatalf("movie missing required fields: %+v", m)
		}
	}
	if strings.Contains(prompt, "Do NOT recommend") {
		t.Fatalf("expected no exclusion section for empty stores, prompt was:\n%s", prompt)
	}
}

func TestPromptContainsExclusionTitlesVerbatim(t *testing.T) {
	var prompt string
	srv := completionServer(t, validCompletion(t), &prompt)

	svc := recommend.NewService(staticExclusions{"Inception", "Heat"}, staticKey("gsk_test"), recommend.Options{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})

	if _, _, err := svc.GetRecommendations(context.Background(), "anything"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !strings.Contains(prompt, "- Inception") {
		t.Fatalf("expected exclusion section to list Inception, prompt was:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- Heat") {
		t.Fatalf("expected exclusion section to list Heat")
	}
}

func TestMalformedCompletionFallsBack(t *testing.T) {
	srv := completionServer(t, "this is not json", nil)

	svc := recommend.NewService(staticExclusions(nil), staticKey("gsk_test"), recommend.Options{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})

	movies, source, err := svc.GetRecommendations(context.Background(), "anything")
	if err != nil {
		t.Fatalf("fallback path must not return an error, got %v", err)
	}
	if source != recommend.SourceFallback {
		t.Fatalf("expected fallback source, got %q", source)
	}
	if len(movies) != 5 {
		t.Fatalf("expected 5 fallback movies, got %d", len(movies))
	}
	for _, m := range movies {
		if m.Name == "" || m.Genre == "" || m.SmallDescription == "" || m.BigDescription == "" || m.Synopsis == "" {
			t.Fatalf("fallback movie missing required fields: %+v", m)
		}
	}
}

func TestWrongMovieCountFallsBack(t *testing.T) {
	payload, _ := json.Marshal(map[string]any{"movies": []models.Movie{{
		Name: "Only One", SmallDescription: "s", Genre: "Drama", BigDescription: "b", Synopsis: "y",
	}}})
	srv := completionServer(t, string(payload), nil)

	svc := recommend.NewService(staticExclusions(nil), staticKey("gsk_test"), recommend.Options{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})

	_, source, err := svc.GetRecommendations(context.Background(), "anything")
	if err != nil {
		t.Fatalf("expected fallback, got error %v", err)
	}
	if source != recommend.SourceFallback {
		t.Fatalf("expected fallback for wrong movie count, got %q", source)
	}
}

func TestUpstreamErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := recommend.NewService(staticExclusions(nil), staticKey("gsk_test"), recommend.Options{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})

	movies, source, err := svc.GetRecommendations(context.Background(), "anything")
	if err != nil {
		t.Fatalf("expected fallback, got error %v", err)
	}
	if source != recommend.SourceFallback || len(movies) != 5 {
		t.Fatalf("expected 5 fallback movies, got %d (%q)", len(movies), source)
	}
}

func TestMissingAPIKeyFailsFast(t *testing.T) {
	srv := completionServer(t, validCompletion(t), nil)

	svc := recommend.NewService(staticExclusions(nil), staticKey(""), recommend.Options{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})

	_, _, err := svc.GetRecommendations(context.Background(), "anything")
	if !errors.Is(err, recommend.ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}
