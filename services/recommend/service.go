package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"cinematch/models"
)

// ErrNoAPIKey is the one error that reaches callers: the completion
// credential is not configured, so no request was attempted. All other
// failures degrade to the fallback list.
var ErrNoAPIKey = errors.New("no API key configured for the completion service")

// Source tells callers (and tests) whether an answer came from the model or
// from the degraded-mode list. The movie payload is identical either way.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// ExclusionSource provides movie names the model must not recommend.
type ExclusionSource interface {
	ExclusionList() []string
}

// CredentialSource provides the completion API key.
type CredentialSource interface {
	GroqAPIKey() string
}

// Service builds recommendation prompts and validates model replies.
type Service struct {
	client      *groqClient
	exclusions  ExclusionSource
	credentials CredentialSource
}

// Options configures optional Service knobs.
type Options struct {
	// BaseURL overrides the completion endpoint, used by tests.
	BaseURL string
	// HTTPClient overrides the default 60s-timeout client.
	HTTPClient *http.Client
}

// NewService wires the recommendation builder.
func NewService(exclusions ExclusionSource, credentials CredentialSource, opts Options) *Service {
	return &Service{
		client:      newGroqClient(opts.BaseURL, opts.HTTPClient),
		exclusions:  exclusions,
		credentials: credentials,
	}
}

type moviesEnvelope struct {
	Movies []models.Movie `json:"movies"`
}

// GetRecommendations asks the completion service for exactly five movies
// matching the free-text query. Missing credentials fail fast; every other
// failure (network, non-2xx, malformed JSON, schema violation) returns the
// fixed fallback list with SourceFallback, never an error.
func (s *Service) GetRecommendations(ctx context.Context, query string) ([]models.Movie, Source, error) {
	apiKey := strings.TrimSpace(s.credentials.GroqAPIKey())
	if apiKey == "" {
		return nil, "", ErrNoAPIKey
	}

	exclusions := s.exclusions.ExclusionList()
	systemPrompt := buildSystemPrompt(exclusions)

	content, err := s.client.complete(ctx, apiKey, systemPrompt, query)
	if err != nil {
		log.Printf("[recommend] completion failed, serving fallback: %v", err)
		return FallbackMovies(), SourceFallback, nil
	}

	movies, err := parseMovies(content)
	if err != nil {
		log.Printf("[recommend] invalid completion payload, serving fallback: %v", err)
		return FallbackMovies(), SourceFallback, nil
	}
	return movies, SourceLive, nil
}

// parseMovies decodes and validates the model reply: an object with a movies
// array of exactly five fully-populated entries.
func parseMovies(content string) ([]models.Movie, error) {
	var envelope moviesEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("parse completion content: %w", err)
	}
	if len(envelope.Movies) != 5 {
		return nil, fmt.Errorf("expected exactly 5 movies, got %d", len(envelope.Movies))
	}
	for i, m := range envelope.Movies {
		if m.Name == "" || m.SmallDescription == "" || m.Genre == "" || m.BigDescription == "" || m.Synopsis == "" {
			return nil, fmt.Errorf("movie %d is missing required fields", i)
		}
	}
	return envelope.Movies, nil
}

// buildSystemPrompt fixes the output contract and injects the exclusion
// titles verbatim.
func buildSystemPrompt(exclusions []string) string {
	var b strings.Builder
	b.WriteString(`You are a movie recommendation expert. When asked about movies,
always respond with valid JSON objects that match this structure:
{
  "movies": [
    {
      "name": "Movie Title",
      "smallDescription": "Brief one-line description (max 60 characters)",
      "genre": "Primary Genre",
      "bigDescription": "Detailed description (2-3 sentences about plot and style)",
      "synopsis": "Complete plot synopsis (4-5 sentences with key story elements)"
    }
  ]
}

Based on the user's input, recommend exactly 5 movies that match their vibe or request.
Make sure to:
- Include a mix of popular and lesser-known films
- Match the mood, genre, or theme requested
- Provide accurate information about real movies
- Keep descriptions engaging and informative
`)

	if len(exclusions) > 0 {
		b.WriteString("\nIMPORTANT: Do NOT recommend any of these movies as the user has already watched or saved them:\n")
		for _, name := range exclusions {
			b.WriteString("- ")
			b.WriteString(name)
			b.WriteString("\n")
		}
		b.WriteString("\nPlease suggest different movies that match the user's request but are NOT in the above list.\n")
	}

	b.WriteString("\nYour response should ONLY contain the JSON object and nothing else.\n")
	return b.String()
}
