package omdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"cinematch/models"
)

// Client talks to the OMDB proxy service for title lookup and
// similar-title recommendations.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates an OMDB proxy client for the given base URL.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpc: httpc}
}

// Record is the wire shape the proxy returns for a single title.
type Record struct {
	Title      string `json:"title"`
	Year       string `json:"year"`
	IMDBRating string `json:"imdbRating"`
	Genre      string `json:"genre"`
	Actors     string `json:"actors"`
	Plot       string `json:"plot"`
	Poster     string `json:"poster"`
}

// Movie converts a proxy record into the app's movie shape: first genre
// only, "YEAR • IMDb RATING" as the short line, plot plus cast as synopsis.
func (r Record) Movie() models.Movie {
	return models.Movie{
		Name:             r.Title,
		Genre:            models.PrimaryGenre(r.Genre),
		SmallDescription: fmt.Sprintf("%s • IMDb %s", r.Year, r.IMDBRating),
		BigDescription:   r.Plot,
		Synopsis:         fmt.Sprintf("%s Starring: %s", r.Plot, r.Actors),
	}
}

type titleRequest struct {
	Title string `json:"title"`
}

// Lookup searches the proxy for a single title. An upstream 404 means "no
// result" and yields an empty slice, not an error.
func (c *Client) Lookup(ctx context.Context, title string) ([]models.Movie, error) {
	var record Record
	found, err := c.post(ctx, "/movie", title, &record)
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.Movie{}, nil
	}
	return []models.Movie{record.Movie()}, nil
}

// Recommendations fetches similar titles for a seed movie.
func (c *Client) Recommendations(ctx context.Context, title string) ([]models.Movie, error) {
	var records []Record
	found, err := c.post(ctx, "/recommendations", title, &records)
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.Movie{}, nil
	}
	movies := make([]models.Movie, 0, len(records))
	for _, r := range records {
		movies = append(movies, r.Movie())
	}
	return movies, nil
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

// queryTimeout caps a single Q&A round trip.
const queryTimeout = 10 * time.Second

// Query forwards a free-text movie question to the proxy's Q&A endpoint.
// One attempt with a short deadline; the chat surface degrades to a canned
// reply on failure instead of retrying.
func (c *Client) Query(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	body, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		return "", fmt.Errorf("marshal query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query/", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create query request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("omdb proxy returned status %d", resp.StatusCode)
	}

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode query response: %w", err)
	}
	return parsed.Answer, nil
}

// post sends the title payload and decodes the reply into out. It reports
// found=false for a 404. Transient failures (network errors and 5xx) are
// retried with backoff; 4xx responses are not.
func (c *Client) post(ctx context.Context, path, title string, out any) (bool, error) {
	body, err := json.Marshal(titleRequest{Title: title})
	if err != nil {
		return false, fmt.Errorf("marshal omdb request: %w", err)
	}

	found := true
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				found = false
				return nil
			case resp.StatusCode >= 500:
				return fmt.Errorf("omdb proxy returned status %d", resp.StatusCode)
			case resp.StatusCode >= 400:
				return retry.Unrecoverable(fmt.Errorf("omdb proxy returned status %d", resp.StatusCode))
			}

			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode omdb response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return false, err
	}
	return found, nil
}
