package models

import (
	"encoding/hex"
	"hash/fnv"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"
)

// Movie is a single recommendation as produced by the discovery engine.
// Name carries the human-readable identity; the dedup key is derived, never stored.
type Movie struct {
	Name             string `json:"name"`
	SmallDescription string `json:"smallDescription"`
	Genre            string `json:"genre"`
	BigDescription   string `json:"bigDescription"`
	Synopsis         string `json:"synopsis"`
}

// LibraryEntry is a movie recorded in one of the library stores (saved,
// watched, disliked). ID is the derived key; AddedAt is set once at insertion.
type LibraryEntry struct {
	Movie
	ID      string    `json:"id"`
	AddedAt time.Time `json:"addedAt"`
}

// MovieKey derives the dedup/removal identifier for a movie: a 64-bit FNV-1a
// hash of the canonicalized (name, primary genre) tuple, rendered as 16 hex
// characters. Two movies with the same canonical name and primary genre
// collide intentionally.
func MovieKey(m Movie) string {
	h := fnv.New64a()
	h.Write([]byte(CanonicalTitle(m.Name)))
	h.Write([]byte{0})
	h.Write([]byte(CanonicalTitle(PrimaryGenre(m.Genre))))
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalTitle normalizes a title for identity comparison: romanized to
// ASCII, lower-cased, and with runs of whitespace collapsed to single spaces.
func CanonicalTitle(s string) string {
	s = unidecode.Unidecode(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// PrimaryGenre returns the first segment of a comma-separated genre string,
// so "Action, Adventure" and "Action" identify the same film.
func PrimaryGenre(genre string) string {
	if i := strings.Index(genre, ","); i >= 0 {
		genre = genre[:i]
	}
	return strings.TrimSpace(genre)
}
