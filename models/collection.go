package models

import "time"

// ThemedCollection is a user-authored, optionally public, ordered list of
// movies. MovieCount is a derived aggregate and never persisted directly.
type ThemedCollection struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatorID   string    `json:"creator_id"`
	CreatorName string    `json:"creator_name"`
	IsPublic    bool      `json:"is_public"`
	CoverImage  string    `json:"cover_image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	MovieCount  int       `json:"movie_count"`
}

// CollectionMovie is a movie placed inside a themed collection. OrderIndex
// defines display order; it is assigned max+1 at insertion and never
// renumbered on deletion, so gaps are expected.
type CollectionMovie struct {
	ID               string    `json:"id"`
	CollectionID     string    `json:"collection_id"`
	MovieName        string    `json:"movie_name"`
	MovieGenre       string    `json:"movie_genre"`
	MovieDescription string    `json:"movie_description,omitempty"`
	MovieSynopsis    string    `json:"movie_synopsis,omitempty"`
	MoviePoster      string    `json:"movie_poster,omitempty"`
	AddedAt          time.Time `json:"added_at"`
	OrderIndex       int       `json:"order_index"`
}

// CollectionUpsert is the caller-supplied portion of a themed collection.
type CollectionUpsert struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"is_public"`
	CoverImage  string `json:"cover_image,omitempty"`
}
