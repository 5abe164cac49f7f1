package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cinematch/models"
)

// ErrCollectionNotFound is returned when a collection id does not exist.
var ErrCollectionNotFound = errors.New("collection not found")

// CollectionsRepository performs SQL operations for themed collections and
// their movies. Visibility rules (owner vs public) are enforced one layer up,
// in the collections service.
type CollectionsRepository struct {
	db *sql.DB
}

// NewCollectionsRepository creates a repository bound to the connection.
func NewCollectionsRepository(db *sql.DB) *CollectionsRepository {
	return &CollectionsRepository{db: db}
}

const collectionColumns = `c.id, c.title, c.description, c.creator_id, c.creator_name,
	c.is_public, c.cover_image, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM collection_movies m WHERE m.collection_id = c.id) AS movie_count`

func scanCollection(row interface{ Scan(...any) error }) (models.ThemedCollection, error) {
	var c models.ThemedCollection
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.CreatorID, &c.CreatorName,
		&c.IsPublic, &c.CoverImage, &c.CreatedAt, &c.UpdatedAt, &c.MovieCount)
	return c, err
}

// Insert stores a new collection and returns it with generated fields set.
func (r *CollectionsRepository) Insert(ctx context.Context, input models.CollectionUpsert, creatorID, creatorName string) (models.ThemedCollection, error) {
	now := time.Now().UTC()
	c := models.ThemedCollection{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		CreatorID:   creatorID,
		CreatorName: creatorName,
		IsPublic:    input.IsPublic,
		CoverImage:  input.CoverImage,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO themed_collections (id, title, description, creator_id, creator_name, is_public, cover_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Description, c.CreatorID, c.CreatorName, c.IsPublic, c.CoverImage, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return models.ThemedCollection{}, fmt.Errorf("insert collection: %w", err)
	}
	return c, nil
}

// GetByID fetches a single collection with its derived movie count.
func (r *CollectionsRepository) GetByID(ctx context.Context, id string) (models.ThemedCollection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM themed_collections c WHERE c.id = ?`, id)

	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ThemedCollection{}, ErrCollectionNotFound
	}
	if err != nil {
		return models.ThemedCollection{}, fmt.Errorf("get collection: %w", err)
	}
	return c, nil
}

// ListByCreator returns a creator's collections, newest first.
func (r *CollectionsRepository) ListByCreator(ctx context.Context, creatorID string) ([]models.ThemedCollection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+collectionColumns+` FROM themed_collections c WHERE c.creator_id = ? ORDER BY c.created_at DESC`,
		creatorID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()
	return collectRows(rows)
}

// ListPublic returns public collections, newest first, optionally filtered by
// a substring match over title, description, or creator name.
func (r *CollectionsRepository) ListPublic(ctx context.Context, search string) ([]models.ThemedCollection, error) {
	query := `SELECT ` + collectionColumns + ` FROM themed_collections c WHERE c.is_public = 1`
	args := []any{}
	if search != "" {
		query += ` AND (c.title LIKE ? OR c.description LIKE ? OR c.creator_name LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY c.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list public collections: %w", err)
	}
	defer rows.Close()
	return collectRows(rows)
}

func collectRows(rows *sql.Rows) ([]models.ThemedCollection, error) {
	collections := []models.ThemedCollection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

// Update applies the caller-editable fields and bumps updated_at.
func (r *CollectionsRepository) Update(ctx context.Context, id string, input models.CollectionUpsert) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE themed_collections
		SET title = ?, description = ?, is_public = ?, cover_image = ?, updated_at = ?
		WHERE id = ?`,
		input.Title, input.Description, input.IsPublic, input.CoverImage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCollectionNotFound
	}
	return nil
}

// Delete removes a collection; its movies go with it via FK cascade.
func (r *CollectionsRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM themed_collections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCollectionNotFound
	}
	return nil
}

// ListMovies returns a collection's movies in display order.
func (r *CollectionsRepository) ListMovies(ctx context.Context, collectionID string) ([]models.CollectionMovie, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, collection_id, movie_name, movie_genre, movie_description, movie_synopsis, movie_poster, added_at, order_index
		FROM collection_movies WHERE collection_id = ? ORDER BY order_index ASC`,
		collectionID)
	if err != nil {
		return nil, fmt.Errorf("list collection movies: %w", err)
	}
	defer rows.Close()

	movies := []models.CollectionMovie{}
	for rows.Next() {
		var m models.CollectionMovie
		if err := rows.Scan(&m.ID, &m.CollectionID, &m.MovieName, &m.MovieGenre, &m.MovieDescription,
			&m.MovieSynopsis, &m.MoviePoster, &m.AddedAt, &m.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan collection movie: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// InsertMovie appends a movie to a collection. The order index is assigned
// max+1 within a transaction; indexes are never renumbered on deletion, so
// gaps are expected.
func (r *CollectionsRepository) InsertMovie(ctx context.Context, collectionID string, movie models.Movie, poster string) (models.CollectionMovie, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.CollectionMovie{}, fmt.Errorf("begin insert movie: %w", err)
	}
	defer tx.Rollback()

	var maxIndex sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(order_index) FROM collection_movies WHERE collection_id = ?`, collectionID).Scan(&maxIndex); err != nil {
		return models.CollectionMovie{}, fmt.Errorf("read max order index: %w", err)
	}

	m := models.CollectionMovie{
		ID:               uuid.NewString(),
		CollectionID:     collectionID,
		MovieName:        movie.Name,
		MovieGenre:       movie.Genre,
		MovieDescription: movie.SmallDescription,
		MovieSynopsis:    movie.Synopsis,
		MoviePoster:      poster,
		AddedAt:          time.Now().UTC(),
		OrderIndex:       int(maxIndex.Int64) + 1,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collection_movies (id, collection_id, movie_name, movie_genre, movie_description, movie_synopsis, movie_poster, added_at, order_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.CollectionID, m.MovieName, m.MovieGenre, m.MovieDescription, m.MovieSynopsis, m.MoviePoster, m.AddedAt, m.OrderIndex)
	if err != nil {
		return models.CollectionMovie{}, fmt.Errorf("insert collection movie: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.CollectionMovie{}, fmt.Errorf("commit insert movie: %w", err)
	}
	return m, nil
}

// DeleteMovie removes a single movie row. Remaining order indexes are left
// untouched.
func (r *CollectionsRepository) DeleteMovie(ctx context.Context, movieID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM collection_movies WHERE id = ?`, movieID)
	if err != nil {
		return false, fmt.Errorf("delete collection movie: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MovieOwner returns the creator id of the collection owning the given movie
// row, for write-permission checks.
func (r *CollectionsRepository) MovieOwner(ctx context.Context, movieID string) (string, error) {
	var creatorID string
	err := r.db.QueryRowContext(ctx, `
		SELECT c.creator_id FROM collection_movies m
		JOIN themed_collections c ON c.id = m.collection_id
		WHERE m.id = ?`, movieID).Scan(&creatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCollectionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve movie owner: %w", err)
	}
	return creatorID, nil
}
