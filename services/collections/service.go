package collections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cinematch/internal/database"
	"cinematch/models"
)

var (
	// ErrNotFound is returned when a collection does not exist, or exists
	// but is private and the caller is not its creator. The two cases are
	// deliberately indistinguishable.
	ErrNotFound = errors.New("collection not found")

	// ErrForbidden is returned for writes to a collection the caller does
	// not own.
	ErrForbidden = errors.New("not the collection owner")

	// ErrTitleRequired is returned when creating or updating a collection
	// without a title.
	ErrTitleRequired = errors.New("collection title is required")

	// ErrMovieNameRequired is returned when adding a movie without a name.
	ErrMovieNameRequired = errors.New("movie name is required")
)

// accountDirectory resolves account identities for creator stamping.
type accountDirectory interface {
	Get(id string) (models.Account, bool)
}

// Service enforces row-level visibility over the collections repository:
// writes require the caller to be the creator; reads allow the creator's own
// rows plus any public row.
type Service struct {
	repo     *database.CollectionsRepository
	accounts accountDirectory
}

// NewService wires the collections service.
func NewService(repo *database.CollectionsRepository, accounts accountDirectory) *Service {
	return &Service{repo: repo, accounts: accounts}
}

// Create stores a new collection owned by accountID.
func (s *Service) Create(ctx context.Context, accountID string, input models.CollectionUpsert) (models.ThemedCollection, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return models.ThemedCollection{}, ErrTitleRequired
	}

	creatorName := "Anonymous"
	if account, ok := s.accounts.Get(accountID); ok {
		creatorName = account.CreatorName()
	}

	return s.repo.Insert(ctx, input, accountID, creatorName)
}

// ListMine returns the caller's own collections, newest first.
func (s *Service) ListMine(ctx context.Context, accountID string) ([]models.ThemedCollection, error) {
	return s.repo.ListByCreator(ctx, accountID)
}

// ListPublic returns public collections regardless of owner, optionally
// filtered by a search term. accountID may be empty (anonymous browsing).
func (s *Service) ListPublic(ctx context.Context, search string) ([]models.ThemedCollection, error) {
	return s.repo.ListPublic(ctx, strings.TrimSpace(search))
}

// Get returns a collection the caller is allowed to see.
func (s *Service) Get(ctx context.Context, accountID, collectionID string) (models.ThemedCollection, error) {
	c, err := s.repo.GetByID(ctx, collectionID)
	if errors.Is(err, database.ErrCollectionNotFound) {
		return models.ThemedCollection{}, ErrNotFound
	}
	if err != nil {
		return models.ThemedCollection{}, err
	}
	if !s.canRead(c, accountID) {
		return models.ThemedCollection{}, ErrNotFound
	}
	return c, nil
}

// Update applies edits to a collection the caller owns.
func (s *Service) Update(ctx context.Context, accountID, collectionID string, input models.CollectionUpsert) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return ErrTitleRequired
	}
	if err := s.requireOwner(ctx, accountID, collectionID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, collectionID, input); err != nil {
		if errors.Is(err, database.ErrCollectionNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes a collection the caller owns, movies included.
func (s *Service) Delete(ctx context.Context, accountID, collectionID string) error {
	if err := s.requireOwner(ctx, accountID, collectionID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, collectionID); err != nil {
		if errors.Is(err, database.ErrCollectionNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Movies lists a visible collection's movies in display order.
func (s *Service) Movies(ctx context.Context, accountID, collectionID string) ([]models.CollectionMovie, error) {
	if _, err := s.Get(ctx, accountID, collectionID); err != nil {
		return nil, err
	}
	return s.repo.ListMovies(ctx, collectionID)
}

// AddMovie appends a movie to a collection the caller owns.
func (s *Service) AddMovie(ctx context.Context, accountID, collectionID string, movie models.Movie, poster string) (models.CollectionMovie, error) {
	if strings.TrimSpace(movie.Name) == "" {
		return models.CollectionMovie{}, ErrMovieNameRequired
	}
	if err := s.requireOwner(ctx, accountID, collectionID); err != nil {
		return models.CollectionMovie{}, err
	}
	return s.repo.InsertMovie(ctx, collectionID, movie, poster)
}

// RemoveMovie deletes a movie row from a collection the caller owns.
func (s *Service) RemoveMovie(ctx context.Context, accountID, movieID string) error {
	owner, err := s.repo.MovieOwner(ctx, movieID)
	if errors.Is(err, database.ErrCollectionNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != accountID {
		return ErrForbidden
	}

	removed, err := s.repo.DeleteMovie(ctx, movieID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// CanEdit reports whether the caller owns the collection.
func (s *Service) CanEdit(ctx context.Context, accountID, collectionID string) (bool, error) {
	c, err := s.repo.GetByID(ctx, collectionID)
	if errors.Is(err, database.ErrCollectionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return c.CreatorID == accountID, nil
}

func (s *Service) canRead(c models.ThemedCollection, accountID string) bool {
	return c.IsPublic || c.CreatorID == accountID
}

func (s *Service) requireOwner(ctx context.Context, accountID, collectionID string) error {
	c, err := s.repo.GetByID(ctx, collectionID)
	if errors.Is(err, database.ErrCollectionNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("resolve collection owner: %w", err)
	}
	if c.CreatorID != accountID {
		// Private rows stay invisible to non-owners even on writes.
		if !c.IsPublic {
			return ErrNotFound
		}
		return ErrForbidden
	}
	return nil
}
