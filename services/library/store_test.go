package library_test

import (
	"os"
	"path/filepath"
	"testing"

	"cinematch/models"
	"cinematch/services/library"
)

func newService(t *testing.T) *library.Service {
	t.Helper()
	svc, err := library.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("expected service, got error: %v", err)
	}
	return svc
}

func movie(name, genre string) models.Movie {
	return models.Movie{
		Name:             name,
		Genre:            genre,
		SmallDescription: "small",
		BigDescription:   "big",
		Synopsis:         "synopsis",
	}
}

func TestAddDeduplicatesByKey(t *testing.T) {
	svc := newService(t)
	store := svc.Watched()

	if !store.Add(movie("Inception", "Sci-Fi")) {
		t.Fatalf("first add should succeed")
	}
	if store.Add(movie("Inception", "Sci-Fi")) {
		t.Fatalf("second add of same movie should report false")
	}
	if got := store.Count(); got != 1 {
		t.Fatalf("expected 1 entry, got %d", got)
	}
}

func TestListOrdersMostRecentFirst(t *testing.T) {
	svc := newService(t)
	store := svc.Disliked()

	names := []string{"Alien", "Blade Runner", "Casablanca"}
	for _, n := range names {
		if !store.Add(movie(n, "Drama")) {
			t.Fatalf("add %q failed", n)
		}
	}

	entries := store.List()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Name != "Casablanca" {
		t.Fatalf("expected most recent add first, got %q", entries[0].Name)
	}
	if entries[2].Name != "Alien" {
		t.Fatalf("expected oldest add last, got %q", entries[2].Name)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc := newService(t)
	store := svc.Watched()

	m := movie("Heat", "Crime")
	store.Add(m)

	if !store.Remove("no-such-id") {
		t.Fatalf("tolerant delete should return true for absent id")
	}
	if got := store.Count(); got != 1 {
		t.Fatalf("expected store unchanged, got %d entries", got)
	}

	if !store.Remove(models.MovieKey(m)) {
		t.Fatalf("remove of existing id failed")
	}
	if store.Contains(m) {
		t.Fatalf("expected movie to be gone after remove")
	}
}

func TestEntriesSurviveReload(t *testing.T) {
	dir := t.TempDir()
	svc, err := library.NewService(dir)
	if err != nil {
		t.Fatalf("expected service, got error: %v", err)
	}
	svc.Watched().Add(movie("Parasite", "Thriller"))

	reloaded, err := library.NewService(dir)
	if err != nil {
		t.Fatalf("failed to reload service: %v", err)
	}
	entries := reloaded.Watched().List()
	if len(entries) != 1 || entries[0].Name != "Parasite" {
		t.Fatalf("expected entry to survive reload, got %+v", entries)
	}
	if entries[0].AddedAt.IsZero() {
		t.Fatalf("expected AddedAt to survive reload")
	}
}

func TestCorruptPayloadReadsAsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "watched_movies.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt payload: %v", err)
	}

	svc, err := library.NewService(dir)
	if err != nil {
		t.Fatalf("expected service despite corrupt payload, got error: %v", err)
	}
	if got := svc.Watched().Count(); got != 0 {
		t.Fatalf("expected corrupt payload to read as empty, got %d", got)
	}
	if !svc.Watched().Add(movie("Ran", "Drama")) {
		t.Fatalf("store should be writable after corrupt load")
	}
}

func TestLegacyArrayPayloadLoads(t *testing.T) {
	dir := t.TempDir()
	legacy := `[{"name":"Legacy","genre":"Drama","smallDescription":"s","bigDescription":"b","synopsis":"y","id":"abc","addedAt":"2023-10-01T12:00:00Z"}]`
	if err := os.WriteFile(filepath.Join(dir, "disliked_movies.json"), []byte(legacy), 0o644); err != nil {
		t.Fatalf("failed to write legacy payload: %v", err)
	}

	svc, err := library.NewService(dir)
	if err != nil {
		t.Fatalf("expected service, got error: %v", err)
	}
	entries := svc.Disliked().List()
	if len(entries) != 1 || entries[0].Name != "Legacy" {
		t.Fatalf("expected legacy entry to load, got %+v", entries)
	}
}

func TestSavedStoreGatedByPermission(t *testing.T) {
	svc := newService(t)

	// Flag starts disabled: saved store reads empty and rejects writes.
	if svc.StorageEnabled() {
		t.Fatalf("expected storage permission to default to disabled")
	}
	if svc.Saved().Add(movie("Up", "Animation")) {
		t.Fatalf("add should fail while storage is disabled")
	}
	if got := len(svc.Saved().List()); got != 0 {
		t.Fatalf("expected empty list while disabled, got %d", got)
	}

	svc.SetStoragePermission(true)
	if !svc.Saved().Add(movie("Up", "Animation")) {
		t.Fatalf("add should succeed once storage is enabled")
	}
	if !svc.Saved().Contains(movie("Up", "Animation")) {
		t.Fatalf("expected saved store to contain movie")
	}
}

func TestDisablingPermissionDeletesSavedEntries(t *testing.T) {
	svc := newService(t)
	svc.SetStoragePermission(true)
	svc.Saved().Add(movie("Up", "Animation"))
	svc.Saved().Add(movie("Coco", "Animation"))

	svc.SetStoragePermission(false)
	svc.SetStoragePermission(true)

	if got := svc.Saved().Count(); got != 0 {
		t.Fatalf("expected disable toggle to delete saved entries, got %d", got)
	}
}

func TestPermissionFlagSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	svc, err := library.NewService(dir)
	if err != nil {
		t.Fatalf("expected service, got error: %v", err)
	}
	svc.SetStoragePermission(true)

	reloaded, err := library.NewService(dir)
	if err != nil {
		t.Fatalf("failed to reload service: %v", err)
	}
	if !reloaded.StorageEnabled() {
		t.Fatalf("expected permission flag to survive reload")
	}
}

func TestExclusionListUnionsAllStores(t *testing.T) {
	svc := newService(t)
	svc.SetStoragePermission(true)

	svc.Saved().Add(movie("Inception", "Sci-Fi"))
	svc.Watched().Add(movie("Heat", "Crime"))
	svc.Disliked().Add(movie("Inception", "Sci-Fi"))
	svc.Disliked().Add(movie("Cats", "Musical"))

	names := svc.ExclusionList()
	if len(names) != 3 {
		t.Fatalf("expected 3 deduplicated names, got %v", names)
	}
	want := map[string]bool{"Inception": true, "Heat": true, "Cats": true}
	for _, n := range names {
		if !want[n] {
			t.Fatalf("unexpected name %q in exclusion list", n)
		}
	}
}

func TestStoreKindLookup(t *testing.T) {
	svc := newService(t)

	for _, kind := range []library.Kind{library.KindSaved, library.KindWatched, library.KindDisliked} {
		if _, err := svc.Store(kind); err != nil {
			t.Fatalf("expected store for kind %q, got %v", kind, err)
		}
	}
	if _, err := svc.Store("favorites"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
