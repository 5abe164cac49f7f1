package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"cinematch/internal/auth"
	"cinematch/internal/database"
	"cinematch/models"
	"cinematch/services/collections"
)

type stubAccounts map[string]models.Account

func (s stubAccounts) Get(id string) (models.Account, bool) {
	a, ok := s[id]
	return a, ok
}

func newCollectionsRouter(t *testing.T, accountID string) (*mux.Router, *collections.Service) {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("database.NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := collections.NewService(db.Collections, stubAccounts{
		"alice": {ID: "alice", Username: "alice"},
		"bob":   {ID: "bob", Username: "bob"},
	})
	h := NewCollectionsHandler(svc)

	r := mux.NewRouter()
	r.HandleFunc("/api/collections/{id}/can-edit", func(w http.ResponseWriter, req *http.Request) {
		ctx := context.WithValue(req.Context(), auth.ContextKeyAccountID, accountID)
		h.CanEdit(w, req.WithContext(ctx))
	}).Methods(http.MethodGet)
	return r, svc
}

func getCanEdit(t *testing.T, r http.Handler, collectionID string) (int, bool) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/collections/"+collectionID+"/can-edit", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp struct {
		CanEdit bool `json:"canEdit"`
	}
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec.Code, resp.CanEdit
}

func TestCanEditReflectsOwnership(t *testing.T) {
	ownerRouter, svc := newCollectionsRouter(t, "alice")

	c, err := svc.Create(context.Background(), "alice", models.CollectionUpsert{Title: "Mine", IsPublic: true})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}

	if code, ok := getCanEdit(t, ownerRouter, c.ID); code != http.StatusOK || !ok {
		t.Fatalf("owner: expected 200 canEdit=true, got %d canEdit=%v", code, ok)
	}

	strangerRouter := mux.NewRouter()
	strangerRouter.HandleFunc("/api/collections/{id}/can-edit", func(w http.ResponseWriter, req *http.Request) {
		ctx := context.WithValue(req.Context(), auth.ContextKeyAccountID, "bob")
		NewCollectionsHandler(svc).CanEdit(w, req.WithContext(ctx))
	}).Methods(http.MethodGet)

	if code, ok := getCanEdit(t, strangerRouter, c.ID); code != http.StatusOK || ok {
		t.Fatalf("stranger: expected 200 canEdit=false, got %d canEdit=%v", code, ok)
	}

	// Unknown ids answer false instead of erroring.
	if code, ok := getCanEdit(t, ownerRouter, "no-such-collection"); code != http.StatusOK || ok {
		t.Fatalf("missing: expected 200 canEdit=false, got %d canEdit=%v", code, ok)
	}
}
