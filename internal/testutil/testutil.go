// Package testutil provides shared test helpers for setting up board
// stores and servers.
package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/mtaverne/corkboard/internal/api"
	"github.com/mtaverne/corkboard/internal/store"
)

// TestStore creates an in-memory board store that is automatically closed.
func TestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestServer starts an httptest server running the full board API against
// a fresh in-memory store.
func TestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	s := TestStore(t)
	router := api.NewRouter(api.NewHandler(s, nil), nil, "")
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, s
}
