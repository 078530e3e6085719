package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	tmpDir, err := os.MkdirTemp("", "store-test-*")
	if err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	store, err := NewStore(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatal(err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

// backends returns one fresh instance of every Backend implementation.
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()

	bolt, err := Open("bolt", filepath.Join(dir, "places.db"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	sqlite, err := Open("sqlite", filepath.Join(dir, "places.sqlite"))
	if err != nil {
		bolt.Close()
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		bolt.Close()
		sqlite.Close()
	})
	return map[string]Backend{"bolt": bolt, "sqlite": sqlite}
}

func TestBackend_FavoritesRoundTrip(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			cafe := &Place{ID: "p1", Name: "Zebra Cafe", Category: "cafe", Lat: 52.5, Lon: 13.4}
			bakery := &Place{ID: "p2", Name: "apple bakery", Category: "bakery"}

			if err := b.SaveFavorite(cafe); err != nil {
				t.Fatalf("save favorite: %v", err)
			}
			if err := b.SaveFavorite(bakery); err != nil {
				t.Fatalf("save favorite: %v", err)
			}
			if cafe.IsFavorite {
				t.Error("SaveFavorite must not mutate the caller's place")
			}

			favs, err := b.GetFavorites()
			if err != nil {
				t.Fatalf("get favorites: %v", err)
			}
			if len(favs) != 2 {
				t.Fatalf("expected 2 favorites, got %d", len(favs))
			}
			if favs[0].ID != "p2" || favs[1].ID != "p1" {
				t.Errorf("expected favorites sorted by name, got %s, %s", favs[0].Name, favs[1].Name)
			}
			for _, f := range favs {
				if !f.IsFavorite {
					t.Errorf("favorite %s not flagged", f.ID)
				}
				if f.UpdatedAt.IsZero() {
					t.Errorf("favorite %s missing UpdatedAt", f.ID)
				}
			}

			ok, err := b.IsFavorite("p1")
			if err != nil || !ok {
				t.Errorf("IsFavorite(p1) = %v, %v", ok, err)
			}

			if err := b.DeleteFavorite("p1"); err != nil {
				t.Fatalf("delete favorite: %v", err)
			}
			ok, err = b.IsFavorite("p1")
			if err != nil || ok {
				t.Errorf("IsFavorite(p1) after delete = %v, %v", ok, err)
			}
		})
	}
}

func TestBackend_EmptyFavoritesIsNotNil(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			favs, err := b.GetFavorites()
			if err != nil {
				t.Fatalf("get favorites: %v", err)
			}
			if favs == nil {
				t.Error("expected empty, non-nil slice")
			}
		})
	}
}

func TestBackend_PlacesAndSearches(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			places := []*Place{
				{ID: "a", Name: "Museum", Address: "Main St 1"},
				{ID: "b", Name: "Library", Website: "https://lib.example.com"},
			}
			if err := b.SavePlaces(places); err != nil {
				t.Fatalf("save places: %v", err)
			}

			got, err := b.GetPlace("b")
			if err != nil {
				t.Fatalf("get place: %v", err)
			}
			if got.Website != "https://lib.example.com" {
				t.Errorf("unexpected website %q", got.Website)
			}

			all, err := b.GetAllPlaces()
			if err != nil {
				t.Fatalf("get all places: %v", err)
			}
			if len(all) != 2 || all[0].Name != "Library" {
				t.Errorf("unexpected places %+v", all)
			}

			_, err = b.GetPlace("missing")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			meta := &SearchMetadata{Phrase: "Museum", Near: "Berlin", ResultIDs: []string{"a"}, SearchedAt: time.Now()}
			if err := b.SaveSearch(meta); err != nil {
				t.Fatalf("save search: %v", err)
			}
			back, err := b.GetSearch(" museum ", "berlin")
			if err != nil {
				t.Fatalf("get search: %v", err)
			}
			if len(back.ResultIDs) != 1 || back.ResultIDs[0] != "a" {
				t.Errorf("unexpected result ids %v", back.ResultIDs)
			}

			_, err = b.GetSearch("zoo", "berlin")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_GetPlaceFallsBackToFavorites(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if err := store.SaveFavorite(&Place{ID: "fav", Name: "Only Favorite"}); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetPlace("fav")
	if err != nil {
		t.Fatalf("get place: %v", err)
	}
	if !got.IsFavorite {
		t.Error("expected favorite copy")
	}
}

func TestStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveFavorite(&Place{ID: "x", Name: "Kept"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	favs, err := reopened.GetFavorites()
	if err != nil {
		t.Fatal(err)
	}
	if len(favs) != 1 || favs[0].Name != "Kept" {
		t.Errorf("favorite not persisted: %+v", favs)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("postgres", filepath.Join(t.TempDir(), "x"))
	var unknown ErrUnknownDriver
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
	if unknown.Driver != "postgres" {
		t.Errorf("unexpected driver %q", unknown.Driver)
	}
}

func TestPlace_SameAs(t *testing.T) {
	a := &Place{ID: "1", Name: "A"}
	b := &Place{ID: "1", Name: "renamed"}
	c := &Place{ID: "2"}

	if !a.SameAs(b) {
		t.Error("places with equal IDs should match")
	}
	if a.SameAs(c) {
		t.Error("places with different IDs should not match")
	}
	var nilPlace *Place
	if nilPlace.SameAs(a) || a.SameAs(nil) {
		t.Error("nil never matches")
	}
}
