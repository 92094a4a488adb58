package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/shared"
	tu "github.com/desertthunder/encore/internal/testing"
)

// fakeStore is an in-memory SongStore with scriptable failures.
type fakeStore struct {
	mu sync.Mutex

	songs      []*models.Song
	byExternal map[string]*models.Song

	searchErr error
	getErr    error
	createErr error

	searchCalls int
	getCalls    int
	createCalls int
}

func newFakeStore(songs ...*models.Song) *fakeStore {
	s := &fakeStore{byExternal: map[string]*models.Song{}}
	for _, song := range songs {
		s.songs = append(s.songs, song)
		if song.ExternalID() != "" {
			s.byExternal[song.ExternalID()] = song
		}
	}
	return s
}

func (s *fakeStore) SearchByTitle(text, artist string, limit int) ([]*models.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchCalls++
	if s.searchErr != nil {
		return nil, s.searchErr
	}

	matches := append([]*models.Song{}, s.songs...)
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *fakeStore) GetByExternalID(externalID string) (*models.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}

	if song, ok := s.byExternal[externalID]; ok {
		return song, nil
	}
	return nil, shared.ErrNotFound
}

func (s *fakeStore) Create(song *models.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}

	if _, ok := s.byExternal[song.ExternalID()]; ok {
		return shared.ErrDuplicate
	}

	s.songs = append(s.songs, song)
	if song.ExternalID() != "" {
		s.byExternal[song.ExternalID()] = song
	}
	return nil
}

func localSongs(n int) []*models.Song {
	songs := make([]*models.Song, 0, n)
	titles := []string{"Harvest Moon", "Harvest Time", "Harvester", "Harvest Home", "Harvest King", "Harvest Queen"}
	for i := 0; i < n; i++ {
		songs = append(songs, models.NewSong(0, titles[i%len(titles)], "Local Artist"))
	}
	return songs
}

func catalogTracks(ids ...string) []models.CatalogTrack {
	tracks := make([]models.CatalogTrack, 0, len(ids))
	for _, id := range ids {
		tracks = append(tracks, models.CatalogTrack{
			ExternalID: id,
			Title:      "Track " + id,
			Artist:     "Catalog Artist",
		})
	}
	return tracks
}

func TestReconcilerSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("short query returns empty without touching dependencies", func(t *testing.T) {
		store := newFakeStore()
		catalog := &tu.MockCatalog{Tracks: catalogTracks("x1")}
		r := NewReconciler(store, catalog, Options{}, nil)

		for _, query := range []string{"", "a", "  a  ", "   "} {
			songs, err := r.Search(ctx, query, "", 20)
			if err != nil {
				t.Fatalf("unexpected error for query %q: %v", query, err)
			}
			if songs == nil {
				t.Errorf("expected non-nil empty slice for query %q", query)
			}
			if len(songs) != 0 {
				t.Errorf("expected no songs for query %q, got %d", query, len(songs))
			}
		}

		if store.searchCalls != 0 {
			t.Errorf("store should not be queried for short queries, got %d calls", store.searchCalls)
		}
		if catalog.SearchCalls != 0 {
			t.Errorf("catalog should not be queried for short queries, got %d calls", catalog.SearchCalls)
		}
	})

	t.Run("dense local results skip the catalog", func(t *testing.T) {
		store := newFakeStore(localSongs(5)...)
		catalog := &tu.MockCatalog{Tracks: catalogTracks("x1", "x2")}
		r := NewReconciler(store, catalog, Options{}, nil)

		songs, err := r.Search(ctx, "harvest", "", 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(songs) != 5 {
			t.Errorf("expected 5 local songs, got %d", len(songs))
		}
		if catalog.SearchCalls != 0 {
			t.Errorf("catalog should not be consulted when local matches are dense, got %d calls", catalog.SearchCalls)
		}
	})

	t.Run("sparse local results backfill from the catalog", func(t *testing.T) {
		stored := models.SongFromCatalog(0, models.CatalogTrack{ExternalID: "known", Title: "Known Track", Artist: "Catalog Artist"})
		store := newFakeStore(append(localSongs(2), stored)...)

		candidates := catalogTracks("known", "new1", "new2")
		candidates = append(candidates, models.CatalogTrack{Title: "No ID Track", Artist: "Catalog Artist"})
		catalog := &tu.MockCatalog{Tracks: candidates}

		r := NewReconciler(store, catalog, Options{}, nil)

		songs, err := r.Search(ctx, "harvest", "", 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// 3 local matches plus the two candidates the store had not seen.
		if len(songs) != 5 {
			t.Fatalf("expected 5 songs, got %d", len(songs))
		}
		if store.createCalls != 2 {
			t.Errorf("expected 2 inserts, got %d", store.createCalls)
		}

		// Backfilled rows come after local matches, in candidate order.
		if songs[3].ExternalID() != "new1" || songs[4].ExternalID() != "new2" {
			t.Errorf("expected backfilled songs in candidate order, got [%s, %s]",
				songs[3].ExternalID(), songs[4].ExternalID())
		}
	})

	t.Run("repeat search recovers backfilled rows without new inserts", func(t *testing.T) {
		store := newFakeStore()
		catalog := &tu.MockCatalog{Tracks: catalogTracks("new1", "new2")}
		r := NewReconciler(store, catalog, Options{}, nil)

		if _, err := r.Search(ctx, "harvest", "", 20); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.createCalls != 2 {
			t.Fatalf("expected 2 inserts on the first search, got %d", store.createCalls)
		}

		songs, err := r.Search(ctx, "harvest", "", 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(songs) != 2 {
			t.Errorf("expected the persisted rows, got %d songs", len(songs))
		}
		if store.createCalls != 2 {
			t.Errorf("expected no further inserts, got %d total", store.createCalls)
		}
	})

	t.Run("catalog failure degrades to local results", func(t *testing.T) {
		store := newFakeStore(localSongs(2)...)
		catalog := &tu.MockCatalog{SearchErr: errors.New("catalog down")}
		r := NewReconciler(store, catalog, Options{}, nil)

		songs, err := r.Search(ctx, "harvest", "", 20)
		if err != nil {
			t.Fatalf("catalog failure should not fail the search: %v", err)
		}
		if len(songs) != 2 {
			t.Errorf("expected 2 local songs, got %d", len(songs))
		}
	})

	t.Run("store search failure is fatal", func(t *testing.T) {
		store := newFakeStore()
		store.searchErr = errors.New("disk error")
		r := NewReconciler(store, &tu.MockCatalog{}, Options{}, nil)

		if _, err := r.Search(ctx, "harvest", "", 20); err == nil {
			t.Fatal("expected error when the store read fails")
		}
	})

	t.Run("store read failure during backfill is fatal", func(t *testing.T) {
		store := newFakeStore(localSongs(1)...)
		store.getErr = errors.New("disk error")
		catalog := &tu.MockCatalog{Tracks: catalogTracks("x1")}
		r := NewReconciler(store, catalog, Options{}, nil)

		if _, err := r.Search(ctx, "harvest", "", 20); err == nil {
			t.Fatal("expected error when the existence check fails")
		}
	})

	t.Run("duplicate insert race is benign", func(t *testing.T) {
		store := newFakeStore(localSongs(1)...)
		store.createErr = shared.ErrDuplicate
		catalog := &tu.MockCatalog{Tracks: catalogTracks("x1", "x2")}
		r := NewReconciler(store, catalog, Options{}, nil)

		songs, err := r.Search(ctx, "harvest", "", 20)
		if err != nil {
			t.Fatalf("duplicate inserts should be skipped, got error: %v", err)
		}
		if len(songs) != 1 {
			t.Errorf("expected only the local song, got %d songs", len(songs))
		}
	})

	t.Run("non-duplicate insert failure skips the candidate", func(t *testing.T) {
		store := newFakeStore(localSongs(1)...)
		store.createErr = errors.New("constraint violation elsewhere")
		catalog := &tu.MockCatalog{Tracks: catalogTracks("x1", "x2")}
		r := NewReconciler(store, catalog, Options{}, nil)

		songs, err := r.Search(ctx, "harvest", "", 20)
		if err != nil {
			t.Fatalf("insert failures should degrade, got error: %v", err)
		}
		if len(songs) != 1 {
			t.Errorf("expected only the local song, got %d songs", len(songs))
		}
		if store.createCalls != 2 {
			t.Errorf("expected both candidates attempted, got %d inserts", store.createCalls)
		}
	})

	t.Run("nil catalog disables backfill", func(t *testing.T) {
		store := newFakeStore(localSongs(1)...)
		r := NewReconciler(store, nil, Options{}, nil)

		songs, err := r.Search(ctx, "harvest", "", 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(songs) != 1 {
			t.Errorf("expected 1 local song, got %d", len(songs))
		}
	})

	t.Run("canceled context stops backfill", func(t *testing.T) {
		store := newFakeStore()
		catalog := &tu.MockCatalog{Tracks: catalogTracks("x1", "x2", "x3")}
		r := NewReconciler(store, catalog, Options{}, nil)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		songs, err := r.Search(canceled, "harvest", "", 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(songs) != 0 {
			t.Errorf("expected no backfilled songs after cancellation, got %d", len(songs))
		}
		if store.createCalls != 0 {
			t.Errorf("expected no inserts after cancellation, got %d", store.createCalls)
		}
	})

	t.Run("custom threshold controls when the catalog is consulted", func(t *testing.T) {
		store := newFakeStore(localSongs(2)...)
		catalog := &tu.MockCatalog{Tracks: catalogTracks("x1")}
		r := NewReconciler(store, catalog, Options{SparseThreshold: 2, CandidateLimit: 10}, nil)

		songs, err := r.Search(ctx, "harvest", "", 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if catalog.SearchCalls != 0 {
			t.Errorf("2 matches meet a threshold of 2, catalog should be skipped")
		}
		if len(songs) != 2 {
			t.Errorf("expected 2 songs, got %d", len(songs))
		}
	})

	t.Run("candidate limit is passed to the catalog", func(t *testing.T) {
		store := newFakeStore()
		var gotLimit int
		catalog := &tu.MockCatalog{
			SearchFn: func(ctx context.Context, query, artist string, limit int) ([]models.CatalogTrack, error) {
				gotLimit = limit
				return nil, nil
			},
		}
		r := NewReconciler(store, catalog, Options{SparseThreshold: 5, CandidateLimit: 3}, nil)

		if _, err := r.Search(ctx, "harvest", "", 20); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotLimit != 3 {
			t.Errorf("expected candidate limit 3, got %d", gotLimit)
		}
	})

	t.Run("zero options fall back to defaults", func(t *testing.T) {
		r := NewReconciler(newFakeStore(), nil, Options{}, nil)
		if r.opts.SparseThreshold != 5 || r.opts.CandidateLimit != 10 {
			t.Errorf("expected defaults 5/10, got %d/%d", r.opts.SparseThreshold, r.opts.CandidateLimit)
		}
	})
}

// TestReconcilerConcurrency exercises the insert race against a real sqlite
// store: many searches backfilling the same candidate must produce one row.
func TestReconcilerConcurrency(t *testing.T) {
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	// A single connection keeps the in-memory database shared across goroutines.
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	repo := repositories.NewSongRepository(db)
	catalog := &tu.MockCatalog{Tracks: catalogTracks("contested")}

	var wg sync.WaitGroup
	errs := make(chan error, 8)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := NewReconciler(repo, catalog, Options{}, nil)
			if _, err := r.Search(context.Background(), "harvest", "", 20); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent search failed: %v", err)
	}

	song, err := repo.GetByExternalID("contested")
	if err != nil {
		t.Fatalf("expected the contested track to be stored once: %v", err)
	}
	if song.Title() != "Track contested" {
		t.Errorf("unexpected stored title %q", song.Title())
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM songs WHERE external_id = ?", "contested").Scan(&count); err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 row for the contested track, got %d", count)
	}
}
