package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// A single connection keeps the in-memory database shared across queries.
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// seedShow creates an artist, venue and show for tests needing the full chain.
func seedShow(t *testing.T, db *sql.DB) *models.Show {
	t.Helper()

	artist := models.NewArtist(0, "The Nationals", "")
	if err := NewArtistRepository(db).Create(artist); err != nil {
		t.Fatalf("failed to seed artist: %v", err)
	}

	venue := models.NewVenue(0, "Red Rocks", "Morrison", "US")
	if err := NewVenueRepository(db).Create(venue); err != nil {
		t.Fatalf("failed to seed venue: %v", err)
	}

	show := models.NewShow(0, artist.ID(), venue.ID(), "2024-06-15", "Summer Tour")
	if err := NewShowRepository(db).Create(show); err != nil {
		t.Fatalf("failed to seed show: %v", err)
	}

	return show
}

// seedSong persists a song with the given title and artist.
func seedSong(t *testing.T, db *sql.DB, title, artist string) *models.Song {
	t.Helper()

	song := models.NewSong(0, title, artist)
	if err := NewSongRepository(db).Create(song); err != nil {
		t.Fatalf("failed to seed song %q: %v", title, err)
	}
	return song
}

func TestSongRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong(0, "Bloodbuzz Ohio", "The Nationals")

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		if song.ID() == "" {
			t.Error("song ID should be set after creation")
		}
		if song.Sequence() == 0 {
			t.Error("song sequence should be set after creation")
		}
	})

	t.Run("Create rejects invalid songs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		if err := repo.Create(models.NewSong(0, "", "The Nationals")); err == nil {
			t.Error("expected validation error for empty title")
		}
	})

	t.Run("Create with duplicate external id returns ErrDuplicate", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		track := models.CatalogTrack{ExternalID: "spotify:track:abc", Title: "Terrible Love", Artist: "The Nationals"}

		if err := repo.Create(models.SongFromCatalog(0, track)); err != nil {
			t.Fatalf("failed to create first song: %v", err)
		}

		err := repo.Create(models.SongFromCatalog(0, track))
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("songs without external ids never collide", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		for i := 0; i < 3; i++ {
			if err := repo.Create(models.NewSong(0, "Untitled", "Unknown")); err != nil {
				t.Fatalf("create %d failed: %v", i, err)
			}
		}
	})

	t.Run("GetByExternalID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		track := models.CatalogTrack{ExternalID: "spotify:track:xyz", Title: "Fake Empire", Artist: "The Nationals"}
		song := models.SongFromCatalog(0, track)
		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		retrieved, err := repo.GetByExternalID("spotify:track:xyz")
		if err != nil {
			t.Fatalf("failed to get song by external id: %v", err)
		}
		if retrieved.ID() != song.ID() {
			t.Errorf("expected ID %s, got %s", song.ID(), retrieved.ID())
		}

		_, err = repo.GetByExternalID("spotify:track:missing")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SearchByTitle", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		seedSong(t, db, "Mr. November", "The Nationals")
		seedSong(t, db, "November Rain", "Guns N Roses")
		seedSong(t, db, "Wake Up", "Arcade Fire")

		t.Run("matches substrings case-insensitively", func(t *testing.T) {
			songs, err := repo.SearchByTitle("NOVEMBER", "", 10)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(songs) != 2 {
				t.Fatalf("expected 2 matches, got %d", len(songs))
			}
		})

		t.Run("orders by title ascending", func(t *testing.T) {
			songs, err := repo.SearchByTitle("november", "", 10)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if songs[0].Title() != "Mr. November" || songs[1].Title() != "November Rain" {
				t.Errorf("unexpected order: [%s, %s]", songs[0].Title(), songs[1].Title())
			}
		})

		t.Run("filters by artist substring", func(t *testing.T) {
			songs, err := repo.SearchByTitle("november", "guns", 10)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(songs) != 1 || songs[0].Title() != "November Rain" {
				t.Errorf("expected only November Rain, got %d songs", len(songs))
			}
		})

		t.Run("respects the limit", func(t *testing.T) {
			songs, err := repo.SearchByTitle("november", "", 1)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(songs) != 1 {
				t.Errorf("expected 1 song, got %d", len(songs))
			}
		})

		t.Run("no matches yields empty result", func(t *testing.T) {
			songs, err := repo.SearchByTitle("zzzz", "", 10)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(songs) != 0 {
				t.Errorf("expected no songs, got %d", len(songs))
			}
		})

		t.Run("treats wildcard characters literally", func(t *testing.T) {
			seedSong(t, db, "100% Endurance", "Yard Act")
			seedSong(t, db, "1000 Years", "The Nationals")
			seedSong(t, db, "Wait_For_It", "The Nationals")

			songs, err := repo.SearchByTitle("100%", "", 10)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(songs) != 1 || songs[0].Title() != "100% Endurance" {
				t.Fatalf("expected only the literal %% match, got %d songs", len(songs))
			}

			songs, err = repo.SearchByTitle("t_f", "", 10)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(songs) != 1 || songs[0].Title() != "Wait_For_It" {
				t.Errorf("expected only the literal _ match, got %d songs", len(songs))
			}
		})
	})

	t.Run("Delete hides songs from search", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := seedSong(t, db, "Graceless", "The Nationals")

		if err := repo.Delete(song.ID()); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}

		songs, err := repo.SearchByTitle("graceless", "", 10)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(songs) != 0 {
			t.Errorf("expected deleted song to be hidden, got %d matches", len(songs))
		}

		if _, err := repo.Get(song.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for deleted song, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := seedSong(t, db, "About Today", "The Nationals")

		if err := repo.Update(song); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}
	})
}

func TestArtistRepository(t *testing.T) {
	t.Run("Create and GetByName", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)
		artist := models.NewArtist(0, "Phoebe Bridgers", "")

		if err := repo.Create(artist); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		retrieved, err := repo.GetByName("Phoebe Bridgers")
		if err != nil {
			t.Fatalf("failed to get artist by name: %v", err)
		}
		if retrieved.ID() != artist.ID() {
			t.Errorf("expected ID %s, got %s", artist.ID(), retrieved.ID())
		}
	})

	t.Run("duplicate names return ErrDuplicate", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)
		if err := repo.Create(models.NewArtist(0, "Phoebe Bridgers", "")); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}

		err := repo.Create(models.NewArtist(0, "Phoebe Bridgers", ""))
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})
}

func TestVenueRepository(t *testing.T) {
	t.Run("Create and List by name", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVenueRepository(db)
		venue := models.NewVenue(0, "The Fillmore", "San Francisco", "US")

		if err := repo.Create(venue); err != nil {
			t.Fatalf("failed to create venue: %v", err)
		}

		venues, err := repo.List(map[string]any{"name": "the fillmore"})
		if err != nil {
			t.Fatalf("failed to list venues: %v", err)
		}
		if len(venues) != 1 || venues[0].ID() != venue.ID() {
			t.Errorf("expected the created venue, got %d venues", len(venues))
		}
	})
}

func TestShowRepository(t *testing.T) {
	t.Run("List by artist orders newest first", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		artist := models.NewArtist(0, "The Nationals", "")
		if err := NewArtistRepository(db).Create(artist); err != nil {
			t.Fatalf("failed to seed artist: %v", err)
		}
		venue := models.NewVenue(0, "Red Rocks", "Morrison", "US")
		if err := NewVenueRepository(db).Create(venue); err != nil {
			t.Fatalf("failed to seed venue: %v", err)
		}

		repo := NewShowRepository(db)
		for _, date := range []string{"2023-09-01", "2024-06-15", "2022-01-20"} {
			if err := repo.Create(models.NewShow(0, artist.ID(), venue.ID(), date, "")); err != nil {
				t.Fatalf("failed to create show on %s: %v", date, err)
			}
		}

		shows, err := repo.List(map[string]any{"artist_id": artist.ID()})
		if err != nil {
			t.Fatalf("failed to list shows: %v", err)
		}
		if len(shows) != 3 {
			t.Fatalf("expected 3 shows, got %d", len(shows))
		}
		if shows[0].Date() != "2024-06-15" || shows[2].Date() != "2022-01-20" {
			t.Errorf("expected newest-first order, got [%s, %s, %s]",
				shows[0].Date(), shows[1].Date(), shows[2].Date())
		}
	})

	t.Run("Create rejects malformed dates", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		show := seedShow(t, db)
		bad := models.NewShow(0, show.ArtistID(), show.VenueID(), "June 15th", "")
		if err := NewShowRepository(db).Create(bad); err == nil {
			t.Error("expected validation error for malformed date")
		}
	})
}

func TestSetlistRepository(t *testing.T) {
	t.Run("Create with entries and GetByShow", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		show := seedShow(t, db)
		opener := seedSong(t, db, "Terrible Love", "The Nationals")
		closer := seedSong(t, db, "Mr. November", "The Nationals")

		setlist := models.NewSetlist(0, show.ID())
		setlist.SetEntries([]models.SetlistEntry{
			{SongID: closer.ID(), Position: 2, Encore: true},
			{SongID: opener.ID(), Position: 1},
		})

		repo := NewSetlistRepository(db)
		if err := repo.Create(setlist); err != nil {
			t.Fatalf("failed to create setlist: %v", err)
		}

		retrieved, err := repo.GetByShow(show.ID())
		if err != nil {
			t.Fatalf("failed to get setlist by show: %v", err)
		}

		entries := retrieved.Entries()
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		// Entries come back in position order regardless of insertion order.
		if entries[0].SongID != opener.ID() || entries[1].SongID != closer.ID() {
			t.Error("expected entries ordered by position")
		}
		if !entries[1].Encore {
			t.Error("expected the closer to be flagged as an encore")
		}
	})

	t.Run("one setlist per show", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		show := seedShow(t, db)
		repo := NewSetlistRepository(db)

		if err := repo.Create(models.NewSetlist(0, show.ID())); err != nil {
			t.Fatalf("failed to create setlist: %v", err)
		}

		err := repo.Create(models.NewSetlist(0, show.ID()))
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate for second setlist, got %v", err)
		}
	})

	t.Run("AddEntry returns the persisted entry", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		show := seedShow(t, db)
		song := seedSong(t, db, "Terrible Love", "The Nationals")

		repo := NewSetlistRepository(db)
		setlist := models.NewSetlist(0, show.ID())
		if err := repo.Create(setlist); err != nil {
			t.Fatalf("failed to create setlist: %v", err)
		}

		entry, err := repo.AddEntry(setlist.ID(), song.ID(), 1, true)
		if err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}

		// Callers vote on entries by ID, so the generated ID must flow back.
		if entry.ID == "" {
			t.Fatal("expected a generated entry ID")
		}
		if entry.SetlistID != setlist.ID() {
			t.Errorf("expected setlist id %s, got %s", setlist.ID(), entry.SetlistID)
		}
		if entry.CreatedAt.IsZero() {
			t.Error("expected a creation timestamp")
		}

		retrieved, err := repo.Get(setlist.ID())
		if err != nil {
			t.Fatalf("failed to reload setlist: %v", err)
		}
		entries := retrieved.Entries()
		if len(entries) != 1 || entries[0].ID != entry.ID {
			t.Errorf("expected the stored entry to carry the same ID %s", entry.ID)
		}
	})

	t.Run("AddEntry rejects taken positions", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		show := seedShow(t, db)
		first := seedSong(t, db, "Terrible Love", "The Nationals")
		second := seedSong(t, db, "Fake Empire", "The Nationals")

		repo := NewSetlistRepository(db)
		setlist := models.NewSetlist(0, show.ID())
		if err := repo.Create(setlist); err != nil {
			t.Fatalf("failed to create setlist: %v", err)
		}

		if _, err := repo.AddEntry(setlist.ID(), first.ID(), 1, false); err != nil {
			t.Fatalf("failed to add first entry: %v", err)
		}

		_, err := repo.AddEntry(setlist.ID(), second.ID(), 1, false)
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate for taken position, got %v", err)
		}
	})

	t.Run("AddEntry rejects repeated songs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		show := seedShow(t, db)
		song := seedSong(t, db, "Terrible Love", "The Nationals")

		repo := NewSetlistRepository(db)
		setlist := models.NewSetlist(0, show.ID())
		if err := repo.Create(setlist); err != nil {
			t.Fatalf("failed to create setlist: %v", err)
		}

		if _, err := repo.AddEntry(setlist.ID(), song.ID(), 1, false); err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}

		_, err := repo.AddEntry(setlist.ID(), song.ID(), 2, false)
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate for repeated song, got %v", err)
		}
	})

	t.Run("Update is not implemented", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		err := NewSetlistRepository(db).Update(models.NewSetlist(0, "any"))
		if !errors.Is(err, shared.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})
}

func TestVoteRepository(t *testing.T) {
	// seedEntry builds the full chain down to one setlist entry.
	seedEntry := func(t *testing.T, db *sql.DB) *models.SetlistEntry {
		t.Helper()

		show := seedShow(t, db)
		song := seedSong(t, db, "Terrible Love", "The Nationals")

		repo := NewSetlistRepository(db)
		setlist := models.NewSetlist(0, show.ID())
		if err := repo.Create(setlist); err != nil {
			t.Fatalf("failed to create setlist: %v", err)
		}

		entry, err := repo.AddEntry(setlist.ID(), song.ID(), 1, false)
		if err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}
		return entry
	}

	t.Run("Create and Count", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		entry := seedEntry(t, db)
		repo := NewVoteRepository(db)

		for i, vote := range []*models.Vote{
			models.NewVote(0, entry.ID, "voter-a", 1),
			models.NewVote(0, entry.ID, "voter-b", 1),
			models.NewVote(0, entry.ID, "voter-c", -1),
		} {
			if err := repo.Create(vote); err != nil {
				t.Fatalf("failed to create vote %d: %v", i, err)
			}
		}

		total, err := repo.Count(entry.ID)
		if err != nil {
			t.Fatalf("failed to count votes: %v", err)
		}
		if total != 1 {
			t.Errorf("expected a net total of 1, got %d", total)
		}
	})

	t.Run("one vote per voter per entry", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		entry := seedEntry(t, db)
		repo := NewVoteRepository(db)

		if err := repo.Create(models.NewVote(0, entry.ID, "voter-a", 1)); err != nil {
			t.Fatalf("failed to create vote: %v", err)
		}

		err := repo.Create(models.NewVote(0, entry.ID, "voter-a", -1))
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate for repeat voter, got %v", err)
		}
	})

	t.Run("rejects values other than 1 and -1", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		entry := seedEntry(t, db)
		if err := NewVoteRepository(db).Create(models.NewVote(0, entry.ID, "voter-a", 3)); err == nil {
			t.Error("expected validation error for value 3")
		}
	})
}
