// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/encore/internal/models"
)

// MockCatalog is a configurable test double for [services.Catalog].
//
// The zero value returns empty results; set Tracks or the function fields
// to script responses.
type MockCatalog struct {
	Tracks    []models.CatalogTrack
	SearchErr error
	TrackErr  error

	// SearchFn, when set, overrides the canned Tracks/SearchErr behavior.
	SearchFn func(ctx context.Context, query, artist string, limit int) ([]models.CatalogTrack, error)

	// SearchCalls counts SearchTracks invocations.
	SearchCalls int
}

func (m *MockCatalog) SearchTracks(ctx context.Context, query, artist string, limit int) ([]models.CatalogTrack, error) {
	m.SearchCalls++
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, artist, limit)
	}
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if limit < len(m.Tracks) {
		return m.Tracks[:limit], nil
	}
	return m.Tracks, nil
}

func (m *MockCatalog) Track(ctx context.Context, id string) (*models.CatalogTrack, error) {
	if m.TrackErr != nil {
		return nil, m.TrackErr
	}
	for i := range m.Tracks {
		if m.Tracks[i].ExternalID == id {
			return &m.Tracks[i], nil
		}
	}
	return nil, errors.New("track not found")
}

func (m *MockCatalog) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
