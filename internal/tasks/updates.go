package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SearchCatalog Phase = iota
	IngestTrack
)

func (p Phase) String() string {
	switch p {
	case SearchCatalog:
		return "search_catalog"
	case IngestTrack:
		return "ingest_track"
	default:
		return ""
	}
}

func searchCatalogUpdate(step, total int, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchCatalog,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Searching catalog for %q...", query),
	}
}

func ingestTrackUpdate(step, total int, artist, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   IngestTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, artist, title),
	}
}

func ingestCompletedUpdate(step, total int, artist, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   IngestTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, artist, title),
	}
}

func ingestSkippedUpdate(step, total int, externalID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   IngestTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] already stored (%s)", step, total, externalID),
	}
}

func ingestFailedUpdate(step, total int, externalID string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   IngestTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, externalID, err),
	}
}
