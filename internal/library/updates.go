package library

import (
	"fmt"

	"github.com/desertthunder/cinemania/internal/models"
)

// ProgressUpdate represents a progress event during a load.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Load phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Load phase enumeration
type Phase int

const (
	FetchIDs Phase = iota
	FetchDetails
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchIDs:
		return "fetch_ids"
	case FetchDetails:
		return "fetch_details"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchIDsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchIDs,
		Step:    0,
		Total:   1,
		Message: "Loading your library...",
	}
}

func fetchDetailsUpdate(step, total int, id models.MovieID, found bool) ProgressUpdate {
	mark := "✓"
	if !found {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   FetchDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s movie %s", step, total, mark, id),
	}
}

func doneUpdate(loaded, requested int) ProgressUpdate {
	msg := "Your library is empty"
	if requested > 0 {
		msg = fmt.Sprintf("Loaded %d of %d movies", loaded, requested)
	}
	return ProgressUpdate{
		Phase:   Done,
		Step:    loaded,
		Total:   requested,
		Message: msg,
	}
}
