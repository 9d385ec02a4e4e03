package cli

import "context"

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App *App

	// Ctx scopes store subscriptions; it is cancelled when the TUI exits.
	Ctx context.Context

	// Terminal dimensions
	Width  int
	Height int
}

// chromeLines is the height taken by the header (title + separator), the
// output line and the status bar (separator + hints).
const chromeLines = 5

// ContentHeight returns the available height for view content.
func (s *SharedState) ContentHeight() int {
	h := s.Height - chromeLines
	if h < 1 {
		return 1
	}
	return h
}
