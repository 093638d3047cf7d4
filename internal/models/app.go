package models

// ConfirmationRequest represents a confirmation request (avoiding import cycle)
type ConfirmationRequest struct {
	ID       string // Unique identifier for this confirmation request
	Question string // Text shown to the user
}

// Preview is the read-only view of the current page.
type Preview struct {
	URL           string
	Kind          string
	TitleEN       string
	TitleDE       string
	DescriptionEN string
	DescriptionDE string
	ThumbRef      string
	Prompt        string
	SystemPrompt  string
	SystemPrompts []Option
	Flashes       []string
}

// Option is one choice of a select element.
type Option struct {
	Value string
	Label string
}

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	Messages            []Message            // Activity log
	Preview             Preview              // Current page
	Progress            ProgressState        // Indicator pushed by core
	Input               string               // Prompt editor buffer
	Editing             bool                 // Whether the prompt editor has focus
	Status              string               // Status bar text
	Loading             bool                 // An operation is in flight
	LoadingDots         int                  // Animation counter for loading dots
	Width               int                  // Terminal width
	Height              int                  // Terminal height
	PendingConfirmation *ConfirmationRequest // Current confirmation request
}
