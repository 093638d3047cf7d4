package models

// Phase is the visual treatment of the progress indicator.
type Phase int

const (
	PhaseHidden Phase = iota
	PhaseInfo
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseInfo:
		return "info"
	case PhaseError:
		return "error"
	default:
		return "hidden"
	}
}

// ProgressState is the single indicator shared by every operation of a page.
type ProgressState struct {
	Percent int
	Message string
	Phase   Phase
	Visible bool
}
