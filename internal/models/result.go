package models

// OperationResult is the interpreted response of a background request.
// It is one of Patch, Redirect or Failure.
type OperationResult interface {
	operationResult()
}

// Patch is a sparse update of the visible page. Empty fields are absent and
// leave the page untouched.
type Patch struct {
	ThumbData     string `json:"thumb_data,omitempty"`
	TitleEN       string `json:"title_en,omitempty"`
	TitleDE       string `json:"title_de,omitempty"`
	DescriptionEN string `json:"description_en,omitempty"`
	DescriptionDE string `json:"description_de,omitempty"`
	Prompt        string `json:"prompt,omitempty"`
}

func (Patch) operationResult() {}

// Empty reports whether the patch carries no field at all.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Redirect hands control to a navigation target.
type Redirect struct {
	URL string
}

func (Redirect) operationResult() {}

// FailureKind classifies why an operation did not succeed.
type FailureKind int

const (
	// TransportFailure: network or status level, no structured error body.
	TransportFailure FailureKind = iota
	// ServerReportedFailure: the body carried an error field, whatever the status.
	ServerReportedFailure
	// ProtocolViolation: a 2xx body with no recognized success shape.
	ProtocolViolation
	// UserAborted: the user declined the confirmation prompt.
	UserAborted
)

func (k FailureKind) String() string {
	switch k {
	case TransportFailure:
		return "transport_failure"
	case ServerReportedFailure:
		return "server_reported_failure"
	case ProtocolViolation:
		return "protocol_violation"
	case UserAborted:
		return "user_aborted"
	default:
		return "unknown"
	}
}

type Failure struct {
	Kind    FailureKind
	Message string
}

func (Failure) operationResult() {}

// OperationState is the lifecycle of one operation.
type OperationState int

const (
	Idle OperationState = iota
	Armed
	InFlight
	Reconciled
	Failed
)

func (s OperationState) String() string {
	switch s {
	case Armed:
		return "armed"
	case InFlight:
		return "in_flight"
	case Reconciled:
		return "reconciled"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}
