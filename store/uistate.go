package store

// Phase is the transient feedback state machine driven by store operations.
// It exists only to let a UI show spinners and error banners; it is not a
// durable model.
type Phase int

const (
	PhaseInitial Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "Initial"
	case PhaseLoading:
		return "Loading"
	case PhaseSuccess:
		return "Success"
	case PhaseError:
		return "Error"
	default:
		return "Unknown"
	}
}

// UIState pairs a Phase with a human-readable message, set only for
// PhaseError.
type UIState struct {
	Phase   Phase
	Message string
}

func uiInitial() UIState         { return UIState{Phase: PhaseInitial} }
func uiLoading() UIState         { return UIState{Phase: PhaseLoading} }
func uiSuccess() UIState         { return UIState{Phase: PhaseSuccess} }
func uiError(msg string) UIState { return UIState{Phase: PhaseError, Message: msg} }
