package pipeline

// State is a step of a run.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateLoadingInputs
	StateConfirming
	StateOpeningTemplate
	StateWriting
	StateSaving
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateLoadingInputs:
		return "loading_inputs"
	case StateConfirming:
		return "confirming"
	case StateOpeningTemplate:
		return "opening_template"
	case StateWriting:
		return "writing"
	case StateSaving:
		return "saving"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Status is the text shown on the status line while in s.
func (s State) Status() string {
	switch s {
	case StateIdle:
		return "Ready."
	case StateValidating:
		return "Checking settings..."
	case StateLoadingInputs:
		return "Loading TXT files..."
	case StateConfirming:
		return "Waiting for confirmation..."
	case StateOpeningTemplate:
		return "Opening Excel template..."
	case StateWriting:
		return "Writing Z columns..."
	case StateSaving:
		return "Saving output..."
	case StateDone:
		return "Done."
	case StateError:
		return "Error."
	}
	return ""
}

// Progress is how far through a run s is, from 0 to 1.
func (s State) Progress() float64 {
	switch s {
	case StateValidating:
		return 0.1
	case StateLoadingInputs, StateConfirming:
		return 0.25
	case StateOpeningTemplate:
		return 0.45
	case StateWriting:
		return 0.65
	case StateSaving:
		return 0.85
	case StateDone:
		return 1
	}
	return 0
}

// Terminal reports whether the run has finished, successfully or not.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError
}
