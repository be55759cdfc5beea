package output

// PhaseStatus is the outcome of one pipeline phase.
type PhaseStatus string

const (
	StatusOK      PhaseStatus = "OK"
	StatusFailed  PhaseStatus = "FAILED"
	StatusSkipped PhaseStatus = "SKIPPED"
)

// PhaseResult records how a single pipeline phase ended.
type PhaseResult struct {
	Phase  string      `json:"phase"`
	Status PhaseStatus `json:"status"`
	// Kind is the failure classification (invalid_input, io_failure,
	// template_failure); empty on success.
	Kind    string            `json:"kind,omitempty"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line):
// - run.started
// - phase.result
// - run.finished
//
// JSON mode remains an aggregate of PhaseResult values.
type Event struct {
	Type  string `json:"type"`
	RunID string `json:"run_id,omitempty"`
	*PhaseResult
	ExitCode int `json:"exit_code,omitempty"`
}

func eventFromResult(r PhaseResult) Event {
	return Event{Type: "phase.result", PhaseResult: &r}
}
