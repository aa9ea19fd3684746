package control

// ExecutionResult is the normalized outcome of run, kill and open.
//
// Success is true iff the native process exited with status zero. Error is
// set only when the process could not be spawned at all; in that case
// Stdout and Stderr are empty and ExitCode is -1. A process that ran and
// exited nonzero has an empty Error, its real ExitCode and whatever text
// it produced.
type ExecutionResult struct {
	Success   bool   `json:"success"`
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	ExitCode  int    `json:"exit_code"`
	Error     string `json:"error,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

// SpawnFailed reports whether the native process never ran.
func (r ExecutionResult) SpawnFailed() bool {
	return r.Error != ""
}

// ProcessQueryResult is the outcome of detect.
//
// Success is false only when the platform is unsupported or the listing
// could not be spawned. Finding none of the names is Success with an empty
// MatchedNames.
type ProcessQueryResult struct {
	Success      bool     `json:"success"`
	MatchedNames []string `json:"matched_names"`
	Error        string   `json:"error,omitempty"`
}

// spawnFailure is the uniform result for a process that never ran.
func spawnFailure(err error) ExecutionResult {
	return ExecutionResult{
		Success:  false,
		ExitCode: -1,
		Error:    err.Error(),
	}
}
