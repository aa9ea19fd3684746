package runner

import "time"

// Result holds the raw output of a process that ran to completion.
type Result struct {
	ExitCode  int           // process exit code; -1 if killed by a signal
	Stdout    []byte        // captured stdout (may be truncated)
	Stderr    []byte        // captured stderr (may be truncated)
	Truncated bool          // true if either stream lost bytes to the size cap
	Elapsed   time.Duration // wall time from spawn to exit
}
