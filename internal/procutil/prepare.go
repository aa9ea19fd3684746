package procutil

import "os/exec"

// Prepare applies the host adjustments to cmd. A nil cmd is ignored.
// Fields already set on cmd.SysProcAttr are kept.
func Prepare(cmd *exec.Cmd) {
	if cmd == nil {
		return
	}
	hideWindow(cmd)
	rawShellLine(cmd)
}
