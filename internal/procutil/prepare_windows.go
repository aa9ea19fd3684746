//go:build windows

package procutil

import (
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

func sysProcAttr(cmd *exec.Cmd) *syscall.SysProcAttr {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	return cmd.SysProcAttr
}

func hideWindow(cmd *exec.Cmd) {
	attr := sysProcAttr(cmd)
	attr.HideWindow = true
	attr.CreationFlags |= windows.CREATE_NO_WINDOW
}

// rawShellLine sets the command line of "cmd /C <text>" by hand. The default
// quoting escapes inner quotes as \", which cmd.exe does not understand, so
// text such as tasklist /FI "IMAGENAME eq x" would reach the shell mangled.
// Other programs keep the default quoting.
func rawShellLine(cmd *exec.Cmd) {
	if !isShellLine(cmd.Args) {
		return
	}
	attr := sysProcAttr(cmd)
	if attr.CmdLine != "" {
		return
	}
	attr.CmdLine = syscall.EscapeArg(cmd.Args[0]) + " /C " + cmd.Args[2]
}

func isShellLine(args []string) bool {
	if len(args) != 3 || !strings.EqualFold(args[1], "/C") {
		return false
	}
	base := strings.ToLower(filepath.Base(args[0]))
	return base == "cmd" || base == "cmd.exe"
}
