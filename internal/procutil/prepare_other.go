//go:build !windows

package procutil

import "os/exec"

// POSIX shells receive argv as given and there is no console to hide.

func hideWindow(*exec.Cmd) {}

func rawShellLine(*exec.Cmd) {}
