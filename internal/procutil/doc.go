// Package procutil adjusts exec.Cmd for the host before spawn. On Windows
// it keeps the console interpreter from flashing a window and hands cmd /C
// its command text untouched.
package procutil
