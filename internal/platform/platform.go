// Package platform identifies the host operating system and the native
// shell interpreter used to run commands on it.
package platform

import (
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind is the operating system family a command is synthesized for.
type Kind int

const (
	// Unsupported is any host outside the three supported families.
	Unsupported Kind = iota
	Windows
	MacOS
	Linux
)

// Resolve returns the Kind of the running host.
func Resolve() Kind {
	return FromGOOS(runtime.GOOS)
}

// FromGOOS maps a Go operating system identifier to a Kind.
func FromGOOS(goos string) Kind {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	default:
		return Unsupported
	}
}

// Parse accepts the user-facing names produced by String, plus "darwin".
func Parse(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "windows":
		return Windows, nil
	case "macos", "darwin":
		return MacOS, nil
	case "linux":
		return Linux, nil
	case "unsupported":
		return Unsupported, nil
	}
	return Unsupported, errors.Newf("unknown platform %q (want windows, macos or linux)", name)
}

func (k Kind) String() string {
	switch k {
	case Windows:
		return "windows"
	case MacOS:
		return "macos"
	case Linux:
		return "linux"
	default:
		return "unsupported"
	}
}

// Supported reports whether commands can be synthesized for k.
func (k Kind) Supported() bool {
	return k == Windows || k == MacOS || k == Linux
}

// Shell returns the interpreter and its execute-string flag.
// Windows uses the command prompt, everything else a POSIX shell.
func (k Kind) Shell() (program, flag string) {
	if k == Windows {
		return "cmd", "/C"
	}
	return "sh", "-c"
}

// MarshalText encodes k by name so stored results and config stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
