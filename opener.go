package ngio

import (
	"fmt"
	"os/exec"
	"runtime"
)

// PassportOpener is the boundary contract with the user-interaction surface:
// it opens the external passport login page in a new browsing context. No
// return value beyond the launch error is consumed.
type PassportOpener interface {
	Open(url string) error
}

// BrowserOpener defines a public type used by ngio APIs.
//
// BrowserOpener instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BrowserOpener struct{}

// Open describes the open operation and its observable behavior.
//
// Open may return an error when input validation, dependency calls, or security checks fail.
// Open does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (BrowserOpener) Open(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// NoOpOpener defines a public type used by ngio APIs.
//
// NoOpOpener instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NoOpOpener struct{}

// Open describes the open operation and its observable behavior.
//
// Open does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoOpOpener) Open(string) error { return nil }
