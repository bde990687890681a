//go:build !unix

package sandbox

import "os/exec"

// Without process groups only the direct child is killed on cancellation.
func isolateProcessGroup(*exec.Cmd) {}

func killProcessGroup(*exec.Cmd) error {
	return nil
}
