//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillGroup terminates pid and its child tree with taskkill /F /T.
func KillGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
