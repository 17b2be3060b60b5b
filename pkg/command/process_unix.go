//go:build unix

package command

import (
	"os/exec"
	"syscall"
)

// setProcGroup runs the command in its own process group so a timeout kills its children too.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcGroup kills the entire process group of the command.
func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process != nil {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	return nil
}
