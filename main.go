package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/andreatomassetti/ansible-variables/cmd"
	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
)

func main() {
	// Vars files are replaced by atomic rename, so exiting mid-removal never
	// leaves a partially written file. The exit code follows the POSIX convention.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		cmd.Cleanup()
		if s, ok := sig.(syscall.Signal); ok {
			errUtils.Exit(128 + int(s))
		}
		errUtils.Exit(130)
	}()

	errUtils.Exit(run())
}

// run executes the command and returns the exit code.
func run() int {
	defer cmd.Cleanup()

	err := cmd.Execute()
	if err != nil {
		formatted := errUtils.Format(err, cmd.ErrorFormatterConfig())
		os.Stderr.WriteString(formatted + "\n")

		exitCode := errUtils.GetExitCode(err)
		log.Debug("Exiting with exit code", "code", exitCode)
		return exitCode
	}

	return 0
}
