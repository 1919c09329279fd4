// Package version holds the build version, set at link time with
// -ldflags "-X github.com/andreatomassetti/ansible-variables/pkg/version.Version=v1.2.3".
package version

import (
	"fmt"
	"runtime"
)

// Version is the release version of the binary.
var Version = "0.0.1-dev"

// Info returns the version line printed by the version command.
func Info() string {
	return fmt.Sprintf("ansible-variables %s %s/%s (%s)", Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}
