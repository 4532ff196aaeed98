package util

import (
	"fmt"
	"os"
	"runtime"
)

// Host describes the machine a run executes on.
type Host struct {
	Name string
	OS   string
	Arch string
	CPUs int
}

// CurrentHost returns the description of the running machine. An unknown
// hostname is left empty.
func CurrentHost() Host {
	name, _ := os.Hostname()
	return Host{
		Name: name,
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
		CPUs: runtime.NumCPU(),
	}
}

// Platform returns the OS/architecture pair, e.g. "linux/amd64".
func (h Host) Platform() string {
	return fmt.Sprintf("%s/%s", h.OS, h.Arch)
}
