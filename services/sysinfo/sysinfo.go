// Package sysinfo exports one process-wide record describing the host.
package sysinfo

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/vk/patchbay/boot"
)

// Info describes the running host process. One instance exists per process.
type Info struct {
	Hostname  string
	OS        string
	Arch      string
	PID       int
	StartedAt time.Time
}

var (
	instance *Info
	once     sync.Once
)

// Instance returns the process-wide Info singleton, building it on first use.
func Instance() *Info {
	once.Do(func() {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		instance = &Info{
			Hostname:  hostname,
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			PID:       os.Getpid(),
			StartedAt: time.Now(),
		}
	})
	return instance
}

// Def is the boot catalog entry for the host information service. It takes
// the singleton path: the process-wide instance is registered as-is.
func Def() boot.Def {
	return boot.Def{
		Name:      "sysinfo",
		Singleton: func() any { return Instance() },
	}
}
