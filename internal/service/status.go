package service

import (
	"os"
	"runtime"
)

// Path returns the service definition path for this platform.
func Path() string {
	if runtime.GOOS == "darwin" {
		return LaunchdPath(LaunchdLabel)
	}
	return UnitPath(SystemdName)
}

// Status reports the service definition path and whether it exists.
func Status() (string, bool) {
	path := Path()
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	return path, false
}

const (
	LaunchdLabel = "com.noter.agent"
	SystemdName  = "noter"
)
