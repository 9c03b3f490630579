//go:build windows
// +build windows

package duckbridge

import (
	"syscall"

	"github.com/pkg/errors"
)

// Load the engine's DLL on Windows systems. The returned handle is usable
// with purego.RegisterLibFunc.
func loadDynamicLibrary(path string) (uintptr, error) {
	handle, err := syscall.LoadLibrary(path)
	if err != nil {
		return 0, errors.Wrapf(err, "LoadLibrary %s", path)
	}
	return uintptr(handle), nil
}

func libraryNames() []string {
	return []string{"duckdb.dll", "libduckdb.dll"}
}
