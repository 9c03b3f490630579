//go:build !windows
// +build !windows

package duckbridge

import (
	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
)

// Load the engine's shared library on Unix systems using purego.
func loadDynamicLibrary(path string) (uintptr, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, errors.Wrapf(err, "dlopen %s", path)
	}
	return handle, nil
}

func libraryNames() []string {
	return []string{"libduckdb.so", "libduckdb.dylib"}
}
