package duckbridge

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Library loader state. The engine library is located and loaded once per
// process; every entry point below requires a successful Load.
var (
	libOnce   sync.Once
	libLoaded bool
	libErr    error
	libPath   string
	libHandle uintptr
)

// Load locates and loads the engine's shared library and registers every
// C entry point this package uses. It is called implicitly by Open; calling
// it directly is only useful to surface load failures early. Safe to call
// from multiple goroutines; only the first call does work.
func Load() error {
	libOnce.Do(func() {
		libPath = findLibraryPath()
		if libPath == "" {
			libErr = errors.New("duckdb shared library not found; set DUCKBRIDGE_LIBRARY_PATH")
			return
		}

		logger.Debug("loading engine library", zap.String("path", libPath))

		handle, err := loadDynamicLibrary(libPath)
		if err != nil {
			libErr = err
			return
		}
		libHandle = handle

		registerAPI(libHandle)
		libLoaded = true

		logger.Debug("engine library loaded",
			zap.String("path", libPath),
			zap.String("version", goString(duckdbLibraryVersion())))
	})
	return libErr
}

// LibraryPath returns the path the engine library was (or would be) loaded
// from, and whether loading succeeded.
func LibraryPath() (string, bool) {
	_ = Load()
	return libPath, libLoaded
}

// findLibraryPath searches the usual locations for the engine library:
// an explicit override, the working directory, the executable's directory,
// this module's directory, and finally the system loader's default paths.
func findLibraryPath() string {
	if path := os.Getenv("DUCKBRIDGE_LIBRARY_PATH"); path != "" {
		return path
	}

	names := libraryNames()

	var dirs []string
	dirs = append(dirs, ".")
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	if _, thisFile, _, ok := runtime.Caller(0); ok {
		moduleDir := filepath.Dir(thisFile)
		dirs = append(dirs,
			moduleDir,
			filepath.Join(moduleDir, "lib", runtime.GOOS, runtime.GOARCH))
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}

	// Fall back to a bare name and let the system loader resolve it.
	return names[0]
}
