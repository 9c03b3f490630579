package duckbridge

// Version of this package.
const Version = "1.0.0"

// EngineVersion reports the loaded engine library's own version string, or
// an error if the library cannot be loaded.
func EngineVersion() (string, error) {
	if err := Load(); err != nil {
		return "", err
	}
	return goString(duckdbLibraryVersion()), nil
}
