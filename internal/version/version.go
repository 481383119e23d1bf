package version

// Version is the service version reported by /, /health and the CLI.
// Bump it on every release.
const Version = "1.0.0"

// FullVersion returns the version with the v prefix.
func FullVersion() string {
	return "v" + Version
}
