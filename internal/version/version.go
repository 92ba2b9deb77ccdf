package version

// Version is the engine version, set at build time with
// -ldflags "-X github.com/rxtech-lab/argo-fills/internal/version.Version=1.2.3".
// "main" marks a development build.
var Version = "v0.4.0"

// GetVersion returns the engine version.
func GetVersion() string {
	return Version
}
