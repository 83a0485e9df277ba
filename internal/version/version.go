package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/envmerge/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/envmerge/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/envmerge/internal/version.Date={{.Date}}
)

// String returns the version line printed by `envmerge version`
func String() string {
	return "envmerge " + Version + " (commit " + Commit + ", built " + Date + ")"
}
