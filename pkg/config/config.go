package config

import (
	"time"

	"github.com/arthur-debert/envmerge/pkg/platform"
)

// Output formats accepted by output.format
const (
	FormatAuto = "auto"
	FormatTerm = "term"
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config is the decoded envmerge configuration
type Config struct {
	Contributors Contributors `koanf:"contributors"`
	Platform     Platform     `koanf:"platform"`
	State        State        `koanf:"state"`
	Server       Server       `koanf:"server"`
	Output       Output       `koanf:"output"`
}

// Contributors controls contributor discovery
type Contributors struct {
	Root       string   `koanf:"root"`
	Files      []string `koanf:"files"`
	Ignore     []string `koanf:"ignore"`
	IgnoreFile string   `koanf:"ignore_file"`
}

// Platform holds platform overrides
type Platform struct {
	// CaseInsensitive is auto, true or false
	CaseInsensitive string `koanf:"case_insensitive"`
}

// CaseInsensitiveFor resolves the configured case mode for goos
func (p Platform) CaseInsensitiveFor(goos string) (bool, error) {
	return platform.ParseCaseMode(p.CaseInsensitive, goos)
}

// State locates persisted collections
type State struct {
	Dir string `koanf:"dir"`
}

// Server configures `envmerge serve`
type Server struct {
	Addr              string        `koanf:"addr"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// Output configures rendering
type Output struct {
	Format string `koanf:"format"`
}
