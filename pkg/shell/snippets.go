// Package shell produces the lines a shell profile needs to load the merged
// environment at startup.
package shell

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/ui"
)

// Shells lists the shells a snippet can be generated for
var Shells = []string{"bash", "zsh", "fish", "sh"}

// Snippet returns the profile line that loads the environment into shell.
// binary is the command used to invoke envmerge.
func Snippet(shell, binary string) (string, error) {
	if binary == "" {
		binary = "envmerge"
	}

	switch strings.ToLower(shell) {
	case "bash", "zsh", "sh":
		return fmt.Sprintf(`command -v %s >/dev/null 2>&1 && eval "$(%s env --shell %s)"`,
			binary, binary, ui.EnvShell), nil
	case "fish":
		return fmt.Sprintf(`if command -q %s
    %s env --shell %s | source
end`, binary, binary, ui.EnvFish), nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unsupported shell %q", shell).
			WithDetail("shell", shell)
	}
}
