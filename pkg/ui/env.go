package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// EnvFormat is a format for printing environment variables
type EnvFormat string

// Supported environment formats
const (
	EnvShell  EnvFormat = "shell"
	EnvFish   EnvFormat = "fish"
	EnvDotenv EnvFormat = "dotenv"
	EnvJSON   EnvFormat = "json"
	EnvYAML   EnvFormat = "yaml"
)

// EnvFormats lists the supported environment formats
var EnvFormats = []EnvFormat{EnvShell, EnvFish, EnvDotenv, EnvJSON, EnvYAML}

// ParseEnvFormat parses an environment format name
func ParseEnvFormat(s string) (EnvFormat, error) {
	switch strings.ToLower(s) {
	case "", "shell", "sh", "bash", "zsh":
		return EnvShell, nil
	case "fish":
		return EnvFish, nil
	case "dotenv", "env":
		return EnvDotenv, nil
	case "json":
		return EnvJSON, nil
	case "yaml", "yml":
		return EnvYAML, nil
	default:
		return "", fmt.Errorf("unknown env format: %s", s)
	}
}

// RenderEnv prints env sorted by name
func RenderEnv(w io.Writer, env map[string]string, format EnvFormat) error {
	switch format {
	case EnvJSON:
		return encodeJSON(w, env)
	case EnvYAML:
		return encodeYAML(w, env)
	}

	var b strings.Builder
	for _, name := range sortedKeys(env) {
		value := env[name]
		switch format {
		case EnvShell:
			fmt.Fprintf(&b, "export %s=%s\n", name, ShellQuote(value))
		case EnvFish:
			fmt.Fprintf(&b, "set -gx %s %s\n", name, FishQuote(value))
		case EnvDotenv:
			fmt.Fprintf(&b, "%s=%s\n", name, DotenvQuote(value))
		default:
			return fmt.Errorf("unknown env format: %s", format)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// ShellQuote quotes s for POSIX shells
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// FishQuote quotes s for fish, where backslash and quote are escaped inside
// single quotes
func FishQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}

// DotenvQuote quotes s as a double quoted dotenv value
func DotenvQuote(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"$", `\$`,
		"\n", `\n`,
	)
	return `"` + r.Replace(s) + `"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
