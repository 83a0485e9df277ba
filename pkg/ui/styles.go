package ui

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

//go:embed styles/styles.yaml
var defaultStyles []byte

// ColorDef represents an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Underline    bool   `yaml:"underline,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Background   string `yaml:"background,omitempty"`
	Width        int    `yaml:"width,omitempty"`
	MarginBottom int    `yaml:"marginBottom,omitempty"`
	PaddingLeft  int    `yaml:"paddingLeft,omitempty"`
}

// StylesConfig represents a complete styles file
type StylesConfig struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// Styles maps semantic names to lipgloss styles
type Styles struct {
	registry map[string]lipgloss.Style
	plain    bool
}

// DefaultStyles returns the embedded styles
func DefaultStyles() *Styles {
	s, err := ParseStyles(defaultStyles)
	if err != nil {
		panic(fmt.Sprintf("ui: embedded styles are invalid: %v", err))
	}
	return s
}

// PlainStyles returns styles that render text unchanged
func PlainStyles() *Styles {
	return &Styles{plain: true}
}

// ParseStyles builds styles from YAML. Styles missing from data fall back to
// the embedded defaults when data overrides only some of them.
func ParseStyles(data []byte) (*Styles, error) {
	var cfg StylesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse styles: %w", err)
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	s := &Styles{registry: make(map[string]lipgloss.Style, len(cfg.Styles))}
	for name, def := range cfg.Styles {
		s.registry[name] = buildStyle(def, colors)
	}
	return s, nil
}

// Override returns s with the styles defined in data replacing its own
func (s *Styles) Override(data []byte) (*Styles, error) {
	override, err := ParseStyles(data)
	if err != nil {
		return nil, err
	}
	merged := &Styles{registry: make(map[string]lipgloss.Style, len(s.registry))}
	for name, style := range s.registry {
		merged.registry[name] = style
	}
	for name, style := range override.registry {
		merged.registry[name] = style
	}
	return merged, nil
}

func buildStyle(def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	style := lipgloss.NewStyle()

	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}
	if color, ok := colors[def.Foreground]; ok {
		style = style.Foreground(color)
	}
	if color, ok := colors[def.Background]; ok {
		style = style.Background(color)
	}
	if def.Width > 0 {
		style = style.Width(def.Width)
	}
	if def.MarginBottom > 0 {
		style = style.MarginBottom(def.MarginBottom)
	}
	if def.PaddingLeft > 0 {
		style = style.PaddingLeft(def.PaddingLeft)
	}
	return style
}

// Get retrieves a style by name, or an empty style
func (s *Styles) Get(name string) lipgloss.Style {
	if s == nil || s.plain {
		return lipgloss.NewStyle()
	}
	if style, ok := s.registry[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Render applies the named style to text. Plain styles return text as is.
func (s *Styles) Render(name, text string) string {
	if s == nil || s.plain {
		return text
	}
	return s.Get(name).Render(text)
}

// Has reports whether a style with name is defined
func (s *Styles) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.registry[name]
	return ok
}
