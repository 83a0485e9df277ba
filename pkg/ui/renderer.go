package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arthur-debert/envmerge/pkg/merge"
	"github.com/arthur-debert/envmerge/pkg/types"
	"gopkg.in/yaml.v3"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	// RenderMerged renders a merged collection with the provenance of every mutator
	RenderMerged(merged *merge.Collection) error

	// RenderContributions renders registered collections in registration order
	RenderContributions(contributions []types.Contribution) error

	// RenderStatus renders the comparison with the last applied collection
	RenderStatus(status StatusView) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// StatusView is the renderable form of a status report
type StatusView struct {
	AppliedAt *time.Time  `json:"applied_at,omitempty" yaml:"applied_at,omitempty"`
	Stale     bool        `json:"stale" yaml:"stale"`
	Diff      *merge.Diff `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// ContributionView is the renderable form of one registered collection
type ContributionView struct {
	ID         string        `json:"id" yaml:"id"`
	Persistent bool          `json:"persistent" yaml:"persistent"`
	Entries    []types.Entry `json:"entries" yaml:"entries"`
}

// NewRenderer creates a renderer for format. FormatAuto is resolved against w.
func NewRenderer(format Format, w io.Writer, styles *Styles) (Renderer, error) {
	switch Resolve(format, w) {
	case FormatTerminal:
		if styles == nil {
			styles = DefaultStyles()
		}
		return &textRenderer{w: w, styles: styles}, nil
	case FormatText:
		return &textRenderer{w: w, styles: PlainStyles()}, nil
	case FormatJSON:
		return &dataRenderer{w: w, encode: encodeJSON}, nil
	case FormatYAML:
		return &dataRenderer{w: w, encode: encodeYAML}, nil
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}

type textRenderer struct {
	w      io.Writer
	styles *Styles
}

func (r *textRenderer) RenderMerged(merged *merge.Collection) error {
	if merged.Len() == 0 {
		return r.RenderMessage("No environment mutations registered")
	}

	var b strings.Builder
	merged.Each(func(variable string, mutators []types.ExtensionMutator) {
		b.WriteString(r.styles.Render("Variable", variable))
		b.WriteString("\n")
		for _, m := range mutators {
			b.WriteString(r.mutatorLine(m.ContributorID, m.Type, m.Value))
		}
	})
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *textRenderer) RenderContributions(contributions []types.Contribution) error {
	if len(contributions) == 0 {
		return r.RenderMessage("No contributors registered")
	}

	var b strings.Builder
	for _, c := range contributions {
		header := c.ID
		if c.Collection != nil && c.Collection.Persistent {
			header += " " + r.styles.Render("Muted", "(persistent)")
		}
		b.WriteString(r.styles.Render("Variable", header))
		b.WriteString("\n")
		for _, e := range c.Collection.Entries() {
			b.WriteString(r.mutatorLine(e.Variable, e.Mutator.Type, e.Mutator.Value))
		}
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *textRenderer) RenderStatus(status StatusView) error {
	var b strings.Builder

	switch {
	case status.AppliedAt == nil:
		b.WriteString(r.styles.Render("Warning", "Environment has never been applied"))
	case status.Stale:
		b.WriteString(r.styles.Render("Warning", "Environment is stale"))
		b.WriteString(r.styles.Render("Muted", fmt.Sprintf(" (last applied %s)", status.AppliedAt.Format(time.RFC3339))))
	default:
		b.WriteString(r.styles.Render("Success", "Environment is up to date"))
		b.WriteString(r.styles.Render("Muted", fmt.Sprintf(" (applied %s)", status.AppliedAt.Format(time.RFC3339))))
	}
	b.WriteString("\n")

	if !status.Diff.Empty() {
		r.diffSection(&b, "Added", "Success", status.Diff.Added)
		r.diffSection(&b, "Changed", "Warning", status.Diff.Changed)
		r.diffSection(&b, "Removed", "Error", status.Diff.Removed)
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *textRenderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.w, msg)
	return err
}

func (r *textRenderer) diffSection(b *strings.Builder, title, style string, section map[string][]types.ExtensionMutator) {
	if len(section) == 0 {
		return
	}
	b.WriteString(r.styles.Render(style, title+":"))
	b.WriteString("\n")
	for _, variable := range sortedKeys(section) {
		b.WriteString("  ")
		b.WriteString(r.styles.Render("Variable", variable))
		b.WriteString("\n")
		for _, m := range section[variable] {
			b.WriteString("  ")
			b.WriteString(r.mutatorLine(m.ContributorID, m.Type, m.Value))
		}
	}
}

// mutatorLine renders "  <label> <type> <value>" with fixed columns
func (r *textRenderer) mutatorLine(label string, typ types.MutatorType, value string) string {
	typeStyle := "Value"
	switch typ {
	case types.MutatorReplace:
		typeStyle = "Replace"
	case types.MutatorAppend:
		typeStyle = "Append"
	case types.MutatorPrepend:
		typeStyle = "Prepend"
	}
	return fmt.Sprintf("  %s %s %s\n",
		r.styles.Render("Contributor", fmt.Sprintf("%-16s", label)),
		r.styles.Render(typeStyle, fmt.Sprintf("%-8s", typ)),
		r.styles.Render("Value", fmt.Sprintf("%q", value)),
	)
}

type dataRenderer struct {
	w      io.Writer
	encode func(io.Writer, interface{}) error
}

func (r *dataRenderer) RenderMerged(merged *merge.Collection) error {
	entries := merged.Entries()
	if entries == nil {
		entries = []merge.Entry{}
	}
	return r.encode(r.w, entries)
}

func (r *dataRenderer) RenderContributions(contributions []types.Contribution) error {
	views := make([]ContributionView, 0, len(contributions))
	for _, c := range contributions {
		entries := c.Collection.Entries()
		if entries == nil {
			entries = []types.Entry{}
		}
		views = append(views, ContributionView{
			ID:         c.ID,
			Persistent: c.Collection != nil && c.Collection.Persistent,
			Entries:    entries,
		})
	}
	return r.encode(r.w, views)
}

func (r *dataRenderer) RenderStatus(status StatusView) error {
	return r.encode(r.w, status)
}

func (r *dataRenderer) RenderMessage(msg string) error {
	return r.encode(r.w, map[string]string{"message": msg})
}

func encodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
