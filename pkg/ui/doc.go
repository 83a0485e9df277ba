// Package ui renders envmerge output.
//
// Merged collections, contributor lists and status reports are rendered in
// one of four formats: term (styled with lipgloss), text (same layout, no
// styling), json and yaml. Auto detection picks term for color terminals and
// text otherwise.
//
// Environments printed by `envmerge env` use a separate set of formats that
// a shell can evaluate: shell, fish, dotenv, json and yaml.
package ui
