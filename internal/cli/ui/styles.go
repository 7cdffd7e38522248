package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines all lipgloss styles used in the CLI
var Styles = struct {
	Bold       lipgloss.Style
	Muted      lipgloss.Style
	Rule       lipgloss.Style
	SuccessBox lipgloss.Style
	ErrorBox   lipgloss.Style
	DiffAdd    lipgloss.Style
	DiffRemove lipgloss.Style
	DiffHunk   lipgloss.Style
}{
	Bold:  lipgloss.NewStyle().Bold(true),
	Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Rule:  lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginTop(1),

	SuccessBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("42")).
		Padding(0, 1).
		Width(60),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(0, 1).
		Width(60),

	DiffAdd:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	DiffRemove: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	DiffHunk:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
}
