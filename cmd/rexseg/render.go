package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jackzampolin/rexseg/internal/rex"
)

var (
	// nameStyle for the input name in the summary header
	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted label text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// rangeStyle for page ranges
	rangeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// untitledStyle for projects without a recoverable title
	untitledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")).
			Italic(true)

	// summaryBoxStyle wraps one document's project list
	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

// renderProjects writes a human-readable summary of one document's projects.
func renderProjects(w io.Writer, name string, projects rex.ProjectList) {
	if name == "-" {
		name = "stdin"
	}

	header := fmt.Sprintf("%s %s  %s %d  %s %d",
		dimStyle.Render("Input:"), nameStyle.Render(name),
		dimStyle.Render("Projets:"), len(projects),
		dimStyle.Render("Pages:"), projects.Pages(),
	)

	lines := make([]string, 0, len(projects)+1)
	lines = append(lines, header)
	for i, p := range projects {
		titre := p.Titre
		if titre == "" {
			titre = untitledStyle.Render("(sans titre)")
		}
		lines = append(lines, fmt.Sprintf("%3d. %s  %s",
			i+1, titre,
			rangeStyle.Render(fmt.Sprintf("p. %d-%d", p.PageDebut, p.PageFin)),
		))
	}

	fmt.Fprintln(w, summaryBoxStyle.Render(strings.Join(lines, "\n")))
}
