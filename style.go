package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CVSRohit/PodcastGen/models"
)

var styles = struct {
	title lipgloss.Style
	host  lipgloss.Style
	guest lipgloss.Style
	dim   lipgloss.Style
	text  lipgloss.Style
}{
	title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f")),
	host:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#61afef")),
	guest: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e5c07b")),
	dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681")),
	text:  lipgloss.NewStyle().PaddingLeft(2).Width(80),
}

// renderDialogue prints each turn as a colored role label followed by the
// wrapped line.
func renderDialogue(d models.Dialogue) string {
	var lines []string
	lines = append(lines, styles.title.Render("Dialogue")+" "+styles.dim.Render(turnCount(d.Len())))
	for _, t := range d.Turns {
		label := styles.host
		if t.Role == models.Guest {
			label = styles.guest
		}
		lines = append(lines, label.Render(string(t.Role)+":"), styles.text.Render(t.Content))
	}
	return strings.Join(lines, "\n")
}

func turnCount(n int) string {
	if n == 1 {
		return "(1 turn)"
	}
	return "(" + strconv.Itoa(n) + " turns)"
}
