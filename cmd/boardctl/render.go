package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DoyleJ11/board-sync/pkg/types"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	doneStyle    = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("240"))
	starStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Overlay supplies the text to display; the translation cache implements it.
type Overlay interface {
	SectionTitle(s types.Section) string
	TaskText(sectionID string, t types.Task) string
}

type sourceText struct{}

func (sourceText) SectionTitle(s types.Section) string { return s.Title }
func (sourceText) TaskText(_ string, t types.Task) string { return t.Text }

func renderBoard(b types.Board, o Overlay, showIDs bool) string {
	if o == nil {
		o = sourceText{}
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(b.Title))
	sb.WriteString("  ")
	sb.WriteString(dimStyle.Render("updated " + b.UpdatedAt))
	sb.WriteString("\n")

	if len(b.Sections) == 0 {
		sb.WriteString(dimStyle.Render("  (no sections)"))
		sb.WriteString("\n")
	}
	for _, s := range b.Sections {
		sb.WriteString("\n")
		sb.WriteString(sectionStyle.Render(o.SectionTitle(s)))
		if showIDs {
			sb.WriteString(" " + dimStyle.Render(s.ID))
		}
		sb.WriteString("\n")
		for _, t := range s.Tasks {
			box := "[ ]"
			text := o.TaskText(s.ID, t)
			if t.Done {
				box = "[x]"
				text = doneStyle.Render(text)
			}
			star := " "
			if t.Starred {
				star = starStyle.Render("*")
			}
			line := fmt.Sprintf("  %s %s %s", box, star, text)
			if showIDs {
				line += " " + dimStyle.Render(t.ID)
			}
			sb.WriteString(line + "\n")
		}
	}
	return sb.String()
}
