package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thalesor/repoprovas/core/alert"
	"github.com/thalesor/repoprovas/core/exam"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	groupStyle    = lipgloss.NewStyle().Bold(true)
	subgroupStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	noticeStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Padding(0, 1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	alertStyles = map[alert.Severity]lipgloss.Style{
		alert.Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		alert.Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		alert.Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		alert.Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// line is one row of a rendered tree. testID is 0 for group rows.
type line struct {
	depth  int
	text   string
	notice bool
	testID int
	badge  string
}

func termLines(terms []exam.TermNode) []line {
	var lines []line
	for _, term := range terms {
		lines = append(lines, line{text: fmt.Sprintf("%dº período · %s", term.Number, term.Summary)})
		if term.Notice != "" {
			lines = append(lines, line{depth: 1, text: term.Notice, notice: true})
			continue
		}
		for _, d := range term.Disciplines {
			lines = append(lines, line{depth: 1, text: d.Name})
			if d.Empty {
				lines = append(lines, line{depth: 2, text: d.Notice, notice: true})
				continue
			}
			for _, c := range d.Categories {
				lines = append(lines, line{depth: 2, text: c.Name})
				lines = appendTests(lines, 3, c.Tests)
			}
		}
	}
	return lines
}

func teacherLines(teachers []exam.TeacherNode) []line {
	var lines []line
	for _, tn := range teachers {
		lines = append(lines, line{text: tn.Name})
		for _, c := range tn.Categories {
			lines = append(lines, line{depth: 1, text: c.Name})
			for _, d := range c.Disciplines {
				lines = appendTests(lines, 2, d.Tests)
			}
		}
	}
	return lines
}

func appendTests(lines []line, depth int, tests []exam.TestNode) []line {
	for _, t := range tests {
		lines = append(lines, line{depth: depth, text: t.Label, testID: t.ID, badge: t.Badge})
	}
	return lines
}

// renderLines prints lines as an indented tree, highlighting the test row at index cursor (-1 for none).
func renderLines(lines []line, cursor int) string {
	var b strings.Builder
	for i, l := range lines {
		indent := strings.Repeat("  ", l.depth)
		text := l.text
		switch {
		case l.notice:
			text = noticeStyle.Render(text)
		case l.testID != 0 && i == cursor:
			text = cursorStyle.Render("> " + text)
		case l.testID != 0:
			text = "  " + text
		case l.depth == 0:
			text = groupStyle.Render(text)
		default:
			text = subgroupStyle.Render(text)
		}
		if l.badge != "" {
			text += " " + badgeStyle.Render(l.badge)
		}
		b.WriteString(indent + text + "\n")
	}
	return b.String()
}

func renderAlerts(msgs []alert.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		style, ok := alertStyles[m.Severity]
		if !ok {
			style = alertStyles[alert.Error]
		}
		b.WriteString(style.Render(fmt.Sprintf("[%s] %s", m.Severity, m.Text)) + "\n")
	}
	return b.String()
}
