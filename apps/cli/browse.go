package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/thalesor/repoprovas/core/alert"
	"github.com/thalesor/repoprovas/core/page"
	"github.com/thalesor/repoprovas/core/views"
)

func (cli *commandLine) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the archive interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := cli.newBrowser(cmd.Context())
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

const noSessionText = "Sessão ausente: informe um token com --token ou session.token"

type tab int

const (
	disciplinesTab tab = iota
	instructorsTab
)

func (t tab) String() string {
	if t == instructorsTab {
		return "Pessoa Instrutora"
	}
	return "Disciplinas"
}

type (
	// loadedMsg ends a page load started from the browser.
	loadedMsg struct {
		tab tab
		err error
	}

	// countedMsg carries the settled view count of an opened test.
	countedMsg struct {
		views.Result
	}
)

// browser is the terminal rendition of the two test pages.
type browser struct {
	ctx         context.Context
	alerts      *alert.Queue
	disciplines *page.DisciplinesPage
	instructors *page.InstructorsPage

	tab       tab
	search    textinput.Model
	searching bool
	lines     []line
	cursor    int // index into lines; -1 when no test is rendered
	opened    string
	height    int
}

func (cli *commandLine) newBrowser(ctx context.Context) browser {
	alerts := cli.newAlerts()
	disciplines := page.NewDisciplinesPage(cli.pageOptions(alerts))
	instructors := page.NewInstructorsPage(cli.pageOptions(alerts))
	disciplines.SetSession(cli.token)
	instructors.SetSession(cli.token)

	si := textinput.New()
	si.Prompt = "/ "
	si.Placeholder = "Pesquise por disciplina"
	si.CharLimit = 80

	return browser{
		ctx:         ctx,
		alerts:      alerts,
		disciplines: disciplines,
		instructors: instructors,
		search:      si,
		cursor:      -1,
	}
}

func (m browser) Init() tea.Cmd {
	return m.load()
}

// load fetches the page of the current tab. Each call fetches again.
func (m browser) load() tea.Cmd {
	t := m.tab
	return func() tea.Msg {
		var err error
		if t == instructorsTab {
			err = m.instructors.Load(m.ctx)
		} else {
			err = m.disciplines.Load(m.ctx)
		}
		return loadedMsg{tab: t, err: err}
	}
}

func (m browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		// late or superseded loads leave the rows alone
		switch errors.Cause(msg.err) {
		case page.ErrStale:
			return m, nil
		case page.ErrNoSession:
			m.alerts.Notify(alert.Error, noSessionText)
		}
		if msg.tab == m.tab {
			m.refresh()
		}
		return m, nil

	case countedMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.tab = (m.tab + 1) % 2
			m.setSearchPrompt()
			m.refresh()
			return m, m.load()
		case "/":
			m.searching = true
			cmd := m.search.Focus()
			return m, cmd
		case "r":
			return m, m.load()
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter":
			cmd := m.open()
			return m, cmd
		case "esc":
			m.alerts.Clear()
		}
		return m, nil
	}

	// cursor blinks
	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateSearch edits the search text. Enter stores it on the page and re-fetches, even when unchanged.
func (m browser) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		m.disciplines.SetSearch(m.search.Value())
		m.instructors.SetSearch(m.search.Value())
		return m, m.load()
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *browser) setSearchPrompt() {
	if m.tab == instructorsTab {
		m.search.Placeholder = "Pesquise por pessoa instrutora"
	} else {
		m.search.Placeholder = "Pesquise por disciplina"
	}
}

// refresh re-renders the rows of the current tab, keeping the cursor on the same test when possible.
func (m *browser) refresh() {
	selected := m.selectedTest()
	if m.tab == instructorsTab {
		m.lines = teacherLines(m.instructors.Tree())
	} else {
		m.lines = termLines(m.disciplines.Tree())
	}

	m.cursor = -1
	for i, l := range m.lines {
		if l.testID == 0 {
			continue
		}
		if m.cursor == -1 || l.testID == selected {
			m.cursor = i
		}
		if l.testID == selected {
			break
		}
	}
}

func (m browser) selectedTest() int {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return 0
	}
	return m.lines[m.cursor].testID
}

// move steps the cursor to the previous or next test row.
func (m *browser) move(step int) {
	for i := m.cursor + step; i >= 0 && i < len(m.lines); i += step {
		if m.lines[i].testID != 0 {
			m.cursor = i
			return
		}
	}
}

// open navigates to the selected test and waits for its view count in the background.
func (m *browser) open() tea.Cmd {
	id := m.selectedTest()
	if id == 0 {
		return nil
	}

	var (
		results <-chan views.Result
		err     error
	)
	if m.tab == instructorsTab {
		t, _, res, oerr := m.instructors.Open(m.ctx, id)
		m.opened, results, err = t.PdfURL, res, oerr
	} else {
		t, _, res, oerr := m.disciplines.Open(m.ctx, id)
		m.opened, results, err = t.PdfURL, res, oerr
	}
	if err != nil {
		m.alerts.Notify(alert.Error, err.Error())
		return nil
	}
	m.refresh()
	return func() tea.Msg {
		return countedMsg{<-results}
	}
}

func (m browser) loading() bool {
	if m.tab == instructorsTab {
		return m.instructors.Loading()
	}
	return m.disciplines.Loading()
}

func (m browser) View() string {
	var b strings.Builder

	tabs := make([]string, 0, 2)
	for _, t := range []tab{disciplinesTab, instructorsTab} {
		if t == m.tab {
			tabs = append(tabs, titleStyle.Render("["+t.String()+"]"))
		} else {
			tabs = append(tabs, helpStyle.Render(" "+t.String()+" "))
		}
	}
	b.WriteString(titleStyle.Render("RepoProvas") + "  " + strings.Join(tabs, " ") + "\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}
	b.WriteString(renderAlerts(m.alerts.Active()))
	b.WriteString("\n")

	switch {
	case m.loading() && len(m.lines) == 0:
		b.WriteString(helpStyle.Render("Carregando...") + "\n")
	case len(m.lines) == 0:
		b.WriteString(noticeStyle.Render("Nenhum resultado") + "\n")
	default:
		b.WriteString(renderLines(m.window(), m.cursor-m.offset()))
	}

	if m.opened != "" {
		b.WriteString("\n" + fmt.Sprintf("aberto: %s", m.opened) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("tab: alternar • /: pesquisar • ↑/↓: navegar • enter: abrir • r: recarregar • q: sair"))
	return b.String()
}

// offset is the first row shown so that the cursor stays on screen.
func (m browser) offset() int {
	rows := m.height - 8
	if m.height == 0 || rows <= 0 || m.cursor < rows {
		return 0
	}
	return m.cursor - rows + 1
}

func (m browser) window() []line {
	lines := m.lines[m.offset():]
	if rows := m.height - 8; m.height > 0 && rows > 0 && len(lines) > rows {
		lines = lines[:rows]
	}
	return lines
}
