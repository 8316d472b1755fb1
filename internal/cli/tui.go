package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/slideweave/pkg/diag"
)

var (
	detailKeyStyle = lipgloss.NewStyle().Foreground(colorGray).Width(10)
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// DiagListModel - Interactive diagnostics browser
// =============================================================================

// DiagListModel is the bubbletea model behind 'check -i'. It pages through
// diagnostics, shows the selected one in full, and can hide warnings.
type DiagListModel struct {
	all        []diagRow
	rows       []diagRow // all, or only errors when errorsOnly is set
	errorsOnly bool

	Cursor int
	Offset int
	Height int
}

func newDiagListModel(rows []diagRow) DiagListModel {
	return DiagListModel{all: rows, rows: rows, Height: 12}
}

func (m DiagListModel) Init() tea.Cmd {
	return nil
}

func (m DiagListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.rows))
		case "end", "G":
			m.move(len(m.rows))
		case "e":
			m.toggleErrors()
		}
	case tea.WindowSizeMsg:
		// Leave room for the title, the table border, and the detail pane.
		m.Height = max(msg.Height-14, 3)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped to the rows, and scrolls the
// window so the cursor stays visible.
func (m *DiagListModel) move(delta int) {
	if len(m.rows) == 0 {
		m.Cursor, m.Offset = 0, 0
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.rows)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *DiagListModel) toggleErrors() {
	m.errorsOnly = !m.errorsOnly
	if !m.errorsOnly {
		m.rows = m.all
	} else {
		m.rows = nil
		for _, r := range m.all {
			if r.Severity == diag.Error {
				m.rows = append(m.rows, r)
			}
		}
	}
	m.Cursor, m.Offset = 0, 0
}

// Selected returns the diagnostic under the cursor.
func (m DiagListModel) Selected() (diagRow, bool) {
	if len(m.rows) == 0 {
		return diagRow{}, false
	}
	return m.rows[m.Cursor], true
}

func (m DiagListModel) View() string {
	var b strings.Builder

	title := "Diagnostics"
	if m.errorsOnly {
		title += " (errors only)"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  e toggle warnings  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " Nothing to show\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.rows))
	b.WriteString(diagTable(m.rows[m.Offset:end], m.Cursor-m.Offset).Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	b.WriteString("\n\n")

	if r, ok := m.Selected(); ok {
		b.WriteString(renderDetail(r))
	}
	return b.String()
}

// renderDetail shows every field of one diagnostic without truncation.
func renderDetail(r diagRow) string {
	lines := [][2]string{
		{"Slide", fmt.Sprintf("%d", r.Slide)},
		{"Severity", severityStyle(r.Severity).Render(r.Severity.String())},
		{"Code", string(r.Code)},
		{"Path", r.Path},
		{"Property", r.Property},
		{"Message", r.Message},
	}
	var b strings.Builder
	for _, l := range lines {
		if l[1] == "" {
			continue
		}
		b.WriteString(detailKeyStyle.Render(l[0]) + " " + StyleValue.Render(l[1]) + "\n")
	}
	return b.String()
}
