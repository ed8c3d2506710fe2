package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/milk9111/tilemap/catalog"
	"github.com/milk9111/tilemap/editor"
	"github.com/milk9111/tilemap/store"
	"github.com/milk9111/tilemap/tilemap"
)

var (
	accentFg  = lipgloss.Color("#7C3AED")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	warnFg    = lipgloss.Color("#F59E0B")
	borderCol = lipgloss.Color("#243141")

	titleStyle    = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(baseDimFg)
	selectedStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	warnStyle     = lipgloss.NewStyle().Foreground(warnFg).Bold(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
)

type entry struct {
	store.Record
	Rows, Columns int
}

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmDeleteAll
)

type recordsMsg struct {
	entries []entry
	err     error
}

type doneMsg struct {
	status string
	err    error
}

type model struct {
	st        store.Store
	cat       *catalog.Catalog
	opts      editor.Options
	exportDir string

	entries []entry
	cursor  int
	confirm confirmKind
	status  string
	width   int
	height  int
}

func newModel(st store.Store, cat *catalog.Catalog, opts editor.Options, exportDir string) model {
	return model{st: st, cat: cat, opts: opts, exportDir: exportDir, status: "loading..."}
}

func (m model) Init() tea.Cmd { return loadEntries(m.st) }

func loadEntries(st store.Store) tea.Cmd {
	return func() tea.Msg {
		recs, err := st.List()
		if err != nil {
			return recordsMsg{err: err}
		}
		entries := make([]entry, 0, len(recs))
		for _, r := range recs {
			e := entry{Record: r}
			if tm, err := tilemap.Deserialize([]byte(r.Data)); err == nil {
				e.Rows, e.Columns = tm.Rows, tm.Columns
			}
			entries = append(entries, e)
		}
		return recordsMsg{entries: entries}
	}
}

func deleteEntry(st store.Store, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := st.Delete(id); err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{status: fmt.Sprintf("deleted #%d", id)}
	}
}

func deleteAll(st store.Store) tea.Cmd {
	return func() tea.Msg {
		if err := st.DeleteAll(); err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{status: "deleted all maps"}
	}
}

// exportEntry renders a stored map to the export directory.
func exportEntry(st store.Store, cat *catalog.Catalog, opts editor.Options, dir string, id int64, kind editor.ExportKind) tea.Cmd {
	return func() tea.Msg {
		s, err := editor.Load(st, id, cat, opts)
		if err != nil {
			return doneMsg{err: err}
		}
		defer s.Close()
		res := <-s.Export(editor.DirDestination{Dir: dir}, kind)
		if res.Err != nil {
			return doneMsg{err: res.Err}
		}
		return doneMsg{status: fmt.Sprintf("exported %s in %v", res.Location, res.Elapsed.Round(time.Millisecond))}
	}
}

func (m model) selected() (entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return entry{}, false
	}
	return m.entries[m.cursor], true
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case recordsMsg:
		if msg.err != nil {
			m.status = "list error: " + msg.err.Error()
			return m, nil
		}
		m.entries = msg.entries
		if m.cursor >= len(m.entries) {
			m.cursor = max(0, len(m.entries)-1)
		}
		m.status = fmt.Sprintf("%d maps", len(m.entries))
	case doneMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		return m, loadEntries(m.st)
	case tea.KeyMsg:
		if m.confirm != confirmNone {
			kind := m.confirm
			m.confirm = confirmNone
			if msg.String() != "y" {
				m.status = "cancelled"
				return m, nil
			}
			if kind == confirmDeleteAll {
				return m, deleteAll(m.st)
			}
			if e, ok := m.selected(); ok {
				return m, deleteEntry(m.st, e.ID)
			}
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "r":
			m.status = "refreshing..."
			return m, loadEntries(m.st)
		case "d":
			if e, ok := m.selected(); ok {
				m.confirm = confirmDelete
				m.status = fmt.Sprintf("delete %q? (y/n)", e.Name)
			}
		case "D":
			if len(m.entries) > 0 {
				m.confirm = confirmDeleteAll
				m.status = "delete ALL maps? (y/n)"
			}
		case "e", "t":
			e, ok := m.selected()
			if !ok {
				return m, nil
			}
			kind := editor.ExportFull
			if msg.String() == "t" {
				kind = editor.ExportThumbnail
			}
			m.status = fmt.Sprintf("exporting %q...", e.Name)
			return m, exportEntry(m.st, m.cat, m.opts, m.exportDir, e.ID, kind)
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tile maps"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(dimStyle.Render("no saved maps"))
		b.WriteString("\n")
	}
	for i, e := range m.entries {
		line := fmt.Sprintf("%4d  %-24s %2dx%-2d  %s", e.ID, truncate(e.Name, 24), e.Rows, e.Columns, e.Updated.Local().Format("2006-01-02 15:04"))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.confirm != confirmNone {
		b.WriteString(warnStyle.Render(m.status))
	} else {
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("j/k move  e export  t thumbnail  d delete  D delete all  r refresh  q quit"))
	return boxStyle.Render(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
