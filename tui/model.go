// Package tui is an interactive tree browser for container files. The left
// pane shows the group/dataset tree; the right pane shows the attributes of
// the selected node.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ tea.Model = Model{}

// Styles holds the lipgloss styles the browser renders with.
type Styles struct {
	Title    lipgloss.Style
	Selected lipgloss.Style
	Group    lipgloss.Style
	Dataset  lipgloss.Style
	Muted    lipgloss.Style
	Pane     lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true),
		Selected: lipgloss.NewStyle().Reverse(true),
		Group:    lipgloss.NewStyle().Bold(true),
		Dataset:  lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Faint(true),
		Pane:     lipgloss.NewStyle().PaddingLeft(1),
	}
}

// Model is the Bubble Tea model for the browser.
type Model struct {
	title  string
	root   *Node
	rows   []row
	cursor int
	top    int // first visible row
	styles Styles

	width  int
	height int
	ready  bool
}

// New creates a browser over a prebuilt tree. title is shown in the header,
// usually the file path.
func New(title string, root *Node) Model {
	return Model{
		title:  title,
		root:   root,
		rows:   flatten(root),
		styles: DefaultStyles(),
	}
}

// Selected returns the node under the cursor.
func (m Model) Selected() *Node {
	return m.rows[m.cursor].node
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m = m.clampScroll()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m.clampScroll(), nil

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m.clampScroll(), nil

	case "enter", " ", "right", "l":
		node := m.rows[m.cursor].node
		if node.Kind == GroupNode && len(node.Children) > 0 {
			node.expanded = !node.expanded
			m.rows = flatten(m.root)
			if m.cursor >= len(m.rows) {
				m.cursor = len(m.rows) - 1
			}
		}
		return m.clampScroll(), nil

	case "left", "h":
		node := m.rows[m.cursor].node
		if node.Kind == GroupNode && node.expanded {
			node.expanded = false
			m.rows = flatten(m.root)
			if m.cursor >= len(m.rows) {
				m.cursor = len(m.rows) - 1
			}
		}
		return m.clampScroll(), nil
	}
	return m, nil
}

// clampScroll keeps the cursor inside the visible window.
func (m Model) clampScroll() Model {
	visible := m.treeHeight()
	if visible < 1 {
		return m
	}
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+visible {
		m.top = m.cursor - visible + 1
	}
	return m
}

// treeHeight is the number of tree rows that fit: total height minus header
// and footer.
func (m Model) treeHeight() int {
	return m.height - 2
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n")

	treeWidth := m.width / 2
	if treeWidth < 20 {
		treeWidth = m.width
	}

	visible := m.treeHeight()
	end := m.top + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}

	treeLines := make([]string, 0, end-m.top)
	for i := m.top; i < end; i++ {
		treeLines = append(treeLines, m.renderRow(i, treeWidth))
	}
	treePane := strings.Join(treeLines, "\n")

	detailPane := m.styles.Pane.Render(m.renderDetail(m.width - treeWidth))
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(treeWidth).Render(treePane),
		detailPane,
	)
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("j/k move · enter expand · q quit"))
	return b.String()
}

func (m Model) renderRow(i, width int) string {
	r := m.rows[i]
	indent := strings.Repeat("  ", r.depth)

	marker := "  "
	if r.node.Kind == GroupNode && len(r.node.Children) > 0 {
		if r.node.expanded {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}

	label := r.node.Name
	if r.node.Kind == DatasetNode && len(r.node.Shape) > 0 {
		label = fmt.Sprintf("%s %v", label, r.node.Shape)
	}

	line := indent + marker + label
	if len(line) > width {
		line = line[:width]
	}

	switch {
	case i == m.cursor:
		return m.styles.Selected.Render(line)
	case r.node.Kind == GroupNode:
		return m.styles.Group.Render(line)
	default:
		return m.styles.Dataset.Render(line)
	}
}

func (m Model) renderDetail(width int) string {
	node := m.Selected()

	var b strings.Builder
	b.WriteString(m.styles.Group.Render(node.Path))
	b.WriteString("\n")
	if node.Kind == DatasetNode {
		b.WriteString(fmt.Sprintf("dataset, shape %v\n", node.Shape))
	} else {
		b.WriteString(fmt.Sprintf("group, %d members\n", len(node.Children)))
	}
	if len(node.Attrs) == 0 {
		b.WriteString(m.styles.Muted.Render("no attributes"))
		return b.String()
	}
	for _, line := range node.Attrs {
		if len(line) > width && width > 3 {
			line = line[:width-3] + "..."
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
