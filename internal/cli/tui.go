package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/graph"
	"github.com/matzehuels/gitscope/pkg/ident"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	panelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// ExploreModel - Interactive graph browser
// =============================================================================

// nodeBuilder resolves a single node on demand.
type nodeBuilder interface {
	BuildNode(ctx context.Context, id ident.Identifier) (graph.Node, error)
}

// nodeMsg carries the result of an asynchronous resolution.
type nodeMsg struct {
	id   ident.Identifier
	node graph.Node
	err  error
	push bool // record the current node in history before moving
}

// ExploreModel is the bubbletea model for browsing the object graph one node
// at a time. Moving to an edge target resolves it; going back pops the
// history without resolving again.
type ExploreModel struct {
	ctx     context.Context
	builder nodeBuilder

	start   ident.Identifier
	current *graph.Node
	history []graph.Node
	err     error
	loading bool

	Cursor int
	Offset int
	Height int
}

// NewExploreModel creates an explorer that opens at start.
func NewExploreModel(ctx context.Context, b nodeBuilder, start ident.Identifier) ExploreModel {
	return ExploreModel{
		ctx:     ctx,
		builder: b,
		start:   start,
		loading: true,
		Height:  15,
	}
}

func (m ExploreModel) resolve(id ident.Identifier, push bool) tea.Cmd {
	ctx, b := m.ctx, m.builder
	return func() tea.Msg {
		node, err := b.BuildNode(ctx, id)
		return nodeMsg{id: id, node: node, err: err, push: push}
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return m.resolve(m.start, false)
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case nodeMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.push && m.current != nil {
			m.history = append(m.history, *m.current)
		}
		node := msg.node
		m.current = &node
		m.err = nil
		m.Cursor, m.Offset = 0, 0

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.current != nil && m.Cursor < len(m.current.Edges)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "right", "l":
			if m.loading || m.current == nil || len(m.current.Edges) == 0 {
				return m, nil
			}
			m.loading = true
			return m, m.resolve(m.current.Edges[m.Cursor].Target, true)
		case "backspace", "left", "h":
			if len(m.history) == 0 {
				return m, nil
			}
			last := m.history[len(m.history)-1]
			m.history = m.history[:len(m.history)-1]
			m.current = &last
			m.err = nil
			m.Cursor, m.Offset = 0, 0
		case "r":
			if m.current == nil || m.loading {
				return m, nil
			}
			m.loading = true
			return m, m.resolve(m.current.ID, false)
		}

	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = max(0, m.Cursor-m.Height+1)
		}
	}
	return m, nil
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("gitscope explore"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  ⏎ follow  ← back  r reload  q quit"))
	b.WriteString("\n\n")

	if m.current == nil {
		if m.err != nil {
			b.WriteString(StyleError.Render(iconError + " " + errors.UserMessage(m.err)))
		} else {
			b.WriteString(listDimStyle.Render("resolving " + m.start.String() + "..."))
		}
		b.WriteString("\n")
		return b.String()
	}

	n := m.current
	var header strings.Builder
	header.WriteString(kindStyle(n.Kind).Render(string(n.Kind)) + " " + StyleValue.Render(n.Label) + "\n")
	header.WriteString(listDimStyle.Render(n.ID.String()))
	if subject, _, _ := strings.Cut(n.Text, "\n"); subject != "" {
		header.WriteString("\n" + listNormalStyle.Render(subject))
	}
	b.WriteString(panelStyle.Render(header.String()))
	b.WriteString("\n")

	if len(n.Edges) == 0 {
		b.WriteString(listDimStyle.Render("  (no outgoing edges)"))
		b.WriteString("\n")
	}
	end := min(m.Offset+m.Height, len(n.Edges))
	for i := m.Offset; i < end; i++ {
		line := formatEdge(n.Edges[i])
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(StyleError.Render(iconError+" "+errors.UserMessage(m.err)) + "\n")
	}
	status := fmt.Sprintf("  depth %d", len(m.history))
	if len(n.Edges) > 0 {
		status += fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(n.Edges))
	}
	if m.loading {
		status += "  resolving..."
	}
	b.WriteString(listDimStyle.Render(status))

	return b.String()
}

// Current returns the node on screen, if any.
func (m ExploreModel) Current() (graph.Node, bool) {
	if m.current == nil {
		return graph.Node{}, false
	}
	return *m.current, true
}
