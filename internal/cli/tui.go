package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/netalign/pkg/cycle"
)

var listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

// =============================================================================
// ChainListModel - Interactive chain browser
// =============================================================================

// ChainListModel is the bubbletea model for browsing chains. Enter expands
// the chain under the cursor.
type ChainListModel struct {
	Chains   []*cycle.Chain
	Cursor   int
	Height   int
	Offset   int
	Expanded bool
}

// NewChainListModel creates a new chain list model.
func NewChainListModel(chains []*cycle.Chain) ChainListModel {
	return ChainListModel{Chains: chains, Height: 15}
}

func (m ChainListModel) Init() tea.Cmd {
	return nil
}

func (m ChainListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
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
			if m.Cursor < len(m.Chains)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m ChainListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Chains"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ expand  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Chains))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		ch := m.Chains[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(i + 1),
			ch.Kind(),
			strconv.Itoa(len(ch.Nodes)),
			correctMark(ch.Correct),
			chainNodes(ch, maxChainNodes),
		})
	}

	t := newTable([]string{"", "#", "KIND", "LEN", "OK", "NODES"}, rows, func(row, col int) lipgloss.Style {
		base := lipgloss.NewStyle()
		switch idx := m.Offset + row; {
		case col == 4:
			return base
		case idx == m.Cursor:
			return base.Bold(true)
		}
		return base.Foreground(colorMuted)
	})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Chains))))

	if m.Expanded && len(m.Chains) > 0 {
		ch := m.Chains[m.Cursor]
		b.WriteString("\n\n")
		b.WriteString(listSelectedStyle.Render(fmt.Sprintf("%s of %d nodes", ch.Kind(), len(ch.Nodes))))
		b.WriteString("\n")
		names := make([]string, 0, len(ch.Nodes)+1)
		for _, n := range ch.Nodes {
			names = append(names, nodeName(n))
		}
		if ch.IsCycle && len(names) > 0 {
			names = append(names, names[0])
		}
		b.WriteString(lipgloss.NewStyle().Width(100).Render(joinNodes(names)))
	}
	return b.String()
}

// runChainBrowser shows chains until the user quits or ctx is canceled.
func runChainBrowser(ctx context.Context, chains []*cycle.Chain) error {
	_, err := tea.NewProgram(NewChainListModel(chains), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("chain browser: %w", err)
	}
	return nil
}
