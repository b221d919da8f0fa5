package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/netalign/pkg/merge"
)

// Terminal palette. Node colors follow the diagram: purple for aligned
// nodes, blue for unaligned G1 nodes, red for unmatched G2 nodes.
var (
	colorAccent  = lipgloss.Color("36")
	colorGood    = lipgloss.Color("35")
	colorWarn    = lipgloss.Color("220")
	colorBad     = lipgloss.Color("167")
	colorAddress = lipgloss.Color("75")
	colorMuted   = lipgloss.Color("245")
	colorFaint   = lipgloss.Color("240")

	nodeColors = map[merge.Color]lipgloss.Color{
		merge.Purple: lipgloss.Color("141"),
		merge.Blue:   lipgloss.Color("75"),
		merge.Red:    lipgloss.Color("167"),
	}
)

var (
	// StyleTitle renders headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	// StyleHighlight renders file names and IDs.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	// StyleLink renders addresses.
	StyleLink = lipgloss.NewStyle().Foreground(colorAddress).Underline(true)
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorFaint)

	styleWarning = lipgloss.NewStyle().Foreground(colorWarn)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleGood    = lipgloss.NewStyle().Foreground(colorGood)
	styleBad     = lipgloss.NewStyle().Foreground(colorBad)
	styleHeader  = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	styleKey     = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
)

const (
	markCorrect   = "✓"
	markIncorrect = "✗"
	markWarning   = "!"
	markInfo      = "›"
	markFile      = "→"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleGood.Render(markCorrect) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleWarning.Render(markWarning) + " " + styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleMuted.Render(markInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written artifact.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(markFile) + " " + path)
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + value)
}

// printStats prints the size of the merged network and whether it came from
// the cache.
func printStats(nodes, links int, cached bool) {
	origin := styleMuted.Render("computed")
	if cached {
		origin = styleGood.Render("cached")
	}
	sep := StyleDim.Render(" · ")
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf("%d nodes", nodes)) + sep +
		StyleDim.Render(fmt.Sprintf("%d links", links)) + sep + origin)
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + StyleLink.UnsetUnderline().Render(cmd))
}

// correctMark renders a colored check or cross.
func correctMark(ok bool) string {
	if ok {
		return styleGood.Render(markCorrect)
	}
	return styleBad.Render(markIncorrect)
}

// nodeName renders a merged node in its diagram color.
func nodeName(n merge.NodeID) string {
	return lipgloss.NewStyle().Foreground(nodeColors[n.Color]).Render(n.String())
}

// newTable returns a rounded table with styled headers. cell styles body
// cells; a nil cell pads every cell by one column.
func newTable(headers []string, rows [][]string, cell func(row, col int) lipgloss.Style) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if cell == nil {
				return lipgloss.NewStyle().Padding(0, 1)
			}
			return cell(row, col)
		})
}

// joinNodes renders node names separated by arrows.
func joinNodes(names []string) string {
	return strings.Join(names, " "+StyleDim.Render("→")+" ")
}
