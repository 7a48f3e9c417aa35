package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gitscope/pkg/graph"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - references
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for failures.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleKey    = lipgloss.NewStyle().Foreground(colorGray).Width(8)
	styleHidden = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
)

// kindStyles colors node kinds consistently across commands and the explorer.
var kindStyles = map[graph.Kind]lipgloss.Style{
	graph.KindCommit:  lipgloss.NewStyle().Foreground(colorYellow),
	graph.KindTree:    lipgloss.NewStyle().Foreground(colorGreen),
	graph.KindTag:     lipgloss.NewStyle().Foreground(colorBlue),
	graph.KindBlob:    lipgloss.NewStyle().Foreground(colorWhite),
	graph.KindUnknown: lipgloss.NewStyle().Foreground(colorDim),
}

func kindStyle(k graph.Kind) lipgloss.Style {
	if s, ok := kindStyles[k]; ok {
		return s
	}
	return StyleDim
}

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printStats prints walk statistics on a single line.
func printStats(nodes, edges, failures int) {
	parts := []string{
		fmt.Sprintf("%d nodes", nodes),
		fmt.Sprintf("%d edges", edges),
	}
	line := "  " + StyleDim.Render(strings.Join(parts, " · "))
	if failures > 0 {
		line += StyleDim.Render(" · ") + StyleWarning.Render(fmt.Sprintf("%d unresolved", failures))
	}
	fmt.Println(line)
}

// =============================================================================
// Node Output
// =============================================================================

// writeNode writes a human-readable description of n to w.
func writeNode(w io.Writer, n graph.Node) {
	fmt.Fprintln(w, styleKey.Render("id")+" "+StyleValue.Render(n.ID.String()))
	fmt.Fprintln(w, styleKey.Render("kind")+" "+kindStyle(n.Kind).Render(string(n.Kind)))
	fmt.Fprintln(w, styleKey.Render("label")+" "+StyleValue.Render(n.Label))
	if n.Text != "" {
		fmt.Fprintln(w, styleKey.Render("text"))
		for _, line := range strings.Split(strings.TrimRight(n.Text, "\n"), "\n") {
			fmt.Fprintln(w, "  "+StyleDim.Render(line))
		}
	}
	if len(n.Edges) == 0 {
		return
	}
	fmt.Fprintln(w, styleKey.Render("edges"))
	for _, e := range n.Edges {
		fmt.Fprintln(w, "  "+formatEdge(e))
	}
}

// formatEdge renders one edge as "label → target", dimmed when hidden.
func formatEdge(e graph.Edge) string {
	line := e.Label + " " + iconArrow + " " + e.Target.String()
	if !e.Visible {
		return styleHidden.Render(line + " (hidden)")
	}
	return line
}
