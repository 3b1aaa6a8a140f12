package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, hidden children
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
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

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
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

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	// Tree browser.
	styleCursor  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleFolder  = lipgloss.NewStyle().Foreground(colorWhite)
	styleLeaf    = lipgloss.NewStyle().Foreground(colorGray)
	styleHidden  = lipgloss.NewStyle().Foreground(colorYellow)
	styleGuide   = lipgloss.NewStyle().Foreground(colorDim)
	styleStatus  = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	styleProblem = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"

	iconOpen   = "▾"
	iconClosed = "▸"
	iconLeaf   = "·"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Stats Display
// =============================================================================

// graphStats summarizes a published graph for status lines.
type graphStats struct {
	Nodes  int
	Edges  int
	Hidden int // nodes with collapsed children
	Cached bool
}

// String joins the non-zero counts with a dot separator.
func (s graphStats) String() string {
	var parts []string
	if s.Nodes > 0 {
		parts = append(parts, fmt.Sprintf("%d nodes", s.Nodes))
	}
	if s.Edges > 0 {
		parts = append(parts, fmt.Sprintf("%d edges", s.Edges))
	}
	if s.Hidden > 0 {
		parts = append(parts, fmt.Sprintf("%d collapsed", s.Hidden))
	}
	return strings.Join(parts, " · ")
}

// printStats prints graph statistics on a single line.
func printStats(s graphStats) {
	status, statusStyle := iconFresh, styleComputed
	if s.Cached {
		status, statusStyle = iconCached, styleCached
	}
	line := s.String()
	if line != "" {
		line += " · "
	}
	fmt.Println("  " + StyleDim.Render(line) + statusStyle.Render(status))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
