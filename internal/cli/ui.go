package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/view"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // male rows, commands
	colorPink   = lipgloss.Color("175") // female rows
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleMale    = lipgloss.NewStyle().Foreground(colorBlue)
	styleFemale  = lipgloss.NewStyle().Foreground(colorPink)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleCursor  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleMarked  = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess  = "✓"
	iconError    = "✗"
	iconWarning  = "!"
	iconInfo     = "›"
	iconArrow    = "→"
	iconFolded   = "▸"
	iconExpanded = "▾"
	iconLeaf     = "·"
	iconSpouse   = "⚭"
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

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// statsLine summarizes a forest on a single dim line.
func statsLine(people, generations, roots int) string {
	parts := []string{
		fmt.Sprintf("%d people", people),
		fmt.Sprintf("%d generations", generations),
		fmt.Sprintf("%d roots", roots),
	}
	return "  " + StyleDim.Render(strings.Join(parts, " · "))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Forest Rows
// =============================================================================

// nameStyle colors a name by sex.
func nameStyle(sex person.Sex) lipgloss.Style {
	switch sex {
	case person.SexMale:
		return styleMale
	case person.SexFemale:
		return styleFemale
	}
	return StyleValue
}

// lifespan formats "(1901-1975)", "(b. 1901)" or "" from raw date strings.
func lifespan(birth, death string) string {
	switch {
	case birth != "" && death != "":
		return fmt.Sprintf("(%s-%s)", birth, death)
	case birth != "":
		return fmt.Sprintf("(b. %s)", birth)
	case death != "":
		return fmt.Sprintf("(d. %s)", death)
	}
	return ""
}

// formatNode renders one visible row: fold marker, indentation by depth,
// the name with lifespan and any spouses shown inline.
func formatNode(n view.Node, styled bool) string {
	marker := iconLeaf
	if n.HasChildren {
		marker = iconExpanded
		if n.Folded {
			marker = iconFolded
		}
	}

	render := func(s lipgloss.Style, v string) string {
		if !styled {
			return v
		}
		return s.Render(v)
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("  ", n.Depth))
	b.WriteString(render(StyleDim, marker))
	b.WriteByte(' ')
	b.WriteString(render(nameStyle(n.Sex), n.Name))
	if span := lifespan(n.Birth, n.Death); span != "" {
		b.WriteByte(' ')
		b.WriteString(render(StyleDim, span))
	}
	b.WriteString(render(StyleDim, fmt.Sprintf(" [%d]", n.ID)))
	for _, sp := range n.Spouses {
		b.WriteString(render(StyleDim, " "+iconSpouse+" "))
		b.WriteString(render(nameStyle(sp.Sex), sp.Name))
	}
	return b.String()
}
