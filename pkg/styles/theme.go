// Package styles provides centralized lipgloss style and color definitions
// for terminal output.
//
// Colors use lipgloss.AdaptiveColor so output stays readable on both light
// and dark terminal backgrounds: light variants are darker and more
// saturated, dark variants follow the Dracula palette.
package styles

import "github.com/charmbracelet/lipgloss"

// Adaptive colors that work well in both light and dark terminal themes.
var (
	// ColorError is used for error messages and critical issues.
	ColorError = lipgloss.AdaptiveColor{
		Light: "#D73737",
		Dark:  "#FF5555",
	}

	// ColorWarning is used for warning messages and cautionary information.
	ColorWarning = lipgloss.AdaptiveColor{
		Light: "#E67E22",
		Dark:  "#FFB86C",
	}

	// ColorSuccess is used for success messages and confirmations.
	ColorSuccess = lipgloss.AdaptiveColor{
		Light: "#27AE60",
		Dark:  "#50FA7B",
	}

	// ColorInfo is used for informational messages.
	ColorInfo = lipgloss.AdaptiveColor{
		Light: "#2980B9",
		Dark:  "#8BE9FD",
	}

	// ColorPurple is used for file paths and highlighted values.
	ColorPurple = lipgloss.AdaptiveColor{
		Light: "#8E44AD",
		Dark:  "#BD93F9",
	}

	// ColorYellow is used for progress messages and attention-grabbing content.
	ColorYellow = lipgloss.AdaptiveColor{
		Light: "#B7950B",
		Dark:  "#F1FA8C",
	}

	// ColorComment is used for secondary/muted information.
	ColorComment = lipgloss.AdaptiveColor{
		Light: "#6C7A89",
		Dark:  "#6272A4",
	}

	// ColorForeground is used for primary text content.
	ColorForeground = lipgloss.AdaptiveColor{
		Light: "#2C3E50",
		Dark:  "#F8F8F2",
	}

	// ColorBorder is used for table borders and dividers.
	ColorBorder = lipgloss.AdaptiveColor{
		Light: "#BDC3C7",
		Dark:  "#44475A",
	}

	// ColorTableAltRow is used for alternating table row backgrounds.
	ColorTableAltRow = lipgloss.AdaptiveColor{
		Light: "#F5F5F5",
		Dark:  "#1A1A1A",
	}
)

// RoundedBorder is the primary border style for tables and boxes.
var RoundedBorder = lipgloss.RoundedBorder()

// Pre-configured styles for common message kinds.
var (
	Error   = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	Warning = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
	Success = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	Info    = lipgloss.NewStyle().Bold(true).Foreground(ColorInfo)

	// FilePath styles file and directory locations.
	FilePath = lipgloss.NewStyle().Bold(true).Foreground(ColorPurple)

	// Progress styles long-running activity messages.
	Progress = lipgloss.NewStyle().Foreground(ColorYellow)

	// Verbose styles debugging detail lines.
	Verbose = lipgloss.NewStyle().Italic(true).Foreground(ColorComment)
)

// Table styles.
var (
	TableHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorComment)
	TableCell   = lipgloss.NewStyle().Foreground(ColorForeground)
	TableTotal  = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	TableTitle  = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	TableBorder = lipgloss.NewStyle().Foreground(ColorBorder)
)

// categoryPalette holds the rotation of colors assigned to failure
// categories in charts. The order is stable so a category keeps its color
// across charts within one invocation.
var categoryPalette = []lipgloss.AdaptiveColor{
	ColorError,
	ColorInfo,
	ColorWarning,
	ColorSuccess,
	ColorPurple,
	ColorYellow,
}

// CategoryStyle returns the chart style for the i-th category (by sorted
// position). Categories beyond the palette wrap around.
func CategoryStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(categoryPalette[i%len(categoryPalette)])
}
