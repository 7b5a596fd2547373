package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the loom TUI style tokens.
type Theme struct {
	Name string

	Header    lipgloss.Style
	Footer    lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Selected  lipgloss.Style
	Separator lipgloss.Style
	Warning   lipgloss.Style

	ActivePane   lipgloss.Style
	InactivePane lipgloss.Style
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

var DefaultTheme = Theme{
	Name:      "default",
	Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("24")).Padding(0, 1),
	Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),
	Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("238")),
	Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("96")),
	Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),

	ActivePane:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("39")),
	InactivePane: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
}

var HighContrastTheme = Theme{
	Name:      "high-contrast",
	Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("15")).Padding(0, 1),
	Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Padding(0, 1),
	Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	Accent:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("15")),
	Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	Warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),

	ActivePane:   lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("15")),
	InactivePane: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("8")),
}

func themeByName(name string) Theme {
	if theme, ok := Themes[name]; ok {
		return theme
	}
	return DefaultTheme
}
