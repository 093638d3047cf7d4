package styles

import "github.com/charmbracelet/lipgloss"

const (
	accent    = lipgloss.Color("62")
	infoColor = lipgloss.Color("39")
	okColor   = lipgloss.Color("42")
	errColor  = lipgloss.Color("196")
	dimColor  = lipgloss.Color("241")
)

func InputStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width - 4)
}

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(dimColor).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(width)
}

func PanelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width - 4)
}

func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("141")).
		Bold(true)
}

func LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(dimColor).
		Width(16)
}

func ValueStyle() lipgloss.Style {
	return lipgloss.NewStyle()
}

func ProgressFillStyle(done bool) lipgloss.Style {
	if done {
		return lipgloss.NewStyle().Foreground(okColor)
	}
	return lipgloss.NewStyle().Foreground(infoColor)
}

func ProgressEmptyStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
}

// ProgressTextStyle styles the indicator's info message.
func ProgressTextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(infoColor).
		Padding(0, 1)
}

// ErrorTextStyle styles the indicator in its error phase.
func ErrorTextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(errColor).
		Bold(true).
		Padding(0, 1)
}

func DialogStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(errColor).
		Padding(0, 1).
		Width(width - 4)
}

func ProgramStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("141")).
		Bold(true).
		Padding(0, 2)
}

func InfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Padding(0, 2)
}

func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(errColor).
		Padding(0, 2)
}

func NavigationStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("214")).
		Padding(0, 1).
		MarginLeft(2)
}
