package views

import (
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/phonebook/internal/utils"
)

func colour(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

func headerStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(colour(utils.Colours.Text)).
		Background(colour(utils.Colours.Surface0)).
		Padding(0, 1).
		Width(width)
}

func mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colour(utils.Colours.Overlay1))
}

func errorBanner() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(colour(utils.Colours.Red)).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colour(utils.Colours.Red))
}

func successBanner() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(colour(utils.Colours.Green)).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colour(utils.Colours.Green))
}

func panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colour(utils.Colours.Surface1)).
		Padding(0, 1)
}

func helpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(colour(utils.Colours.Overlay0)).
		Padding(1, 0, 0, 0)
}
