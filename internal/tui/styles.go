package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#0B6E4F", Dark: "#2EC4B6"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF9F1C"}
	colorText    = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#D0D0D0"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorTabBg   = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#263238"}
	colorWarn    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

	brandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			PaddingLeft(1)

	greetingStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	sourceBadgeStyle = lipgloss.NewStyle().
				Foreground(colorWarn).
				Italic(true)

	searchPromptStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1).
			Bold(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorTabBg).
				Padding(0, 1)

	featuredStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	featuredActiveStyle = featuredStyle.
				BorderForeground(colorAccent)

	featuredTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	itemTitleStyle = lipgloss.NewStyle().
			Foreground(colorText)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	summaryStyle = lipgloss.NewStyle().
			Foreground(colorText)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			PaddingLeft(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)
)
