package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/utafrali/ReviewSentiment/internal/domain"
)

var (
	colorPositive = lipgloss.Color("#8BC34A")
	colorNegative = lipgloss.Color("#e53935")
	colorNeutral  = lipgloss.Color("#9E9E9E")
	colorTitle    = lipgloss.Color("#101F38")
	colorMuted    = lipgloss.Color("#6B7280")
	colorWarning  = lipgloss.Color("#FFA726")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPositive)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorNegative)
)

func sentimentStyle(s domain.Sentiment) lipgloss.Style {
	switch s {
	case domain.SentimentPositive:
		return lipgloss.NewStyle().Foreground(colorPositive)
	case domain.SentimentNegative:
		return lipgloss.NewStyle().Foreground(colorNegative)
	default:
		return lipgloss.NewStyle().Foreground(colorNeutral)
	}
}
