package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are built from CurrentTheme on each call so a theme switch takes
// effect on the next frame.

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Secondary)
}

func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(CurrentTheme.Text).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(CurrentTheme.Muted)
}

func panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Muted).
		Padding(0, 1)
}

func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Width(16)
}

func valueStyle() lipgloss.Style  { return lipgloss.NewStyle().Foreground(CurrentTheme.Text) }
func accentStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true) }
func subtleStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(CurrentTheme.Muted) }
func okStyle() lipgloss.Style     { return lipgloss.NewStyle().Foreground(CurrentTheme.Success) }
func warnStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Bold(true) }
func errStyle() lipgloss.Style    { return lipgloss.NewStyle().Foreground(CurrentTheme.Error).Bold(true) }

func keyHint(key, what string) string {
	return accentStyle().Render(key) + subtleStyle().Render(" "+what+"  ")
}

func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// ProgressBar renders done/total as a bar of the given width.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		return subtleStyle().Render(strings.Repeat("░", width))
	}
	percent := float64(done) / float64(total)
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case percent > 0.8:
		return okStyle().Render(bar)
	case percent > 0.4:
		return warnStyle().Render(bar)
	}
	return accentStyle().Render(bar)
}

// Sparkline renders the last width values with block characters.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return subtleStyle().Render(left + " ◆ " + right)
}
