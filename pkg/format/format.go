package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// USD renders a dollar amount the way the dashboard cards do: compact
// suffixes above 1k, comma-grouped cents below.
func USD(v float64) string {
	neg := v < 0
	a := math.Abs(v)

	var s string
	switch {
	case a >= 1e12:
		s = fmt.Sprintf("$%.2fT", a/1e12)
	case a >= 1e9:
		s = fmt.Sprintf("$%.2fB", a/1e9)
	case a >= 1e6:
		s = fmt.Sprintf("$%.2fM", a/1e6)
	case a >= 1e3:
		s = fmt.Sprintf("$%.1fK", a/1e3)
	default:
		s = "$" + humanize.CommafWithDigits(a, 2)
	}

	if neg {
		return "-" + s
	}
	return s
}

// Compact renders a plain number with K/M/B/T suffixes.
func Compact(v float64) string {
	neg := v < 0
	a := math.Abs(v)

	var s string
	switch {
	case a >= 1e12:
		s = fmt.Sprintf("%.2fT", a/1e12)
	case a >= 1e9:
		s = fmt.Sprintf("%.2fB", a/1e9)
	case a >= 1e6:
		s = fmt.Sprintf("%.2fM", a/1e6)
	case a >= 1e3:
		s = fmt.Sprintf("%.1fK", a/1e3)
	default:
		s = humanize.CommafWithDigits(a, 2)
	}

	if neg {
		return "-" + s
	}
	return s
}

// Percent renders a signed percentage with one decimal place.
func Percent(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.1f%%", v)
	}
	return fmt.Sprintf("%.1f%%", v)
}

// TimeAgo renders a relative timestamp ("3 minutes ago"). Zero times
// render as a dash so empty rows stay readable.
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// ShortAddr shortens a wallet address or tx hash to head…tail form.
// Already-shortened input is returned unchanged.
func ShortAddr(s string) string {
	if len(s) <= 13 || strings.Contains(s, "…") {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}

// Confidence renders a 0..1 confidence as a percentage, clamped.
func Confidence(v float64) string {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}
