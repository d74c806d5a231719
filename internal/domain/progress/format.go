package progress

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const barWidth = 30

// OvertimeNotice is shown instead of a percentage once the estimate is exceeded.
const OvertimeNotice = "the conversion is taking too long"

// Format renders a snapshot as a single status line, e.g.
//
//	[#########.....................] 30%  03:00 / 10:00  Leapp Installation: install leapp
func Format(s Snapshot) string {
	var b strings.Builder

	switch {
	case s.Overtime():
		fmt.Fprintf(&b, "%s  %s / %s  %s", bar(100), clock(s.Elapsed), clock(s.Total), OvertimeNotice)
	case s.Percent() >= 0:
		p := s.Percent()
		fmt.Fprintf(&b, "%s %3d%%  %s / %s", bar(p), p, clock(s.Elapsed), clock(s.Total))
	default:
		fmt.Fprintf(&b, "elapsed %s", clock(s.Elapsed))
	}

	if s.Stage != "" {
		b.WriteString("  ")
		b.WriteString(cases.Title(language.English).String(s.Stage))
		if s.Action != "" {
			b.WriteString(": ")
			b.WriteString(s.Action)
		}
	}

	return b.String()
}

func bar(percent int) string {
	filled := percent * barWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

// clock renders d as mm:ss, or hh:mm:ss past an hour.
func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
