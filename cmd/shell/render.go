package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/signaldeck/shell-engine/core/render"
)

var (
	// errorStyle for error messages
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// headerStyle for table headers and card titles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("81"))

	// stateStyle for entity state values
	stateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	// boxStyle for entity cards with rounded border
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	// badgeStyle for short labels
	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	// agentStyle for assistant attribution lines
	agentStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("140"))
)

// Sparkline glyphs from lowest to highest.
var sparkGlyphs = []rune("▁▂▃▄▅▆▇█")

// Render draws a spec as styled terminal text.
func Render(spec render.Spec) string {
	switch s := spec.(type) {
	case render.Text:
		return s.Content
	case render.Error:
		return errorStyle.Render("error: " + s.Message)
	case render.Help:
		return s.Content
	case render.Summary:
		return dimStyle.Render(s.Content)
	case render.Badge:
		return badgeStyle.Render(s.Label)
	case render.Copyable:
		if s.Label != nil {
			return dimStyle.Render("["+*s.Label+"]") + "\n" + s.Content
		}
		return s.Content
	case render.VStack:
		return renderStack(s.Children, "\n")
	case render.HStack:
		return renderStack(s.Children, "  ")
	case render.Table:
		return renderTable(s)
	case render.EntityCard:
		return renderEntityCard(s)
	case render.KeyValue:
		return renderKeyValue(s)
	case render.Assistant:
		return renderAssistant(s)
	case render.Sparkline:
		return renderSparkline(s)
	case render.Timeline:
		return renderTimeline(s)
	case render.Logbook:
		return renderLogbook(s)
	case render.TraceList:
		return renderTraceList(s)
	case render.CalendarEvents:
		return renderCalendar(s)
	case render.ECharts:
		title := "chart"
		if s.Title != nil {
			title = *s.Title
		}
		return dimStyle.Render(fmt.Sprintf("[%s: interactive chart, open in a graphical frontend]", title))
	case render.HostCall:
		return dimStyle.Render(fmt.Sprintf("[host call %s → %s]", s.CallID, s.Method))
	default:
		return fmt.Sprintf("%v", spec)
	}
}

func renderStack(children []render.Spec, sep string) string {
	parts := make([]string, 0, len(children))
	for _, child := range children {
		if out := Render(child); out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, sep)
}

func renderTable(t render.Table) string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	pad := func(s string, w int) string {
		return s + strings.Repeat(" ", w-lipgloss.Width(s))
	}

	var b strings.Builder
	cells := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		cells[i] = pad(h, widths[i])
	}
	b.WriteString(headerStyle.Render(strings.Join(cells, "  ")))
	b.WriteByte('\n')

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	b.WriteString(dimStyle.Render(strings.Join(rule, "──")))

	for _, row := range t.Rows {
		b.WriteByte('\n')
		line := make([]string, 0, len(row))
		for i, cell := range row {
			if i < len(widths) {
				line = append(line, pad(cell, widths[i]))
			}
		}
		b.WriteString(strings.Join(line, "  "))
	}
	return b.String()
}

func renderEntityCard(c render.EntityCard) string {
	state := c.State
	if c.Unit != nil {
		state += " " + *c.Unit
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s\n", c.Icon, headerStyle.Render(c.Name), dimStyle.Render(c.EntityID))
	fmt.Fprintf(&b, "%s  %s", stateStyle.Render(state), dimStyle.Render("changed "+c.LastChanged))
	for _, kv := range c.Attributes {
		fmt.Fprintf(&b, "\n%s %s", dimStyle.Render(kv[0]+":"), kv[1])
	}
	return boxStyle.Render(b.String())
}

func renderKeyValue(kv render.KeyValue) string {
	var b strings.Builder
	if kv.Title != nil {
		b.WriteString(headerStyle.Render(*kv.Title))
	}
	width := 0
	for _, p := range kv.Pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range kv.Pairs {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  %s%s  %s", dimStyle.Render(p[0]), strings.Repeat(" ", width-len(p[0])), p[1])
	}
	return b.String()
}

func renderAssistant(a render.Assistant) string {
	var b strings.Builder
	b.WriteString(a.Response)
	b.WriteByte('\n')
	b.WriteString(agentStyle.Render("— " + a.Agent))
	for _, snippet := range a.Snippets {
		b.WriteByte('\n')
		b.WriteString(dimStyle.Render("runnable: ") + snippet)
	}
	return b.String()
}

func renderSparkline(s render.Sparkline) string {
	if len(s.Points) == 0 {
		return dimStyle.Render(s.Name + ": no data")
	}

	span := s.Max - s.Min
	glyphs := make([]rune, len(s.Points))
	for i, p := range s.Points {
		level := 0
		if span > 0 {
			level = int((p[1] - s.Min) / span * float64(len(sparkGlyphs)-1))
		}
		glyphs[i] = sparkGlyphs[level]
	}

	unit := ""
	if s.Unit != nil {
		unit = " " + *s.Unit
	}
	return fmt.Sprintf("%s %s  %s",
		headerStyle.Render(s.Name),
		string(glyphs),
		dimStyle.Render(fmt.Sprintf("min %.4g  max %.4g  now %.4g%s", s.Min, s.Max, s.Current, unit)))
}

func renderTimeline(t render.Timeline) string {
	const width = 40
	if len(t.Segments) == 0 {
		return dimStyle.Render(t.Name + ": no history")
	}
	window := t.EndTime - t.StartTime

	var bar strings.Builder
	for _, seg := range t.Segments {
		cells := 1
		if window > 0 {
			cells = int((seg.End - seg.Start) / window * width)
			if cells < 1 {
				cells = 1
			}
		}
		bar.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(seg.Color)).
			Render(strings.Repeat("█", cells)))
	}

	last := t.Segments[len(t.Segments)-1]
	return fmt.Sprintf("%s %s %s",
		headerStyle.Render(t.Name), bar.String(), dimStyle.Render(last.State))
}

func renderLogbook(l render.Logbook) string {
	var b strings.Builder
	for i, entry := range l.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %s", dimStyle.Render(entry.When), entry.Name)
		if entry.State != nil {
			fmt.Fprintf(&b, " → %s", stateStyle.Render(*entry.State))
		}
		if entry.Message != nil {
			fmt.Fprintf(&b, " %s", *entry.Message)
		}
		if entry.ContextUser != nil {
			fmt.Fprintf(&b, " %s", dimStyle.Render("by "+*entry.ContextUser))
		}
	}
	return b.String()
}

func renderTraceList(tl render.TraceList) string {
	var b strings.Builder
	for i, entry := range tl.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %s  %s", dimStyle.Render(entry.Start), entry.RunID, entry.State)
		if entry.Error != nil {
			fmt.Fprintf(&b, "  %s", errorStyle.Render(*entry.Error))
		}
	}
	return b.String()
}

func renderCalendar(c render.CalendarEvents) string {
	var b strings.Builder
	for i, ev := range c.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		when := ""
		if ev.Start != nil {
			when = *ev.Start
		}
		fmt.Fprintf(&b, "%s  %s", dimStyle.Render(when), ev.Summary)
		if ev.Location != nil {
			fmt.Fprintf(&b, "  %s", dimStyle.Render("@ "+*ev.Location))
		}
	}
	return b.String()
}
