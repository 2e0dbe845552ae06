// Package render defines the display specs the shell engine emits. A spec is
// a serializable description of output (text, tables, entity cards, charts)
// that a frontend turns into UI. Each variant marshals with a "type" tag so
// receivers can dispatch without knowing the Go types.
package render

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Spec is one renderable unit of shell output.
type Spec interface {
	spec()
}

// KV is a labeled display pair, marshaled as a two-element array.
type KV [2]string

// Point is one time-series sample: timestamp in milliseconds, then value.
type Point [2]float64

// Segment is one colored span of a state timeline.
type Segment struct {
	Start float64
	End   float64
	State string
	Color string
}

// MarshalJSON emits the segment as [start, end, state, color].
func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Start, s.End, s.State, s.Color})
}

// Text is plain console output.
type Text struct {
	Content string `json:"content"`
}

// Error is a recoverable error message.
type Error struct {
	Message string `json:"message"`
}

// Table is a bordered table with a header row.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// HostCall asks the host to perform a data operation and fulfil the call
// later with a JSON response.
type HostCall struct {
	CallID string `json:"call_id"`
	Method string `json:"method"`
	Params any    `json:"params"`
}

// VStack stacks child specs vertically.
type VStack struct {
	Children []Spec `json:"children"`
}

// HStack lays child specs out horizontally.
type HStack struct {
	Children []Spec `json:"children"`
}

// Help is preformatted help text.
type Help struct {
	Content string `json:"content"`
}

// EntityCard is a compact entity display with icon, state, and attributes.
type EntityCard struct {
	EntityID    string  `json:"entity_id"`
	Icon        string  `json:"icon"`
	Name        string  `json:"name"`
	State       string  `json:"state"`
	StateColor  string  `json:"state_color"`
	Unit        *string `json:"unit"`
	Domain      string  `json:"domain"`
	DeviceClass *string `json:"device_class"`
	LastChanged string  `json:"last_changed"`
	Attributes  []KV    `json:"attributes"`
}

// KeyValue is a list of labeled pairs under an optional title.
type KeyValue struct {
	Title *string `json:"title"`
	Pairs []KV    `json:"pairs"`
}

// Badge is a short colored label.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Copyable is text with a copy-to-clipboard affordance.
type Copyable struct {
	Content string  `json:"content"`
	Label   *string `json:"label"`
}

// Summary is a dim info line (counts, timing).
type Summary struct {
	Content string `json:"content"`
}

// Assistant is a conversational response, with any runnable snippets the
// response carried in fenced blocks.
type Assistant struct {
	Response string   `json:"response"`
	Agent    string   `json:"agent"`
	Snippets []string `json:"snippets"`
}

// Sparkline is a small inline chart for a numeric series.
type Sparkline struct {
	EntityID string  `json:"entity_id"`
	Name     string  `json:"name"`
	Unit     *string `json:"unit"`
	Points   []Point `json:"points"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Current  float64 `json:"current"`
}

// Timeline is a colored bar of state changes over a time window.
type Timeline struct {
	EntityID  string    `json:"entity_id"`
	Name      string    `json:"name"`
	Segments  []Segment `json:"segments"`
	StartTime float64   `json:"start_time"`
	EndTime   float64   `json:"end_time"`
}

// Logbook is a vertical list of state-change events with context.
type Logbook struct {
	EntityID string         `json:"entity_id"`
	Entries  []LogbookEntry `json:"entries"`
}

// TraceList shows automation execution traces.
type TraceList struct {
	AutomationID *string      `json:"automation_id"`
	Entries      []TraceEntry `json:"entries"`
}

// ECharts carries a full chart option object for an ECharts renderer.
type ECharts struct {
	Option any     `json:"option"`
	Title  *string `json:"title"`
	Height int     `json:"height"`
}

// CalendarEvents lists upcoming calendar events.
type CalendarEvents struct {
	EntityID string          `json:"entity_id"`
	Entries  []CalendarEvent `json:"entries"`
}

// LogbookEntry is one state-change event.
type LogbookEntry struct {
	When              string  `json:"when"`
	Name              string  `json:"name"`
	State             *string `json:"state"`
	Message           *string `json:"message"`
	EntityID          *string `json:"entity_id"`
	ContextUser       *string `json:"context_user"`
	ContextEvent      *string `json:"context_event"`
	ContextDomain     *string `json:"context_domain"`
	ContextService    *string `json:"context_service"`
	ContextEntity     *string `json:"context_entity"`
	ContextEntityName *string `json:"context_entity_name"`
}

// TraceEntry is one automation execution run.
type TraceEntry struct {
	RunID      string  `json:"run_id"`
	Automation *string `json:"automation"`
	State      string  `json:"state"`
	Start      string  `json:"start"`
	Finish     *string `json:"finish"`
	Trigger    *string `json:"trigger"`
	LastStep   *string `json:"last_step"`
	Execution  *string `json:"execution"`
	Error      *string `json:"error"`
}

// CalendarEvent is one upcoming event.
type CalendarEvent struct {
	Summary     string  `json:"summary"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	AllDay      bool    `json:"all_day"`
}

func (Text) spec()           {}
func (Error) spec()          {}
func (Table) spec()          {}
func (HostCall) spec()       {}
func (VStack) spec()         {}
func (HStack) spec()         {}
func (Help) spec()           {}
func (EntityCard) spec()     {}
func (KeyValue) spec()       {}
func (Badge) spec()          {}
func (Copyable) spec()       {}
func (Summary) spec()        {}
func (Assistant) spec()      {}
func (Sparkline) spec()      {}
func (Timeline) spec()       {}
func (Logbook) spec()        {}
func (TraceList) spec()      {}
func (ECharts) spec()        {}
func (CalendarEvents) spec() {}

// Textf formats a plain text spec.
func Textf(format string, args ...any) Text {
	return Text{Content: fmt.Sprintf(format, args...)}
}

// Errorf formats an error spec.
func Errorf(format string, args ...any) Error {
	return Error{Message: fmt.Sprintf(format, args...)}
}

// Opt wraps a string for the nullable spec fields. Use nil directly for
// absent values.
func Opt(s string) *string { return &s }

// NewSparkline builds a sparkline, deriving min, max, and current from the
// points.
func NewSparkline(entityID, name string, unit *string, points []Point) Sparkline {
	sp := Sparkline{EntityID: entityID, Name: name, Unit: unit, Points: points}
	for i, p := range points {
		if i == 0 || p[1] < sp.Min {
			sp.Min = p[1]
		}
		if i == 0 || p[1] > sp.Max {
			sp.Max = p[1]
		}
	}
	if len(points) > 0 {
		sp.Current = points[len(points)-1][1]
	}
	return sp
}

// NewAssistant builds an assistant spec, extracting runnable snippets from
// the response's fenced blocks.
func NewAssistant(response, agent string) Assistant {
	return Assistant{
		Response: response,
		Agent:    agent,
		Snippets: extractSnippets(response),
	}
}

// NewECharts builds a chart spec. A height of 0 selects the default of 300.
func NewECharts(option any, title *string, height int) ECharts {
	if height == 0 {
		height = 300
	}
	return ECharts{Option: option, Title: title, Height: height}
}

// extractSnippets pulls the contents of ```signal-deck fenced blocks out of
// a markdown response.
func extractSnippets(markdown string) []string {
	var blocks []string
	lines := strings.Split(markdown, "\n")
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed != "```signal-deck" && trimmed != "```signal_deck" {
			continue
		}
		var body []string
		for i++; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "```" {
				break
			}
			body = append(body, lines[i])
		}
		block := strings.TrimSpace(strings.Join(body, "\n"))
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}
