// Package router classifies paused host-data calls. Given the operation name
// and arguments a snippet paused on, it decides whether the call goes to the
// host (and under which wire method and parameters), is resolved locally by
// the engine, or is unknown.
package router

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/signaldeck/shell-engine/core/value"
)

// Kind classifies a routing decision.
type Kind int

const (
	KindUnknown Kind = iota
	KindHost
	KindLocal
)

// Decision is the routing outcome for one paused call. Host decisions carry
// the wire method and parameters; a non-nil Err means the call was
// recognized but its required arguments were missing.
type Decision struct {
	Kind   Kind
	Method string
	Params map[string]any
	Err    error
}

// Ops the engine resolves locally without a host round trip.
var localOps = map[string]bool{
	"show":        true,
	"ago":         true,
	"plot_line":   true,
	"plot_bar":    true,
	"plot_pie":    true,
	"plot_series": true,
}

// Local reports whether op is engine-resolved.
func Local(op string) bool { return localOps[op] }

// Route maps an operation and its arguments to a decision. Optional
// arguments degrade to their defaults when malformed; missing required
// identifiers fail explicitly.
func Route(op string, args []value.Value) Decision {
	if localOps[op] {
		return Decision{Kind: KindLocal}
	}

	host := func(method string, params map[string]any) Decision {
		return Decision{Kind: KindHost, Method: method, Params: params}
	}

	switch op {
	case "state":
		id, err := requiredString(op, "entity_id", args, 0)
		if err != nil {
			return Decision{Kind: KindHost, Err: err}
		}
		return host("get_state", map[string]any{"entity_id": id})
	case "states":
		params := map[string]any{}
		if d, ok := optionalString(args, 0); ok {
			params["domain"] = d
		}
		return host("get_states", params)
	case "history":
		id, err := requiredString(op, "entity_id", args, 0)
		if err != nil {
			return Decision{Kind: KindHost, Err: err}
		}
		return host("get_history", map[string]any{
			"entity_id": id,
			"hours":     Lookback(arg(args, 1), 6),
		})
	case "statistics":
		id, err := requiredString(op, "entity_id", args, 0)
		if err != nil {
			return Decision{Kind: KindHost, Err: err}
		}
		hours := Lookback(arg(args, 1), 24)
		period, ok := optionalString(args, 2)
		if !ok {
			period = autoPeriod(hours)
		}
		return host("get_statistics", map[string]any{
			"entity_id": id,
			"hours":     hours,
			"period":    period,
		})
	case "call_service":
		domain, err := requiredString(op, "domain", args, 0)
		if err != nil {
			return Decision{Kind: KindHost, Err: err}
		}
		service, err := requiredString(op, "service", args, 1)
		if err != nil {
			return Decision{Kind: KindHost, Err: err}
		}
		data := any(map[string]any{})
		if len(args) > 2 {
			data = args[2].JSON()
		}
		return host("call_service", map[string]any{
			"domain":       domain,
			"service":      service,
			"service_data": data,
		})
	case "room":
		area, err := requiredString(op, "area", args, 0)
		if err != nil {
			return Decision{Kind: KindHost, Err: err}
		}
		return host("get_area_entities", map[string]any{"area": area})
	case "rooms":
		return host("get_areas", map[string]any{})
	case "logbook":
		id, err := requiredString(op, "entity_id", args, 0)
		if err != nil {
			return Decision{Kind: KindHost, Err: err}
		}
		return host("get_logbook", map[string]any{
			"entity_id": id,
			"hours":     Lookback(arg(args, 1), 6),
		})
	case "template":
		tpl, err := requiredString(op, "template", args, 0)
		if err != nil {
			return Decision{Kind: KindHost, Err: err}
		}
		return host("render_template", map[string]any{"template": tpl})
	case "traces":
		if id, ok := optionalString(args, 0); ok {
			return host("get_trace", map[string]any{"automation_id": id})
		}
		return host("list_traces", map[string]any{})
	case "devices":
		params := map[string]any{}
		if q, ok := optionalString(args, 0); ok {
			params["query"] = q
		}
		return host("get_devices", params)
	case "entities":
		id, err := requiredString(op, "entity_id", args, 0)
		if err != nil {
			return Decision{Kind: KindHost, Err: err}
		}
		return host("get_entity_entry", map[string]any{"entity_id": id})
	case "events":
		id, err := requiredString(op, "entity_id", args, 0)
		if err != nil {
			return Decision{Kind: KindHost, Err: err}
		}
		days := int64(14)
		switch a := arg(args, 1); a.Kind {
		case value.KindInt, value.KindFloat:
			days, _ = a.AsInt()
		case value.KindStr:
			if d := Lookback(a, 14*24) / 24; d > 0 {
				days = d
			} else {
				days = 1
			}
		}
		return host("get_calendar_events", map[string]any{
			"entity_id": id,
			"days":      days,
		})
	case "check_config":
		return host("check_config", map[string]any{})
	case "error_log":
		return host("get_error_log", map[string]any{})
	case "now":
		return host("get_datetime", map[string]any{})
	case "services":
		params := map[string]any{}
		if d, ok := optionalString(args, 0); ok {
			params["domain"] = d
		}
		return host("get_services", params)
	}
	return Decision{Kind: KindUnknown}
}

// Lookback resolves an hours-like argument: plain numbers are hours, and
// duration strings accept m/h/d/w suffixes ("30m" floors at one hour, "2d"
// is 48, "1w" is 168). Anything unparseable falls back to def.
func Lookback(v value.Value, def int64) int64 {
	switch v.Kind {
	case value.KindInt:
		return v.I
	case value.KindFloat:
		return int64(v.F)
	case value.KindStr:
	default:
		return def
	}

	s := strings.ToLower(strings.TrimSpace(v.S))
	if s == "" {
		return def
	}
	numPart, suffix := s, "h"
	if last := s[len(s)-1]; last >= 'a' && last <= 'z' {
		numPart, suffix = s[:len(s)-1], s[len(s)-1:]
	}
	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return def
	}
	var hours float64
	switch suffix {
	case "m":
		hours = math.Max(num/60, 1)
	case "h":
		hours = num
	case "d":
		hours = num * 24
	case "w":
		hours = num * 168
	default:
		hours = num
	}
	return int64(math.Round(hours))
}

// autoPeriod picks a statistics bucket size for a lookback window.
func autoPeriod(hours int64) string {
	switch {
	case hours <= 6:
		return "5minute"
	case hours <= 72:
		return "hour"
	default:
		return "day"
	}
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Value{}
}

func requiredString(op, name string, args []value.Value, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%s() requires %s", op, name)
	}
	if s, ok := args[i].AsString(); ok {
		if strings.TrimSpace(s) == "" {
			return "", fmt.Errorf("%s() requires %s", op, name)
		}
		return s, nil
	}
	return args[i].String(), nil
}

func optionalString(args []value.Value, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	return args[i].AsString()
}
