package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// fixtureHost answers host calls from a canned smart-home dataset so the
// console works without a live backend. Each handler returns the JSON a
// real host would send back for that method.
type fixtureHost struct {
	now      time.Time
	entities []map[string]any
}

func newFixtureHost() *fixtureHost {
	now := time.Now().UTC().Truncate(time.Minute)
	ts := func(ago time.Duration) string {
		return now.Add(-ago).Format(time.RFC3339)
	}

	return &fixtureHost{
		now: now,
		entities: []map[string]any{
			{
				"entity_id":    "light.kitchen",
				"state":        "on",
				"last_changed": ts(18 * time.Minute),
				"attributes": map[string]any{
					"friendly_name": "Kitchen Light",
					"brightness":    254,
					"color_temp":    370,
				},
			},
			{
				"entity_id":    "light.bedroom",
				"state":        "off",
				"last_changed": ts(7 * time.Hour),
				"attributes": map[string]any{
					"friendly_name": "Bedroom Light",
				},
			},
			{
				"entity_id":    "sensor.kitchen_temp",
				"state":        "21.5",
				"last_changed": ts(3 * time.Minute),
				"attributes": map[string]any{
					"friendly_name":       "Kitchen Temperature",
					"unit_of_measurement": "°C",
					"device_class":        "temperature",
				},
			},
			{
				"entity_id":    "sensor.power_usage",
				"state":        "412",
				"last_changed": ts(1 * time.Minute),
				"attributes": map[string]any{
					"friendly_name":       "Power Usage",
					"unit_of_measurement": "W",
					"device_class":        "power",
				},
			},
			{
				"entity_id":    "switch.heater",
				"state":        "off",
				"last_changed": ts(2 * time.Hour),
				"attributes": map[string]any{
					"friendly_name": "Heater",
				},
			},
			{
				"entity_id":    "binary_sensor.front_door",
				"state":        "off",
				"last_changed": ts(40 * time.Minute),
				"attributes": map[string]any{
					"friendly_name": "Front Door",
					"device_class":  "door",
				},
			},
			{
				"entity_id":    "climate.living_room",
				"state":        "heat",
				"last_changed": ts(5 * time.Hour),
				"attributes": map[string]any{
					"friendly_name":       "Living Room Thermostat",
					"current_temperature": 20.8,
					"temperature":         21.0,
					"hvac_action":         "idle",
				},
			},
			{
				"entity_id":    "automation.morning_lights",
				"state":        "on",
				"last_changed": ts(26 * time.Hour),
				"attributes": map[string]any{
					"friendly_name":  "Morning Lights",
					"last_triggered": ts(9 * time.Hour),
				},
			},
			{
				"entity_id":    "person.alex",
				"state":        "home",
				"last_changed": ts(90 * time.Minute),
				"attributes": map[string]any{
					"friendly_name": "Alex",
				},
			},
			{
				"entity_id":    "sun.sun",
				"state":        "above_horizon",
				"last_changed": ts(6 * time.Hour),
				"attributes": map[string]any{
					"friendly_name": "Sun",
					"elevation":     34.2,
				},
			},
		},
	}
}

// Fulfil answers one host call with a JSON response body.
func (h *fixtureHost) Fulfil(method string, params map[string]any) string {
	var body any
	switch method {
	case "get_state":
		body = h.getState(params)
	case "get_states":
		body = h.getStates(params)
	case "find_entities":
		body = h.findEntities(params)
	case "get_history":
		body = h.getHistory(params)
	case "get_statistics":
		body = h.getStatistics(params)
	case "get_logbook":
		body = h.getLogbook(params)
	case "get_services":
		body = fixtureServices
	case "get_datetime":
		body = h.getDatetime()
	case "get_trace", "list_traces":
		body = h.getTraces()
	case "get_diff":
		body = map[string]any{
			"__diff":   true,
			"entity_a": h.lookup(str(params, "entity_a")),
			"entity_b": h.lookup(str(params, "entity_b")),
		}
	case "conversation_process":
		body = map[string]any{
			"__conversation": true,
			"response":       fixtureAnswer(str(params, "text")),
			"agent_id":       "fixture",
		}
	case "call_service":
		body = map[string]any{"success": true}
	case "get_areas":
		body = []any{
			map[string]any{"area_id": "kitchen", "name": "Kitchen"},
			map[string]any{"area_id": "bedroom", "name": "Bedroom"},
			map[string]any{"area_id": "living_room", "name": "Living Room"},
		}
	case "get_area_entities":
		area := str(params, "area")
		body = map[string]any{
			"area":     area,
			"entities": h.findByPrefix(area),
		}
	case "render_template":
		body = map[string]any{"result": "rendered: " + str(params, "template")}
	case "get_devices":
		body = []any{
			map[string]any{"id": "dev-kitchen-1", "name": "Kitchen Dimmer", "manufacturer": "Shelly", "model": "Dimmer 2"},
			map[string]any{"id": "dev-climate-1", "name": "Living Room Thermostat", "manufacturer": "Ecobee", "model": "SmartThermostat"},
		}
	case "get_entity_entry":
		body = map[string]any{
			"entity_id": str(params, "entity_id"),
			"platform":  "fixture",
			"disabled":  false,
		}
	case "get_calendar_events":
		body = []any{
			map[string]any{
				"summary":  "Team standup",
				"start":    h.now.Add(2 * time.Hour).Format(time.RFC3339),
				"end":      h.now.Add(150 * time.Minute).Format(time.RFC3339),
				"location": "office",
				"all_day":  false,
			},
		}
	case "check_config":
		body = map[string]any{"result": "valid", "errors": nil}
	case "get_error_log":
		body = map[string]any{"log": "no recent errors"}
	default:
		body = map[string]any{"error": fmt.Sprintf("unsupported method: %s", method)}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

func (h *fixtureHost) lookup(entityID string) map[string]any {
	for _, e := range h.entities {
		if e["entity_id"] == entityID {
			return e
		}
	}
	return map[string]any{
		"entity_id":    entityID,
		"state":        "unavailable",
		"last_changed": h.now.Format(time.RFC3339),
		"attributes":   map[string]any{},
	}
}

func (h *fixtureHost) getState(params map[string]any) any {
	entity := h.lookup(str(params, "entity_id"))
	if b, _ := params["attrs_only"].(bool); b {
		return map[string]any{"__attrs_only": true, "entity": entity}
	}
	return entity
}

func (h *fixtureHost) getStates(params map[string]any) any {
	domain := str(params, "domain")
	out := make([]any, 0, len(h.entities))
	for _, e := range h.entities {
		id, _ := e["entity_id"].(string)
		if domain == "" || strings.HasPrefix(id, domain+".") {
			out = append(out, e)
		}
	}
	return out
}

func (h *fixtureHost) findEntities(params map[string]any) any {
	pattern := strings.ToLower(str(params, "pattern"))
	out := make([]any, 0)
	for _, e := range h.entities {
		id, _ := e["entity_id"].(string)
		attrs, _ := e["attributes"].(map[string]any)
		name, _ := attrs["friendly_name"].(string)
		if strings.Contains(strings.ToLower(id), pattern) ||
			strings.Contains(strings.ToLower(name), pattern) {
			out = append(out, e)
		}
	}
	return out
}

func (h *fixtureHost) findByPrefix(area string) []any {
	out := make([]any, 0)
	for _, e := range h.entities {
		id, _ := e["entity_id"].(string)
		if strings.Contains(id, area) {
			out = append(out, e)
		}
	}
	return out
}

// getHistory synthesizes a history window: a smooth curve for numeric
// sensors, alternating state spans for everything else.
func (h *fixtureHost) getHistory(params map[string]any) any {
	entityID := str(params, "entity_id")
	hours := 6.0
	if v, ok := params["hours"].(float64); ok && v > 0 {
		hours = v
	} else if v, ok := params["hours"].(int); ok && v > 0 {
		hours = float64(v)
	}

	entity := h.lookup(entityID)
	attrs, _ := entity["attributes"].(map[string]any)
	numeric := strings.HasPrefix(entityID, "sensor.")

	samples := 24
	step := time.Duration(hours * float64(time.Hour) / float64(samples))
	entries := make([]any, 0, samples)
	for i := 0; i < samples; i++ {
		at := h.now.Add(-time.Duration(samples-i) * step)
		state := "off"
		if (i/6)%2 == 1 {
			state = "on"
		}
		if numeric {
			state = fmt.Sprintf("%.1f", 20.0+3.0*math.Sin(float64(i)/4.0))
		}
		entries = append(entries, map[string]any{
			"entity_id":    entityID,
			"state":        state,
			"last_changed": at.Format(time.RFC3339),
			"attributes":   attrs,
		})
	}
	return []any{entries}
}

func (h *fixtureHost) getStatistics(params map[string]any) any {
	entityID := str(params, "entity_id")
	if entityID == "" {
		entityID = "sensor.kitchen_temp"
	}

	buckets := make([]any, 0, 12)
	for i := 0; i < 12; i++ {
		at := h.now.Add(-time.Duration(12-i) * time.Hour)
		mean := 20.0 + 2.5*math.Sin(float64(i)/3.0)
		buckets = append(buckets, map[string]any{
			"start": float64(at.Unix()),
			"mean":  mean,
			"min":   mean - 0.8,
			"max":   mean + 0.8,
		})
	}
	return map[string]any{entityID: buckets}
}

func (h *fixtureHost) getLogbook(params map[string]any) any {
	entityID := str(params, "entity_id")
	stamp := func(ago time.Duration) string {
		return h.now.Add(-ago).Format(time.RFC3339)
	}
	return []any{
		map[string]any{
			"when": stamp(3 * time.Hour), "name": "Kitchen Light",
			"state": "off", "entity_id": entityID,
		},
		map[string]any{
			"when": stamp(18 * time.Minute), "name": "Kitchen Light",
			"state": "on", "entity_id": entityID,
			"context_user": "Alex",
		},
	}
}

func (h *fixtureHost) getDatetime() any {
	return map[string]any{
		"date":        h.now.Format("2006-01-02"),
		"time":        h.now.Format("15:04:05"),
		"day_of_week": h.now.Weekday().String(),
		"timezone":    "UTC",
		"iso":         h.now.Format(time.RFC3339),
	}
}

func (h *fixtureHost) getTraces() any {
	stamp := func(ago time.Duration) string {
		return h.now.Add(-ago).Format(time.RFC3339)
	}
	return []any{
		map[string]any{
			"run_id": "run-41", "automation": "Morning Lights",
			"state": "stopped", "start": stamp(9 * time.Hour),
			"finish": stamp(9*time.Hour - 2*time.Second),
			"trigger": "time", "last_step": "action/0",
		},
		map[string]any{
			"run_id": "run-40", "automation": "Morning Lights",
			"state": "stopped", "start": stamp(33 * time.Hour),
			"finish": stamp(33*time.Hour - 2*time.Second),
			"trigger": "time", "last_step": "action/0",
		},
	}
}

var fixtureServices = []any{
	map[string]any{"domain": "light", "service": "turn_on", "name": "Turn on", "fields": []any{"entity_id", "brightness"}},
	map[string]any{"domain": "light", "service": "turn_off", "name": "Turn off", "fields": []any{"entity_id"}},
	map[string]any{"domain": "switch", "service": "toggle", "name": "Toggle", "fields": []any{"entity_id"}},
	map[string]any{"domain": "climate", "service": "set_temperature", "name": "Set temperature", "fields": []any{"entity_id", "temperature"}},
}

func fixtureAnswer(question string) string {
	return fmt.Sprintf("I can't reach a live assistant from the fixture host, "+
		"but you asked: %q. Try :ls or hist('sensor.kitchen_temp') for real data views.", question)
}

func str(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}
