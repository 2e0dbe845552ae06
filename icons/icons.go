// Package icons maps entity domains, device classes, and states to Nerd Font
// glyphs and semantic colors. Rendering requires a Nerd Font (e.g. Iosevka
// Nerd Font).
package icons

import (
	"strconv"
	"strings"
)

// EntityIcon picks a glyph for an entity, preferring the device-class icon
// over the domain fallback.
func EntityIcon(entityID, deviceClass, state string) string {
	domain, _, _ := strings.Cut(entityID, ".")
	if deviceClass != "" {
		if icon, ok := deviceClassIcon(domain, deviceClass, state); ok {
			return icon
		}
	}
	return domainIcon(domain, state)
}

func deviceClassIcon(domain, deviceClass, state string) (string, bool) {
	on := state == "on"
	switch domain + "/" + deviceClass {
	case "binary_sensor/door":
		return pick(on, "\U000f0ddb", "\U000f0dda"), true
	case "binary_sensor/window":
		return pick(on, "\U000f15d4", "\U000f15d3"), true
	case "binary_sensor/motion":
		return pick(on, "\U000f04b2", "\U000f04b3"), true
	case "binary_sensor/occupancy":
		return pick(on, "\U000f105d", "\U000f105e"), true
	case "binary_sensor/lock":
		return pick(on, "\U000f033f", "\U000f0341"), true
	case "binary_sensor/moisture":
		return "\U000f058c", true
	case "binary_sensor/smoke":
		return "\U000f05d0", true
	case "binary_sensor/gas":
		return "\U000f15dd", true
	case "binary_sensor/battery":
		return "\U000f0079", true
	case "binary_sensor/connectivity":
		return pick(on, "\U000f05a9", "\U000f05aa"), true
	case "binary_sensor/plug":
		return pick(on, "\U000f06a5", "\U000f06a6"), true
	case "binary_sensor/presence":
		return pick(on, "\U000f02d1", "\U000f02d0"), true
	case "binary_sensor/problem":
		return pick(on, "\U000f0028", "\U000f012c"), true
	case "binary_sensor/safety":
		return "\U000f04bf", true
	case "binary_sensor/vibration":
		return "\U000f0f83", true
	case "sensor/temperature":
		return "\U000f050f", true
	case "sensor/humidity":
		return "\U000f058c", true
	case "sensor/pressure":
		return "\U000f001d", true
	case "sensor/battery":
		return "\U000f0079", true
	case "sensor/power":
		return "\U000f06a5", true
	case "sensor/energy":
		return "\U000f140b", true
	case "sensor/voltage":
		return "\U000f12a6", true
	case "sensor/current":
		return "\U000f12a7", true
	case "sensor/illuminance":
		return "\U000f00df", true
	case "sensor/co2", "sensor/carbon_dioxide":
		return "\U000f07e4", true
	case "sensor/pm25", "sensor/pm10":
		return "\U000f00de", true
	case "sensor/signal_strength":
		return "\U000f05a9", true
	case "sensor/timestamp":
		return "\U000f0954", true
	case "sensor/duration":
		return "\U000f13ab", true
	case "sensor/speed", "sensor/wind_speed":
		return "\U000f059d", true
	case "sensor/weight", "sensor/mass":
		return "\U000f05b3", true
	case "sensor/distance":
		return "\U000f0cde", true
	case "sensor/monetary":
		return "\U000f05f9", true
	case "cover/garage":
		return pick(state == "open", "\U000f0fd8", "\U000f0fd7"), true
	case "cover/blind", "cover/shade", "cover/curtain":
		return "\U000f0997", true
	}
	return "", false
}

func domainIcon(domain, state string) string {
	on := state == "on"
	switch domain {
	case "light":
		return pick(on, "\U000f0335", "\U000f0336")
	case "switch":
		return pick(on, "\U000f0521", "\U000f0522")
	case "binary_sensor":
		return pick(on, "\U000f043e", "\U000f043d")
	case "sensor":
		return "\U000f05e0"
	case "climate":
		return "\U000f00ee"
	case "fan":
		return "\U000f0210"
	case "cover":
		return "\U000f0997"
	case "lock":
		return pick(state == "locked", "\U000f0341", "\U000f033f")
	case "camera":
		return "\U000f0100"
	case "media_player":
		return "\U000f057e"
	case "vacuum":
		return "\U000f086a"
	case "automation":
		return "\U000f006a"
	case "script":
		return "\U000f0bc1"
	case "scene":
		return "\U000f0e09"
	case "input_boolean":
		return pick(on, "\U000f0a1a", "\U000f0a19")
	case "input_number", "number":
		return "\U000f03a0"
	case "input_select", "select":
		return "\U000f0493"
	case "input_text":
		return "\U000f05ca"
	case "input_datetime":
		return "\U000f00f0"
	case "timer":
		return "\U000f13ab"
	case "counter":
		return "\U000f0199"
	case "person":
		return "\U000f02d1"
	case "zone":
		return "\U000f018b"
	case "sun":
		return "\U000f05a8"
	case "weather":
		return "\U000f0590"
	case "device_tracker":
		return "\U000f0352"
	case "group":
		return "\U000f02fb"
	case "button":
		return "\U000f01a0"
	case "update":
		return "\U000f06b0"
	case "tts", "stt":
		return "\U000f05d5"
	case "alarm_control_panel":
		return "\U000f0026"
	case "remote":
		return "\U000f0454"
	case "water_heater", "humidifier":
		return "\U000f058c"
	case "calendar":
		return "\U000f00ed"
	case "todo":
		return "\U000f0132"
	case "image":
		return "\U000f02e9"
	case "notify":
		return "\U000f009e"
	default:
		return "\U000f0626"
	}
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// StateIndicator returns a dot character for a state.
func StateIndicator(state string) string {
	switch state {
	case "on", "home", "open", "unlocked", "playing", "active", "heat", "cool":
		return "●"
	case "off", "away", "closed", "locked", "idle", "paused", "standby":
		return "○"
	case "unavailable", "unknown":
		return "◌"
	default:
		return "◦"
	}
}

// StateColor maps a state to a semantic color token the renderer resolves.
func StateColor(state string) string {
	switch state {
	case "on", "home", "active", "locked", "disarmed", "above_horizon",
		"heating", "heat", "detected", "connected":
		return "success"
	case "off", "closed", "docked", "below_horizon", "clear", "disconnected":
		return "dim"
	case "open", "opening", "idle", "standby", "paused",
		"armed_home", "armed_away", "armed_night", "dry", "fan_only",
		"returning", "charging", "discharging", "cooling", "cool", "auto":
		return "warning"
	case "playing", "away", "not_home":
		return "accent"
	case "unavailable", "unknown", "unlocked", "unlocking",
		"jammed", "problem", "triggered", "pending":
		return "error"
	}
	if _, err := strconv.ParseFloat(state, 64); err == nil {
		return "accent"
	}
	return "dim"
}

// TimelineColor maps a state to the hex color of its timeline segment.
func TimelineColor(state string) string {
	switch state {
	case "on", "home", "open", "playing", "active":
		return "#44b556"
	case "off", "not_home", "closed", "idle", "paused", "standby":
		return "#969696"
	case "unavailable":
		return "#c74848"
	case "unknown":
		return "#606060"
	default:
		return "#2196f3"
	}
}
