package icons_test

import (
	"testing"

	"github.com/signaldeck/shell-engine/icons"
)

func TestEntityIconDeviceClassPreferred(t *testing.T) {
	withClass := icons.EntityIcon("sensor.living_room_temp", "temperature", "22.5")
	withoutClass := icons.EntityIcon("sensor.living_room_temp", "", "22.5")
	if withClass == withoutClass {
		t.Error("device-class icon should differ from the domain fallback")
	}
}

func TestEntityIconStateVariants(t *testing.T) {
	on := icons.EntityIcon("light.living_room", "", "on")
	off := icons.EntityIcon("light.living_room", "", "off")
	if on == off {
		t.Error("light on/off should use different glyphs")
	}

	doorOpen := icons.EntityIcon("binary_sensor.front_door", "door", "on")
	doorClosed := icons.EntityIcon("binary_sensor.front_door", "door", "off")
	if doorOpen == doorClosed {
		t.Error("door open/closed should use different glyphs")
	}
}

func TestEntityIconUnknownDomainFallback(t *testing.T) {
	a := icons.EntityIcon("foobar.something", "", "")
	b := icons.EntityIcon("bazqux.other", "", "")
	if a != b || a == "" {
		t.Errorf("unknown domains should share the fallback glyph: %q vs %q", a, b)
	}
}

func TestEntityIconUnknownDeviceClassFallsBack(t *testing.T) {
	got := icons.EntityIcon("sensor.thing", "exotic_class", "5")
	want := icons.EntityIcon("sensor.thing", "", "5")
	if got != want {
		t.Errorf("unknown device class should fall back to domain icon")
	}
}

func TestStateIndicator(t *testing.T) {
	cases := map[string]string{
		"on":          "●",
		"home":        "●",
		"off":         "○",
		"locked":      "○",
		"unavailable": "◌",
		"unknown":     "◌",
		"22.5":        "◦",
	}
	for state, want := range cases {
		if got := icons.StateIndicator(state); got != want {
			t.Errorf("StateIndicator(%q) = %q, want %q", state, got, want)
		}
	}
}

func TestStateColor(t *testing.T) {
	cases := map[string]string{
		"on":          "success",
		"off":         "dim",
		"open":        "warning",
		"playing":     "accent",
		"unavailable": "error",
		"22.5":        "accent",
		"cloudy":      "dim",
	}
	for state, want := range cases {
		if got := icons.StateColor(state); got != want {
			t.Errorf("StateColor(%q) = %q, want %q", state, got, want)
		}
	}
}

func TestTimelineColor(t *testing.T) {
	cases := map[string]string{
		"on":          "#44b556",
		"off":         "#969696",
		"unavailable": "#c74848",
		"unknown":     "#606060",
		"22.5":        "#2196f3",
	}
	for state, want := range cases {
		if got := icons.TimelineColor(state); got != want {
			t.Errorf("TimelineColor(%q) = %q, want %q", state, got, want)
		}
	}
}
