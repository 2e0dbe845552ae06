package render_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/signaldeck/shell-engine/core/render"
)

func marshal(t *testing.T, s render.Spec) string {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestTextSerialization(t *testing.T) {
	got := marshal(t, render.Textf("hello %d", 42))
	want := `{"type":"text","content":"hello 42"}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestErrorSerialization(t *testing.T) {
	got := marshal(t, render.Errorf("boom"))
	want := `{"type":"error","message":"boom"}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestHostCallSerialization(t *testing.T) {
	got := marshal(t, render.HostCall{
		CallID: "call_1",
		Method: "get_state",
		Params: map[string]any{"entity_id": "light.kitchen"},
	})
	for _, frag := range []string{`"type":"host_call"`, `"call_id":"call_1"`, `"method":"get_state"`, `"entity_id":"light.kitchen"`} {
		if !strings.Contains(got, frag) {
			t.Errorf("missing %s in %s", frag, got)
		}
	}
}

func TestVStackNestsChildren(t *testing.T) {
	got := marshal(t, render.VStack{Children: []render.Spec{
		render.Textf("a"),
		render.Errorf("b"),
	}})
	for _, frag := range []string{`"type":"vstack"`, `"type":"text"`, `"type":"error"`} {
		if !strings.Contains(got, frag) {
			t.Errorf("missing %s in %s", frag, got)
		}
	}
}

func TestSegmentAsTuple(t *testing.T) {
	got := marshal(t, render.Timeline{
		EntityID:  "binary_sensor.door",
		Name:      "Front Door",
		Segments:  []render.Segment{{Start: 1, End: 2, State: "on", Color: "#ffd54f"}},
		StartTime: 1,
		EndTime:   2,
	})
	if !strings.Contains(got, `[1,2,"on","#ffd54f"]`) {
		t.Errorf("segment not tuple-encoded: %s", got)
	}
	if !strings.Contains(got, `"type":"timeline"`) {
		t.Errorf("missing type tag: %s", got)
	}
}

func TestSparklineDerivedBounds(t *testing.T) {
	sp := render.NewSparkline("sensor.temp", "Temp", render.Opt("C"), []render.Point{
		{1000, 21.5}, {2000, 19.0}, {3000, 22.5},
	})
	if sp.Min != 19.0 || sp.Max != 22.5 || sp.Current != 22.5 {
		t.Errorf("bounds = %v/%v/%v", sp.Min, sp.Max, sp.Current)
	}
	got := marshal(t, sp)
	if !strings.Contains(got, `"type":"sparkline"`) || !strings.Contains(got, `[1000,21.5]`) {
		t.Errorf("got %s", got)
	}
}

func TestEChartsDefaultHeight(t *testing.T) {
	ch := render.NewECharts(map[string]any{"series": []any{}}, nil, 0)
	if ch.Height != 300 {
		t.Errorf("height = %d", ch.Height)
	}
	got := marshal(t, ch)
	if !strings.Contains(got, `"title":null`) {
		t.Errorf("nil title should serialize as null: %s", got)
	}
}

func TestAssistantSnippetExtraction(t *testing.T) {
	response := "Sure:\n```signal-deck\nstates('light')\n```\nand also\n```signal_deck\nget_state(\"sun.sun\")\n```\n```python\nignored\n```"
	a := render.NewAssistant(response, "conversation.home_assistant")
	if len(a.Snippets) != 2 {
		t.Fatalf("snippets = %v", a.Snippets)
	}
	if a.Snippets[0] != "states('light')" || a.Snippets[1] != `get_state("sun.sun")` {
		t.Errorf("snippets = %v", a.Snippets)
	}
}

func TestEntityCardSerialization(t *testing.T) {
	got := marshal(t, render.EntityCard{
		EntityID:    "sensor.temp",
		Icon:        "🌡️",
		Name:        "Temperature",
		State:       "22.5",
		StateColor:  "#4fc3f7",
		Unit:        render.Opt("C"),
		Domain:      "sensor",
		LastChanged: "10:30",
		Attributes:  []render.KV{{"device_class", "temperature"}},
	})
	for _, frag := range []string{`"type":"entity_card"`, `"device_class":null`, `["device_class","temperature"]`} {
		if !strings.Contains(got, frag) {
			t.Errorf("missing %s in %s", frag, got)
		}
	}
}
