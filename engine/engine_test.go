package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/signaldeck/shell-engine/bundle"
	"github.com/signaldeck/shell-engine/core/render"
	"github.com/signaldeck/shell-engine/engine"
	"github.com/signaldeck/shell-engine/observability"
	"github.com/signaldeck/shell-engine/sandbox"
	"github.com/signaldeck/shell-engine/sandbox/mini"
	"github.com/signaldeck/shell-engine/session"
)

const kitchenTempJSON = `{
	"entity_id": "sensor.kitchen_temp",
	"state": "21.5",
	"attributes": {
		"friendly_name": "Kitchen Temp",
		"unit_of_measurement": "°C",
		"device_class": "temperature"
	},
	"last_changed": "2026-08-29T10:30:00Z",
	"last_updated": "2026-08-29T10:30:00Z"
}`

func newEngine(t *testing.T, opts ...engine.Option) *engine.Engine {
	t.Helper()
	opts = append([]engine.Option{engine.WithObserver(observability.NoOpObserver{})}, opts...)
	e, err := engine.New(&engine.Config{}, opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return e
}

func hostCall(t *testing.T, spec render.Spec) render.HostCall {
	t.Helper()
	hc, ok := spec.(render.HostCall)
	if !ok {
		t.Fatalf("got %T, want render.HostCall", spec)
	}
	return hc
}

func textContent(t *testing.T, spec render.Spec) string {
	t.Helper()
	txt, ok := spec.(render.Text)
	if !ok {
		t.Fatalf("got %T, want render.Text", spec)
	}
	return txt.Content
}

func TestEvaluate_EmptyInput(t *testing.T) {
	e := newEngine(t)

	if got := textContent(t, e.Evaluate("   ")); got != "" {
		t.Errorf("got %q, want empty text", got)
	}
	if len(e.History()) != 0 {
		t.Error("empty input should not be recorded in history")
	}
}

func TestEvaluate_HelpCommand(t *testing.T) {
	e := newEngine(t)

	spec := e.Evaluate(":help")
	help, ok := spec.(render.Help)
	if !ok {
		t.Fatalf("got %T, want render.Help", spec)
	}
	if !strings.Contains(help.Content, "Signal Deck") {
		t.Error("help text should mention Signal Deck")
	}
}

func TestEvaluate_ClearCommand(t *testing.T) {
	e := newEngine(t)

	if got := textContent(t, e.Evaluate(":clear")); got != "\x1b[clear]" {
		t.Errorf("got %q, want clear marker", got)
	}
}

func TestEvaluate_LsCommand(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("%ls binary_sensor"))
	if hc.Method != "get_states" {
		t.Errorf("got method %q, want get_states", hc.Method)
	}
	params := hc.Params.(map[string]any)
	if params["domain"] != "binary_sensor" {
		t.Errorf("got domain %v, want binary_sensor", params["domain"])
	}
}

func TestEvaluate_BareEntityIDAutoResolves(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("sensor.kitchen_temp"))
	if hc.Method != "get_state" {
		t.Errorf("got method %q, want get_state", hc.Method)
	}
	params := hc.Params.(map[string]any)
	if params["entity_id"] != "sensor.kitchen_temp" {
		t.Errorf("got entity_id %v, want sensor.kitchen_temp", params["entity_id"])
	}
}

func TestEvaluate_BareDomainAutoResolves(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("light"))
	if hc.Method != "get_states" {
		t.Errorf("got method %q, want get_states", hc.Method)
	}
	if hc.Params.(map[string]any)["domain"] != "light" {
		t.Error("bare domain should list that domain")
	}
}

func TestEvaluate_BindingsPersistAcrossSnippets(t *testing.T) {
	e := newEngine(t)

	if got := textContent(t, e.Evaluate("x = 42")); got != "" {
		t.Errorf("assignment produced output %q, want none", got)
	}
	if got := textContent(t, e.Evaluate("x + 1")); got != "→ 43" {
		t.Errorf("got %q, want %q", got, "→ 43")
	}
}

func TestEvaluate_UnderscoreHoldsLastResult(t *testing.T) {
	e := newEngine(t)

	e.Evaluate("x = 42")
	e.Evaluate("x + 1")

	if got := textContent(t, e.Evaluate("_ * 2")); got != "→ 86" {
		t.Errorf("got %q, want %q", got, "→ 86")
	}
}

func TestEvaluate_RuntimeErrorPreservesBindings(t *testing.T) {
	e := newEngine(t)

	e.Evaluate("x = 42")

	errSpec, ok := e.Evaluate("1/0").(render.Error)
	if !ok {
		t.Fatal("expected error spec for division by zero")
	}
	if !strings.Contains(errSpec.Message, "division by zero") {
		t.Errorf("got %q, want division by zero", errSpec.Message)
	}

	if got := textContent(t, e.Evaluate("x + 1")); got != "→ 43" {
		t.Errorf("bindings lost after runtime error: got %q", got)
	}
}

func TestEvaluate_HostPauseAndFulfil(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("state('sensor.kitchen_temp')"))
	if hc.CallID != "call_1" {
		t.Errorf("got call id %q, want call_1", hc.CallID)
	}
	if hc.Method != "get_state" {
		t.Errorf("got method %q, want get_state", hc.Method)
	}

	spec := e.Fulfil(hc.CallID, kitchenTempJSON)
	card, ok := spec.(render.EntityCard)
	if !ok {
		t.Fatalf("got %T, want render.EntityCard", spec)
	}
	if card.Name != "Kitchen Temp" {
		t.Errorf("got name %q, want Kitchen Temp", card.Name)
	}
	if card.State != "21.5" {
		t.Errorf("got state %q, want 21.5", card.State)
	}
	if card.Unit == nil || *card.Unit != "°C" {
		t.Errorf("got unit %v, want °C", card.Unit)
	}
	if card.LastChanged != "10:30:00" {
		t.Errorf("got last_changed %q, want 10:30:00", card.LastChanged)
	}
}

func TestEvaluate_ResumedValueUsableInScript(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("temp = state('sensor.kitchen_temp')"))
	e.Fulfil(hc.CallID, kitchenTempJSON)

	if got := textContent(t, e.Evaluate("temp.state")); got != "→ 21.5" {
		t.Errorf("got %q, want %q", got, "→ 21.5")
	}
	if got := textContent(t, e.Evaluate("temp.is_on")); got != "→ False" {
		t.Errorf("got %q, want %q", got, "→ False")
	}
}

func TestEvaluate_RejectedWhileCallPending(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("state('sensor.a')"))

	errSpec, ok := e.Evaluate("1 + 1").(render.Error)
	if !ok {
		t.Fatal("expected rejection while a host call is pending")
	}
	if !strings.Contains(errSpec.Message, session.ErrCallPending.Error()) {
		t.Errorf("got %q, want the pending-call error", errSpec.Message)
	}
	if _, ok := e.Evaluate("%get sensor.b").(render.Error); !ok {
		t.Fatal("expected command rejection while a host call is pending")
	}

	// Fulfilment clears the single-flight gate.
	e.Fulfil(hc.CallID, kitchenTempJSON)
	if got := textContent(t, e.Evaluate("1 + 1")); got != "→ 2" {
		t.Errorf("got %q after fulfilment, want %q", got, "→ 2")
	}
}

func TestEvaluate_CallIDsUniqueAndIncreasing(t *testing.T) {
	e := newEngine(t)

	for i, want := range []string{"call_1", "call_2", "call_3"} {
		hc := hostCall(t, e.Evaluate("%get sensor.a"))
		if hc.CallID != want {
			t.Fatalf("call %d: got id %q, want %q", i+1, hc.CallID, want)
		}
		e.Fulfil(hc.CallID, kitchenTempJSON)
	}
}

func TestFulfil_UnknownCallIDLeavesPendingStored(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("%get sensor.a"))

	if _, ok := e.Fulfil("call_99", "{}").(render.Error); !ok {
		t.Fatal("expected error for unknown call id")
	}

	// The stored call is untouched and still fulfillable.
	if _, ok := e.Fulfil(hc.CallID, kitchenTempJSON).(render.EntityCard); !ok {
		t.Fatal("pending call should survive a mismatched fulfilment")
	}
}

func TestFulfil_ParseErrorLeavesPendingStored(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("%get sensor.a"))

	errSpec, ok := e.Fulfil(hc.CallID, "{not json").(render.Error)
	if !ok {
		t.Fatal("expected error for malformed response")
	}
	if !strings.Contains(errSpec.Message, "parse host response") {
		t.Errorf("got %q, want parse error", errSpec.Message)
	}

	if _, ok := e.Fulfil(hc.CallID, kitchenTempJSON).(render.EntityCard); !ok {
		t.Fatal("pending call should survive a malformed response")
	}
}

func TestEvaluate_AgoResolvedLocally(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("history('sensor.t', ago('2d'))"))
	if hc.Method != "get_history" {
		t.Errorf("got method %q, want get_history", hc.Method)
	}
	if hours := hc.Params.(map[string]any)["hours"]; hours != int64(48) {
		t.Errorf("got hours %v, want 48", hours)
	}
}

func TestEvaluate_ShowDisplayPrecedesResult(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("show(7)\nstate('sensor.kitchen_temp')"))

	stacked, ok := e.Fulfil(hc.CallID, kitchenTempJSON).(render.VStack)
	if !ok {
		t.Fatal("expected stacked show display plus entity card")
	}
	if len(stacked.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(stacked.Children))
	}
	if got := textContent(t, stacked.Children[0]); got != "7" {
		t.Errorf("got first display %q, want %q", got, "7")
	}
	if _, ok := stacked.Children[1].(render.EntityCard); !ok {
		t.Errorf("got %T for second display, want render.EntityCard", stacked.Children[1])
	}
}

func TestEvaluate_PrintOutputSurvivesPause(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("print('before')\nv = state('sensor.kitchen_temp')\nprint('after')"))

	out := textContent(t, e.Fulfil(hc.CallID, kitchenTempJSON))
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Errorf("got output %q, want both print lines", out)
	}
}

func TestEvaluate_TwoHostPausesInOneStatement(t *testing.T) {
	e := newEngine(t)

	first := hostCall(t, e.Evaluate(
		"print('one')\na = state('sensor.a')\nprint('two')\nb = state('sensor.b')\nprint('three')\na.state + ' ' + b.state"))

	second := hostCall(t, e.Fulfil(first.CallID,
		`{"entity_id": "sensor.a", "state": "1", "attributes": {}, "last_changed": "2026-08-29T10:00:00Z"}`))
	if second.CallID == first.CallID {
		t.Fatal("second pause should issue a fresh call id")
	}
	if second.Method != "get_state" || second.Params.(map[string]any)["entity_id"] != "sensor.b" {
		t.Fatalf("got %s %v, want get_state for sensor.b", second.Method, second.Params)
	}

	spec := e.Fulfil(second.CallID,
		`{"entity_id": "sensor.b", "state": "2", "attributes": {}, "last_changed": "2026-08-29T10:00:00Z"}`)
	stacked, ok := spec.(render.VStack)
	if !ok {
		t.Fatalf("got %T, want render.VStack", spec)
	}
	out := textContent(t, stacked.Children[0])
	if !strings.Contains(out, "one\ntwo\nthree") {
		t.Errorf("got output %q, want prints in order across both pauses", out)
	}
	if got := textContent(t, stacked.Children[1]); got != "→ 1 2" {
		t.Errorf("got %q, want → 1 2", got)
	}
}

func TestEvaluate_ChartResolvedLocally(t *testing.T) {
	e := newEngine(t)

	chart, ok := e.Evaluate("plot_line(['a', 'b', 'c'], [1, 2, 3], 'Trend')").(render.ECharts)
	if !ok {
		t.Fatal("expected chart spec from plot_line")
	}
	if chart.Title == nil || *chart.Title != "Trend" {
		t.Errorf("got title %v, want Trend", chart.Title)
	}
	if chart.Height != 300 {
		t.Errorf("got height %d, want 300", chart.Height)
	}
}

func TestEvaluate_PieChartFromPairs(t *testing.T) {
	e := newEngine(t)

	if _, ok := e.Evaluate("plot_pie([['kitchen', 3], ['bedroom', 2]])").(render.ECharts); !ok {
		t.Fatal("expected chart spec from plot_pie")
	}
}

func TestFulfil_DictResponseDrivesConfigChart(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("cfg = template('chart data')\nplot_line(cfg, 'Config')"))
	spec := e.Fulfil(hc.CallID,
		`{"labels": ["a", "b", "c"], "series": {"hum": [4, 5, 6], "temp": [1, 2, 3]}}`)

	chart, ok := spec.(render.ECharts)
	if !ok {
		t.Fatalf("got %T, want render.ECharts", spec)
	}
	if chart.Title == nil || *chart.Title != "Config" {
		t.Errorf("got title %v, want Config", chart.Title)
	}
	option := chart.Option.(map[string]any)
	xAxis := option["xAxis"].(map[string]any)
	if labels := xAxis["data"].([]string); len(labels) != 3 || labels[0] != "a" {
		t.Errorf("got x labels %v, want [a b c]", labels)
	}
	series := option["series"].([]any)
	if len(series) != 2 {
		t.Fatalf("got %d series, want 2", len(series))
	}
	first := series[0].(map[string]any)
	if first["name"] != "hum" || first["type"] != "line" {
		t.Errorf("got series %v, want named line series", first)
	}
	if data := first["data"].([]float64); len(data) != 3 || data[0] != 4 {
		t.Errorf("got series data %v, want [4 5 6]", data)
	}
}

func TestFulfil_DictSeriesChartFromBars(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("cfg = template('chart data')\nplot_bar(cfg)"))
	spec := e.Fulfil(hc.CallID, `{"labels": ["x"], "series": {"only": [7]}}`)

	chart, ok := spec.(render.ECharts)
	if !ok {
		t.Fatalf("got %T, want render.ECharts", spec)
	}
	first := chart.Option.(map[string]any)["series"].([]any)[0].(map[string]any)
	if first["type"] != "bar" || first["name"] != "only" {
		t.Errorf("got series %v, want bar series named only", first)
	}
}

func TestEvaluate_FatalErrorKillsSessionUntilReset(t *testing.T) {
	e := newEngine(t)

	if _, ok := e.Evaluate("x = (").(render.Error); !ok {
		t.Fatal("expected error spec for unparseable snippet")
	}
	if _, ok := e.Evaluate("1 + 1").(render.Error); !ok {
		t.Fatal("expected dead-session error after fatal failure")
	}

	e.Reset()

	if got := textContent(t, e.Evaluate("1 + 1")); got != "→ 2" {
		t.Errorf("got %q after reset, want %q", got, "→ 2")
	}
}

func TestEvaluate_UnknownOpKillsSessionUntilReset(t *testing.T) {
	e := newEngine(t, engine.WithInterpreterFactory(func() sandbox.Interpreter {
		return mini.New(append(engine.ScriptOps(), "mystery")...)
	}))

	errSpec, ok := e.Evaluate("mystery()").(render.Error)
	if !ok {
		t.Fatal("expected error spec for unroutable operation")
	}
	if !strings.Contains(errSpec.Message, "mystery") {
		t.Errorf("got %q, want the operation name", errSpec.Message)
	}

	if _, ok := e.Evaluate("1 + 1").(render.Error); !ok {
		t.Fatal("expected dead-session error after discarded continuation")
	}

	e.Reset()
	if got := textContent(t, e.Evaluate("1 + 1")); got != "→ 2" {
		t.Errorf("got %q after reset, want %q", got, "→ 2")
	}
}

func TestEvaluate_RoutingArgumentFailure(t *testing.T) {
	e := newEngine(t)

	if _, ok := e.Evaluate("state()").(render.Error); !ok {
		t.Fatal("expected error spec when a required argument is missing")
	}

	e.Reset()
	if got := textContent(t, e.Evaluate("2 + 2")); got != "→ 4" {
		t.Errorf("got %q after reset, want %q", got, "→ 4")
	}
}

func TestEvaluate_AsyncAndOSUnsupported(t *testing.T) {
	e := newEngine(t)

	errSpec, ok := e.Evaluate("await fetch()").(render.Error)
	if !ok {
		t.Fatal("expected error spec for await")
	}
	if errSpec.Message != "Async operations are not supported in Signal Deck." {
		t.Errorf("got %q", errSpec.Message)
	}

	errSpec, ok = e.Evaluate("os.listdir('/')").(render.Error)
	if !ok {
		t.Fatal("expected error spec for os access")
	}
	if errSpec.Message != "OS/filesystem operations are not supported in Signal Deck." {
		t.Errorf("got %q", errSpec.Message)
	}
}

func TestFulfil_ConversationEnvelope(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("%ask why is the kitchen cold"))
	if hc.Method != "conversation_process" {
		t.Fatalf("got method %q, want conversation_process", hc.Method)
	}
	ctx, _ := hc.Params.(map[string]any)["context"].(string)
	if !strings.Contains(ctx, "Recent shell commands:") {
		t.Errorf("got context %q, want recent command header", ctx)
	}

	spec := e.Fulfil(hc.CallID, `{"__conversation": true, "response": "Check the window.", "agent_id": "homeassistant"}`)
	assistant, ok := spec.(render.Assistant)
	if !ok {
		t.Fatalf("got %T, want render.Assistant", spec)
	}
	if assistant.Response != "Check the window." {
		t.Errorf("got response %q", assistant.Response)
	}
	if assistant.Agent != "homeassistant" {
		t.Errorf("got agent %q, want homeassistant", assistant.Agent)
	}
}

func TestFulfil_DiffEnvelope(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("%diff sensor.a sensor.b"))
	if hc.Method != "get_diff" {
		t.Fatalf("got method %q, want get_diff", hc.Method)
	}

	spec := e.Fulfil(hc.CallID, `{
		"__diff": true,
		"entity_a": {"entity_id": "sensor.a", "state": "1", "attributes": {"unit_of_measurement": "°C"}},
		"entity_b": {"entity_id": "sensor.b", "state": "2", "attributes": {"battery": 80}}
	}`)
	stacked, ok := spec.(render.VStack)
	if !ok {
		t.Fatalf("got %T, want render.VStack", spec)
	}
	table, ok := stacked.Children[1].(render.Table)
	if !ok {
		t.Fatalf("got %T, want render.Table", stacked.Children[1])
	}
	if table.Rows[0][0] != "state" || table.Rows[0][1] != "1" || table.Rows[0][2] != "2" {
		t.Errorf("got first row %v, want state comparison", table.Rows[0])
	}
	// Union of attribute keys, missing side shown as a dash.
	foundBattery := false
	for _, row := range table.Rows {
		if row[0] == "battery" {
			foundBattery = true
			if row[1] != "—" || row[2] != "80" {
				t.Errorf("got battery row %v", row)
			}
		}
	}
	if !foundBattery {
		t.Error("battery attribute missing from diff")
	}
}

func TestFulfil_AttrsEnvelope(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("%attrs sensor.kitchen_temp"))
	params := hc.Params.(map[string]any)
	if params["attrs_only"] != true {
		t.Error("attrs command should request attrs_only")
	}

	spec := e.Fulfil(hc.CallID, `{
		"__attrs_only": true,
		"entity": {"entity_id": "sensor.kitchen_temp", "attributes": {"device_class": "temperature", "battery": 80}}
	}`)
	kv, ok := spec.(render.KeyValue)
	if !ok {
		t.Fatalf("got %T, want render.KeyValue", spec)
	}
	if kv.Title == nil || !strings.Contains(*kv.Title, "sensor.kitchen_temp") {
		t.Errorf("got title %v, want entity id", kv.Title)
	}
	if len(kv.Pairs) != 2 {
		t.Errorf("got %d pairs, want 2", len(kv.Pairs))
	}
}

func TestFulfil_StateListBecomesTable(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("%ls"))
	spec := e.Fulfil(hc.CallID, `[
		{"entity_id": "light.kitchen", "state": "on", "attributes": {}, "last_changed": "2026-08-29T10:00:00Z"},
		{"entity_id": "light.hall", "state": "off", "attributes": {}, "last_changed": "2026-08-29T09:00:00Z"},
		{"entity_id": "sensor.temp", "state": "21.5", "attributes": {"unit_of_measurement": "°C"}, "last_changed": "2026-08-29T08:00:00Z"}
	]`)

	stacked, ok := spec.(render.VStack)
	if !ok {
		t.Fatalf("got %T, want render.VStack", spec)
	}
	summary, ok := stacked.Children[0].(render.Summary)
	if !ok {
		t.Fatalf("got %T, want render.Summary", stacked.Children[0])
	}
	if !strings.Contains(summary.Content, "3 entities") {
		t.Errorf("got summary %q, want entity count", summary.Content)
	}
	if !strings.Contains(summary.Content, "light: 2") || !strings.Contains(summary.Content, "sensor: 1") {
		t.Errorf("got summary %q, want domain counts", summary.Content)
	}
	table := stacked.Children[1].(render.Table)
	if table.Rows[2][2] != "21.5 °C" {
		t.Errorf("got state cell %q, want unit appended", table.Rows[2][2])
	}
}

func TestFulfil_NumericHistoryBecomesSparkline(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("history('sensor.t', 6)"))
	spec := e.Fulfil(hc.CallID, `[[
		{"entity_id": "sensor.t", "state": "1.0", "attributes": {"friendly_name": "T", "unit_of_measurement": "°C"}, "last_changed": "2026-08-29T00:00:00Z"},
		{"entity_id": "sensor.t", "state": "3.0", "attributes": {}, "last_changed": "2026-08-29T01:00:00Z"},
		{"entity_id": "sensor.t", "state": "2.0", "attributes": {}, "last_changed": "2026-08-29T02:00:00Z"}
	]]`)

	spark, ok := spec.(render.Sparkline)
	if !ok {
		t.Fatalf("got %T, want render.Sparkline", spec)
	}
	if spark.Name != "T" {
		t.Errorf("got name %q, want T", spark.Name)
	}
	if len(spark.Points) != 3 {
		t.Fatalf("got %d points, want 3", len(spark.Points))
	}
	if spark.Min != 1.0 || spark.Max != 3.0 || spark.Current != 2.0 {
		t.Errorf("got min/max/current %v/%v/%v", spark.Min, spark.Max, spark.Current)
	}
	if spark.Points[1][0] <= spark.Points[0][0] {
		t.Error("timestamps should increase")
	}
}

func TestFulfil_HistoryHonoursUTCOffsets(t *testing.T) {
	e := newEngine(t)

	// 10:00+02:00 is 08:00Z, one hour before the second sample.
	hc := hostCall(t, e.Evaluate("history('sensor.t', 6)"))
	spec := e.Fulfil(hc.CallID, `[[
		{"entity_id": "sensor.t", "state": "1.0", "attributes": {}, "last_changed": "2026-08-29T10:00:00+02:00"},
		{"entity_id": "sensor.t", "state": "2.0", "attributes": {}, "last_changed": "2026-08-29T09:00:00Z"}
	]]`)

	spark, ok := spec.(render.Sparkline)
	if !ok {
		t.Fatalf("got %T, want render.Sparkline", spec)
	}
	if got := spark.Points[1][0] - spark.Points[0][0]; got != 3600000 {
		t.Errorf("got gap %vms, want 3600000", got)
	}
}

func TestFulfil_DiscreteHistoryBecomesTimeline(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("history('binary_sensor.door', 6)"))
	spec := e.Fulfil(hc.CallID, `[[
		{"entity_id": "binary_sensor.door", "state": "off", "attributes": {}, "last_changed": "2026-08-29T00:00:00Z"},
		{"entity_id": "binary_sensor.door", "state": "on", "attributes": {}, "last_changed": "2026-08-29T01:00:00Z"},
		{"entity_id": "binary_sensor.door", "state": "off", "attributes": {}, "last_changed": "2026-08-29T02:00:00Z"}
	]]`)

	timeline, ok := spec.(render.Timeline)
	if !ok {
		t.Fatalf("got %T, want render.Timeline", spec)
	}
	if len(timeline.Segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(timeline.Segments))
	}
	if timeline.Segments[1].State != "on" || timeline.Segments[1].Color != "#44b556" {
		t.Errorf("got segment %+v, want on/#44b556", timeline.Segments[1])
	}
	if timeline.Segments[0].End != timeline.Segments[1].Start {
		t.Error("segments should be contiguous")
	}
}

func TestFulfil_StatisticsBecomeSparkline(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("statistics('sensor.t')"))
	if hc.Method != "get_statistics" {
		t.Fatalf("got method %q, want get_statistics", hc.Method)
	}
	spec := e.Fulfil(hc.CallID, `{"sensor.t": [
		{"start": 1756400000, "end": 1756403600, "mean": 20.5},
		{"start": 1756403600, "end": 1756407200, "mean": 21.0}
	]}`)

	spark, ok := spec.(render.Sparkline)
	if !ok {
		t.Fatalf("got %T, want render.Sparkline", spec)
	}
	if spark.Points[0][0] != 1756400000000 {
		t.Errorf("got timestamp %v, want epoch seconds scaled to ms", spark.Points[0][0])
	}
}

func TestFulfil_LogbookResponse(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("logbook('light.kitchen')"))
	spec := e.Fulfil(hc.CallID, `[
		{"when": "2026-08-29T10:00:00Z", "name": "Kitchen", "state": "on", "context_user": "anna"},
		{"when": "2026-08-29T11:00:00Z", "name": "Kitchen", "state": "off"}
	]`)

	stacked, ok := spec.(render.VStack)
	if !ok {
		t.Fatalf("got %T, want render.VStack", spec)
	}
	logbook, ok := stacked.Children[1].(render.Logbook)
	if !ok {
		t.Fatalf("got %T, want render.Logbook", stacked.Children[1])
	}
	if logbook.EntityID != "light.kitchen" {
		t.Errorf("got entity %q", logbook.EntityID)
	}
	if logbook.Entries[0].ContextUser == nil || *logbook.Entries[0].ContextUser != "anna" {
		t.Error("context_user should survive shaping")
	}
	if logbook.Entries[1].ContextUser != nil {
		t.Error("absent context_user should stay null")
	}
}

func TestFulfil_TracesResponse(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("traces('morning_lights')"))
	if hc.Method != "get_trace" {
		t.Fatalf("got method %q, want get_trace", hc.Method)
	}
	spec := e.Fulfil(hc.CallID, `[
		{"run_id": "r1", "state": "stopped", "start": "2026-08-29T06:00:00Z"}
	]`)

	stacked, ok := spec.(render.VStack)
	if !ok {
		t.Fatalf("got %T, want render.VStack", spec)
	}
	traceList, ok := stacked.Children[1].(render.TraceList)
	if !ok {
		t.Fatalf("got %T, want render.TraceList", stacked.Children[1])
	}
	if traceList.AutomationID == nil || *traceList.AutomationID != "automation.morning_lights" {
		t.Errorf("got automation id %v, want prefixed id", traceList.AutomationID)
	}
}

func TestFulfil_DatetimeResponse(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("now()"))
	if hc.Method != "get_datetime" {
		t.Fatalf("got method %q, want get_datetime", hc.Method)
	}
	spec := e.Fulfil(hc.CallID, `{"date": "2026-08-29", "time": "10:30", "day_of_week": "Saturday", "timezone": "UTC"}`)

	kv, ok := spec.(render.KeyValue)
	if !ok {
		t.Fatalf("got %T, want render.KeyValue", spec)
	}
	if len(kv.Pairs) != 4 {
		t.Errorf("got %d pairs, want 4", len(kv.Pairs))
	}
	if kv.Pairs[0] != (render.KV{"date", "2026-08-29"}) {
		t.Errorf("got first pair %v", kv.Pairs[0])
	}
}

func TestFulfil_GenericObjectFallsBackToCopyable(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("template('{{ states.light | count }}')"))
	spec := e.Fulfil(hc.CallID, `{"result": "12"}`)

	copyable, ok := spec.(render.Copyable)
	if !ok {
		t.Fatalf("got %T, want render.Copyable", spec)
	}
	if copyable.Label == nil || *copyable.Label != "JSON" {
		t.Errorf("got label %v, want JSON", copyable.Label)
	}
	if !strings.Contains(copyable.Content, `"result"`) {
		t.Errorf("got content %q", copyable.Content)
	}
}

func TestEvaluate_FmtAndBundleCommands(t *testing.T) {
	e := newEngine(t)

	if got := textContent(t, e.Evaluate("%fmt json")); got != "Output format set to: json" {
		t.Errorf("got %q", got)
	}
	if _, ok := e.Evaluate("%bundle morning").(render.Error); !ok {
		t.Error("expected error without a bundle store")
	}
}

func TestEvaluate_BundleRunsStoredSnippet(t *testing.T) {
	store := bundle.NewFileStore(t.TempDir())
	ctx := context.Background()
	if err := store.Save(ctx, bundle.Bundle{Name: "answer", Snippet: "x = 40\nx + 2"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := store.Save(ctx, bundle.Bundle{Name: "kitchen", Snippet: "state('sensor.kitchen_temp')"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	e := newEngine(t, engine.WithBundleStore(store))

	if got := textContent(t, e.Evaluate("%bundle answer")); got != "→ 42" {
		t.Errorf("got %q, want the bundle snippet result", got)
	}

	// Bundle bindings land in the shared session scope.
	if got := textContent(t, e.Evaluate("x + 10")); got != "→ 52" {
		t.Errorf("got %q, want bundle binding reuse", got)
	}

	// A bundle that reads host data pauses like any other snippet.
	hc := hostCall(t, e.Evaluate("%bundle kitchen"))
	if hc.Method != "get_state" {
		t.Errorf("got method %q, want get_state", hc.Method)
	}

	e.Reset()
	if _, ok := e.Evaluate("%bundle missing").(render.Error); !ok {
		t.Error("expected error for unknown bundle name")
	}
}

func TestEngine_SessionAccessors(t *testing.T) {
	e := newEngine(t)

	if e.SessionID() == "" {
		t.Error("session id should be set")
	}
	if e.Prompt() != "≫ " {
		t.Errorf("got prompt %q", e.Prompt())
	}

	e.Evaluate("x = 1")
	e.Evaluate("x + 1")
	history := e.History()
	if len(history) != 2 || history[0] != "x = 1" {
		t.Errorf("got history %v", history)
	}
}

func TestReset_ClearsPendingCall(t *testing.T) {
	e := newEngine(t)

	hc := hostCall(t, e.Evaluate("state('sensor.a')"))
	e.Reset()

	if _, ok := e.Fulfil(hc.CallID, kitchenTempJSON).(render.Error); !ok {
		t.Error("expected error fulfilling a call discarded by reset")
	}
	if got := textContent(t, e.Evaluate("1 + 1")); got != "→ 2" {
		t.Errorf("got %q after reset, want %q", got, "→ 2")
	}
}
