package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/signaldeck/shell-engine/core/render"
	"github.com/signaldeck/shell-engine/core/value"
	"github.com/signaldeck/shell-engine/icons"
)

// Attribute keys hidden from card and diff displays.
var skipAttrKeys = map[string]bool{
	"friendly_name":      true,
	"icon":               true,
	"entity_picture":     true,
	"supported_features": true,
	"attribution":        true,
}

func isEntityRecord(v value.Value) bool {
	return v.Kind == value.KindRecord && v.Rec.Name == "EntityState"
}

func isEntityRecordList(v value.Value) bool {
	if v.Kind != value.KindList || len(v.Items) == 0 {
		return false
	}
	for _, item := range v.Items {
		if !isEntityRecord(item) {
			return false
		}
	}
	return true
}

// formatShow renders a script value the way show() displays it: entity
// records get a card, homogeneous entity lists get a table, everything else
// prints in display form.
func (e *Engine) formatShow(v value.Value) render.Spec {
	if isEntityRecord(v) {
		return formatRecordCard(v.Rec)
	}
	if isEntityRecordList(v) {
		return formatRecordTable(v.Items)
	}
	return render.Textf("%s", v)
}

// formatRecordCard renders an EntityState record as a rich entity card.
func formatRecordCard(rec *value.Record) render.Spec {
	str := func(name string) string {
		if f, ok := rec.Get(name); ok && f.Kind == value.KindStr {
			return f.S
		}
		return ""
	}

	entityID := str("entity_id")
	state := str("state")

	var deviceClass, unit *string
	var attrPairs []render.KV
	if attrs, ok := rec.Get("attributes"); ok && attrs.Kind == value.KindDict {
		for _, p := range attrs.Pairs {
			if p.Key.Kind != value.KindStr {
				continue
			}
			switch p.Key.S {
			case "device_class":
				if p.Val.Kind == value.KindStr {
					deviceClass = render.Opt(p.Val.S)
				}
			case "unit_of_measurement":
				if p.Val.Kind == value.KindStr {
					unit = render.Opt(p.Val.S)
				}
			}
			if !skipAttrKeys[p.Key.S] {
				attrPairs = append(attrPairs, render.KV{p.Key.S, p.Val.String()})
			}
		}
	}

	dc := ""
	if deviceClass != nil {
		dc = *deviceClass
	}

	return render.EntityCard{
		EntityID:    entityID,
		Icon:        icons.EntityIcon(entityID, dc, state),
		Name:        str("name"),
		State:       state,
		StateColor:  icons.StateColor(state),
		Unit:        unit,
		Domain:      str("domain"),
		DeviceClass: deviceClass,
		LastChanged: formatTimestamp(str("last_changed")),
		Attributes:  attrPairs,
	}
}

// formatRecordTable renders a list of EntityState records as a table with a
// domain-count summary line.
func formatRecordTable(items []value.Value) render.Spec {
	headers := []string{" ", "entity_id", "state", "last_changed"}
	rows := make([][]string, 0, len(items))
	domainCounts := map[string]int{}

	for _, item := range items {
		rec := item.Rec
		str := func(name string) string {
			if f, ok := rec.Get(name); ok && f.Kind == value.KindStr {
				return f.S
			}
			return ""
		}

		entityID := str("entity_id")
		state := str("state")

		deviceClass, unit := "", ""
		if attrs, ok := rec.Get("attributes"); ok {
			if dc, ok := attrs.DictGet("device_class"); ok && dc.Kind == value.KindStr {
				deviceClass = dc.S
			}
			if u, ok := attrs.DictGet("unit_of_measurement"); ok && u.Kind == value.KindStr {
				unit = u.S
			}
		}

		rows = append(rows, []string{
			icons.EntityIcon(entityID, deviceClass, state) + " " + icons.StateIndicator(state),
			entityID,
			stateWithUnit(state, unit),
			formatTimestamp(str("last_changed")),
		})
		domainCounts[str("domain")]++
	}

	return render.VStack{Children: []render.Spec{
		render.Summary{Content: entitySummary(len(items), domainCounts)},
		render.Table{Headers: headers, Rows: rows},
	}}
}

// formatHostResponse shapes a raw host payload by structure: state arrays
// become tables, history and statistics shapes become charts, a single state
// object becomes a card, and anything else falls back to copyable JSON.
func (e *Engine) formatHostResponse(raw any) render.Spec {
	if arr, ok := raw.([]any); ok {
		if len(arr) == 0 {
			return render.Text{Content: "No results."}
		}
		if _, nested := arr[0].([]any); nested {
			return formatHistoryResponse(raw)
		}
		if first, ok := arr[0].(map[string]any); ok {
			if _, hasID := first["entity_id"]; hasID {
				return formatEntityTable(arr)
			}
		}
	}

	if obj, ok := raw.(map[string]any); ok {
		if looksLikeStatistics(obj) {
			return formatStatisticsResponse(obj)
		}
		if _, hasID := obj["entity_id"]; hasID {
			return formatEntityCard(obj)
		}
	}

	return render.Copyable{Content: prettyJSON(raw), Label: render.Opt("JSON")}
}

// looksLikeStatistics detects the statistics shape: a map whose values are
// arrays of {start, end, ...} buckets.
func looksLikeStatistics(obj map[string]any) bool {
	for _, v := range obj {
		arr, ok := v.([]any)
		if !ok || len(arr) == 0 {
			return false
		}
		first, ok := arr[0].(map[string]any)
		if !ok {
			return false
		}
		_, hasStart := first["start"]
		_, hasEnd := first["end"]
		return hasStart && hasEnd
	}
	return false
}

// formatEntityTable renders an array of raw state objects as a table with a
// domain-count summary.
func formatEntityTable(arr []any) render.Spec {
	headers := []string{" ", "entity_id", "state", "last_changed"}
	rows := make([][]string, 0, len(arr))
	domainCounts := map[string]int{}

	for _, item := range arr {
		obj, _ := item.(map[string]any)
		entityID := jsonStringOr(obj["entity_id"], "-")
		state := jsonStringOr(obj["state"], "-")
		attrs, _ := obj["attributes"].(map[string]any)

		rows = append(rows, []string{
			icons.EntityIcon(entityID, jsonString(attrs["device_class"]), state) +
				" " + icons.StateIndicator(state),
			entityID,
			stateWithUnit(state, jsonString(attrs["unit_of_measurement"])),
			formatTimestamp(jsonStringOr(obj["last_changed"], "-")),
		})

		domain := entityID
		if d, _, ok := strings.Cut(entityID, "."); ok {
			domain = d
		}
		domainCounts[domain]++
	}

	return render.VStack{Children: []render.Spec{
		render.Summary{Content: entitySummary(len(arr), domainCounts)},
		render.Table{Headers: headers, Rows: rows},
	}}
}

// formatEntityCard renders a single raw state object as an entity card.
func formatEntityCard(obj map[string]any) render.Spec {
	entityID := jsonStringOr(obj["entity_id"], "?")
	state := jsonStringOr(obj["state"], "?")
	domain := entityID
	if d, _, ok := strings.Cut(entityID, "."); ok {
		domain = d
	}

	attrs, _ := obj["attributes"].(map[string]any)
	name := jsonStringOr(attrs["friendly_name"], entityID)

	var deviceClass, unit *string
	if dc := jsonString(attrs["device_class"]); dc != "" {
		deviceClass = render.Opt(dc)
	}
	if u := jsonString(attrs["unit_of_measurement"]); u != "" {
		unit = render.Opt(u)
	}

	var attrPairs []render.KV
	for _, k := range sortedJSONKeys(attrs) {
		if !skipAttrKeys[k] {
			attrPairs = append(attrPairs, render.KV{k, displayJSON(attrs[k])})
		}
	}

	dc := ""
	if deviceClass != nil {
		dc = *deviceClass
	}

	return render.EntityCard{
		EntityID:    entityID,
		Icon:        icons.EntityIcon(entityID, dc, state),
		Name:        name,
		State:       state,
		StateColor:  icons.StateColor(state),
		Unit:        unit,
		Domain:      domain,
		DeviceClass: deviceClass,
		LastChanged: formatTimestamp(jsonStringOr(obj["last_changed"], "-")),
		Attributes:  attrPairs,
	}
}

// formatHistoryResponse renders the history shape [[{entity_id, state,
// last_changed}, ...], ...]: numeric entities become sparklines, discrete
// entities become state timelines.
func formatHistoryResponse(raw any) render.Spec {
	outer, ok := raw.([]any)
	if !ok {
		return render.Error{Message: "Invalid history response format."}
	}
	if len(outer) == 0 {
		return render.Text{Content: "No history data."}
	}
	if first, ok := outer[0].([]any); ok && len(first) == 0 {
		return render.Text{Content: "No history data."}
	}

	var specs []render.Spec
	for _, entityHistory := range outer {
		arr, ok := entityHistory.([]any)
		if !ok || len(arr) == 0 {
			continue
		}

		first, _ := arr[0].(map[string]any)
		entityID := jsonStringOr(first["entity_id"], "?")
		firstAttrs, _ := first["attributes"].(map[string]any)
		name := jsonStringOr(firstAttrs["friendly_name"], entityID)

		if historyIsNumeric(arr) {
			var unit *string
			if u := jsonString(firstAttrs["unit_of_measurement"]); u != "" {
				unit = render.Opt(u)
			}

			var points []render.Point
			for _, entry := range arr {
				obj, _ := entry.(map[string]any)
				v, err := strconv.ParseFloat(jsonString(obj["state"]), 64)
				if err != nil {
					continue
				}
				ts, _ := parseISOToMs(jsonString(obj["last_changed"]))
				points = append(points, render.Point{ts, v})
			}
			if len(points) > 0 {
				specs = append(specs, render.NewSparkline(entityID, name, unit, points))
			}
			continue
		}

		segments := historySegments(arr)
		if len(segments) > 0 {
			specs = append(specs, render.Timeline{
				EntityID:  entityID,
				Name:      name,
				Segments:  segments,
				StartTime: segments[0].Start,
				EndTime:   segments[len(segments)-1].End,
			})
		}
	}

	if len(specs) == 0 {
		return render.Text{Content: "No displayable history data."}
	}
	return stack(specs)
}

// historyIsNumeric probes the first few entries for parseable states.
func historyIsNumeric(arr []any) bool {
	for i, entry := range arr {
		if i >= 5 {
			break
		}
		obj, _ := entry.(map[string]any)
		if _, err := strconv.ParseFloat(jsonString(obj["state"]), 64); err == nil {
			return true
		}
	}
	return false
}

// historySegments builds colored timeline segments: each state span runs to
// the next entry's change time, the last to the window end.
func historySegments(arr []any) []render.Segment {
	changed := func(i int) float64 {
		obj, _ := arr[i].(map[string]any)
		ms, _ := parseISOToMs(jsonString(obj["last_changed"]))
		return ms
	}

	endTime := changed(len(arr) - 1)
	segments := make([]render.Segment, 0, len(arr))
	for i := range arr {
		obj, _ := arr[i].(map[string]any)
		state := jsonStringOr(obj["state"], "unknown")

		end := endTime
		if i+1 < len(arr) {
			end = changed(i + 1)
		}

		segments = append(segments, render.Segment{
			Start: changed(i),
			End:   end,
			State: state,
			Color: icons.TimelineColor(state),
		})
	}
	return segments
}

// formatStatisticsResponse renders {entity_id: [{start, end, mean, ...}]}
// buckets as sparklines, preferring mean, then state, then sum.
func formatStatisticsResponse(obj map[string]any) render.Spec {
	if len(obj) == 0 {
		return render.Text{Content: "No statistics data."}
	}

	var specs []render.Spec
	for _, entityID := range sortedJSONKeys(obj) {
		stats, ok := obj[entityID].([]any)
		if !ok || len(stats) == 0 {
			continue
		}

		var points []render.Point
		for _, entry := range stats {
			bucket, _ := entry.(map[string]any)
			// Bucket start timestamps are epoch seconds.
			ts, _ := jsonFloat(bucket["start"])

			v, ok := jsonFloat(bucket["mean"])
			if !ok {
				v, ok = jsonFloat(bucket["state"])
			}
			if !ok {
				v, ok = jsonFloat(bucket["sum"])
			}
			if ok {
				points = append(points, render.Point{ts * 1000.0, v})
			}
		}

		if len(points) > 0 {
			specs = append(specs, render.NewSparkline(entityID, entityID, nil, points))
		}
	}

	if len(specs) == 0 {
		return render.Text{Content: "No displayable statistics data."}
	}
	return stack(specs)
}

// formatLogbookResponse renders logbook entries with their context fields.
func formatLogbookResponse(raw any, params map[string]any) render.Spec {
	entityID := "unknown"
	if id, ok := params["entity_id"].(string); ok {
		entityID = id
	}

	arr, ok := raw.([]any)
	if !ok {
		return render.Error{Message: "Invalid logbook response format."}
	}
	if len(arr) == 0 {
		return render.Text{Content: "No logbook entries."}
	}

	entries := make([]render.LogbookEntry, 0, len(arr))
	for _, item := range arr {
		obj, _ := item.(map[string]any)
		entries = append(entries, render.LogbookEntry{
			When:              jsonString(obj["when"]),
			Name:              jsonString(obj["name"]),
			State:             jsonOpt(obj["state"]),
			Message:           jsonOpt(obj["message"]),
			EntityID:          jsonOpt(obj["entity_id"]),
			ContextUser:       jsonOpt(obj["context_user"]),
			ContextEvent:      jsonOpt(obj["context_event"]),
			ContextDomain:     jsonOpt(obj["context_domain"]),
			ContextService:    jsonOpt(obj["context_service"]),
			ContextEntity:     jsonOpt(obj["context_entity"]),
			ContextEntityName: jsonOpt(obj["context_entity_name"]),
		})
	}

	return render.VStack{Children: []render.Spec{
		render.Summary{Content: fmt.Sprintf("%d logbook entries for %s", len(entries), entityID)},
		render.Logbook{EntityID: entityID, Entries: entries},
	}}
}

// formatTracesResponse renders automation traces from get_trace or
// list_traces.
func formatTracesResponse(raw any, params map[string]any) render.Spec {
	arr, ok := raw.([]any)
	if !ok {
		return render.Error{Message: "Invalid traces response format."}
	}
	if len(arr) == 0 {
		return render.Text{Content: "No traces found."}
	}

	var automationID *string
	if id, ok := params["automation_id"].(string); ok {
		if !strings.HasPrefix(id, "automation.") {
			id = "automation." + id
		}
		automationID = render.Opt(id)
	}

	entries := make([]render.TraceEntry, 0, len(arr))
	for _, item := range arr {
		obj, _ := item.(map[string]any)
		entries = append(entries, render.TraceEntry{
			RunID:      jsonString(obj["run_id"]),
			Automation: jsonOpt(obj["automation"]),
			State:      jsonStringOr(obj["state"], "unknown"),
			Start:      jsonString(obj["start"]),
			Finish:     jsonOpt(obj["finish"]),
			Trigger:    jsonOpt(obj["trigger"]),
			LastStep:   jsonOpt(obj["last_step"]),
			Execution:  jsonOpt(obj["execution"]),
			Error:      jsonOpt(obj["error"]),
		})
	}

	title := fmt.Sprintf("%d recent automation traces", len(entries))
	if automationID != nil {
		title = fmt.Sprintf("%d traces for %s", len(entries), *automationID)
	}

	return render.VStack{Children: []render.Spec{
		render.Summary{Content: title},
		render.TraceList{AutomationID: automationID, Entries: entries},
	}}
}

// formatServicesResponse renders a services list as a table with a
// domain-count summary.
func formatServicesResponse(raw any) render.Spec {
	arr, ok := raw.([]any)
	if !ok {
		return render.Error{Message: "Invalid services response format."}
	}
	if len(arr) == 0 {
		return render.Text{Content: "No services found."}
	}

	headers := []string{"domain", "service", "name", "fields"}
	rows := make([][]string, 0, len(arr))
	domainCounts := map[string]int{}

	for _, item := range arr {
		obj, _ := item.(map[string]any)
		domain := jsonStringOr(obj["domain"], "-")

		var fields []string
		if fieldArr, ok := obj["fields"].([]any); ok {
			for _, f := range fieldArr {
				if s, ok := f.(string); ok {
					fields = append(fields, s)
				}
			}
		}

		rows = append(rows, []string{
			domain,
			jsonStringOr(obj["service"], "-"),
			jsonStringOr(obj["name"], "-"),
			strings.Join(fields, ", "),
		})
		domainCounts[domain]++
	}

	parts := make([]string, 0, len(domainCounts))
	for _, d := range sortedCountKeys(domainCounts) {
		parts = append(parts, fmt.Sprintf("%s: %d", d, domainCounts[d]))
	}

	return render.VStack{Children: []render.Spec{
		render.Summary{Content: fmt.Sprintf("%d services  (%s)", len(arr), strings.Join(parts, ", "))},
		render.Table{Headers: headers, Rows: rows},
	}}
}

// formatDatetimeResponse renders the host clock as a key-value display.
func formatDatetimeResponse(raw any) render.Spec {
	obj, _ := raw.(map[string]any)

	var pairs []render.KV
	add := func(label, key string) {
		if s := jsonString(obj[key]); s != "" {
			pairs = append(pairs, render.KV{label, s})
		}
	}
	add("date", "date")
	add("time", "time")
	add("day", "day_of_week")
	add("timezone", "timezone")
	if haTz := jsonString(obj["ha_timezone"]); haTz != "" && haTz != jsonString(obj["timezone"]) {
		pairs = append(pairs, render.KV{"ha_timezone", haTz})
	}
	add("iso", "iso")

	if len(pairs) == 0 {
		return render.Copyable{Content: prettyJSON(raw), Label: render.Opt("datetime")}
	}
	return render.KeyValue{Title: render.Opt("  now"), Pairs: pairs}
}

// formatAttrsResponse renders an attributes-only envelope as a key-value
// table.
func formatAttrsResponse(obj map[string]any) render.Spec {
	entity := obj
	if inner, ok := obj["entity"].(map[string]any); ok {
		entity = inner
	}
	entityID := jsonStringOr(entity["entity_id"], "?")

	attrs, _ := entity["attributes"].(map[string]any)
	var pairs []render.KV
	for _, k := range sortedJSONKeys(attrs) {
		pairs = append(pairs, render.KV{k, displayJSON(attrs[k])})
	}

	if len(pairs) == 0 {
		return render.Textf("%s has no attributes.", entityID)
	}
	return render.KeyValue{Title: render.Opt("Attributes — " + entityID), Pairs: pairs}
}

// formatDiffResponse renders a two-entity comparison table over the union of
// their attribute keys.
func formatDiffResponse(obj map[string]any) render.Spec {
	entityA, _ := obj["entity_a"].(map[string]any)
	entityB, _ := obj["entity_b"].(map[string]any)

	idA := jsonStringOr(entityA["entity_id"], "?")
	idB := jsonStringOr(entityB["entity_id"], "?")

	rows := [][]string{{
		"state",
		jsonStringOr(entityA["state"], "?"),
		jsonStringOr(entityB["state"], "?"),
	}}

	attrsA, _ := entityA["attributes"].(map[string]any)
	attrsB, _ := entityB["attributes"].(map[string]any)

	keySet := map[string]bool{}
	for k := range attrsA {
		keySet[k] = true
	}
	for k := range attrsB {
		keySet[k] = true
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	side := func(attrs map[string]any, key string) string {
		if v, ok := attrs[key]; ok {
			return displayJSON(v)
		}
		return "—"
	}
	for _, key := range keys {
		// The diff keeps attribution visible; only display chrome is hidden.
		if key == "attribution" || !skipAttrKeys[key] {
			rows = append(rows, []string{key, side(attrsA, key), side(attrsB, key)})
		}
	}

	return render.VStack{Children: []render.Spec{
		render.Summary{Content: fmt.Sprintf("Comparing %s ↔ %s", idA, idB)},
		render.Table{Headers: []string{"attribute", idA, idB}, Rows: rows},
	}}
}

// -- small shared helpers --

func entitySummary(total int, domainCounts map[string]int) string {
	parts := make([]string, 0, len(domainCounts))
	for _, d := range sortedCountKeys(domainCounts) {
		parts = append(parts, fmt.Sprintf("%s: %d", d, domainCounts[d]))
	}
	return fmt.Sprintf("%d entities  (%s)", total, strings.Join(parts, ", "))
}

func stateWithUnit(state, unit string) string {
	if unit == "" {
		return state
	}
	if _, err := strconv.ParseFloat(state, 64); err != nil {
		return state
	}
	return state + " " + unit
}

// formatTimestamp shortens an ISO timestamp to its HH:MM:SS portion.
func formatTimestamp(ts string) string {
	if _, timePart, ok := strings.Cut(ts, "T"); ok {
		if len(timePart) > 8 {
			return timePart[:8]
		}
		return timePart
	}
	return ts
}

// Timestamp layouts hosts send, tried in order: RFC 3339 with and without
// fractional seconds, then offset-less variants treated as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseISOToMs converts an ISO 8601 timestamp to milliseconds since epoch.
// Offset suffixes shift the instant; timestamps without one read as UTC.
func parseISOToMs(ts string) (float64, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, ts, time.UTC); err == nil {
			return float64(t.UnixMilli()), true
		}
	}
	return 0, false
}

func jsonString(v any) string {
	s, _ := v.(string)
	return s
}

func jsonStringOr(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func jsonOpt(v any) *string {
	if s, ok := v.(string); ok {
		return render.Opt(s)
	}
	return nil
}

func jsonFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

// displayJSON formats a decoded JSON value compactly for display cells.
func displayJSON(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case nil:
		return "null"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func prettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		b, _ = json.Marshal(v)
	}
	return string(b)
}

func sortedJSONKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCountKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
