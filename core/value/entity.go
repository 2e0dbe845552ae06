package value

import "strings"

// States that count as "on" or "off" for the convenience booleans on an
// entity record. Anything else (numeric sensors, unavailable, unknown)
// reports false for both.
var (
	onStates  = map[string]bool{"on": true, "home": true, "open": true, "playing": true, "active": true}
	offStates = map[string]bool{"off": true, "not_home": true, "closed": true, "idle": true, "paused": true, "standby": true}
)

// EntityRecord converts a decoded host state object into an EntityState
// record with a fixed field order. Missing string fields default to "",
// missing attributes default to an empty dict. The domain and object_id
// fields are derived from entity_id; name falls back to entity_id when
// attributes carry no friendly_name.
func EntityRecord(raw any) Value {
	obj, _ := raw.(map[string]any)

	entityID := jsonStr(obj["entity_id"])
	state := jsonStr(obj["state"])
	lastChanged := jsonStr(obj["last_changed"])
	lastUpdated := jsonStr(obj["last_updated"])

	domain, objectID := "", entityID
	if d, o, ok := strings.Cut(entityID, "."); ok {
		domain, objectID = d, o
	}

	attrs := Dict()
	name := entityID
	if am, ok := obj["attributes"].(map[string]any); ok {
		attrs = Decode(am)
		if fn := jsonStr(am["friendly_name"]); fn != "" {
			name = fn
		}
	}

	return NewRecord("EntityState",
		Field{Name: "entity_id", Val: Str(entityID)},
		Field{Name: "state", Val: Str(state)},
		Field{Name: "attributes", Val: attrs},
		Field{Name: "last_changed", Val: Str(lastChanged)},
		Field{Name: "last_updated", Val: Str(lastUpdated)},
		Field{Name: "domain", Val: Str(domain)},
		Field{Name: "object_id", Val: Str(objectID)},
		Field{Name: "name", Val: Str(name)},
		Field{Name: "is_on", Val: Bool(onStates[state])},
		Field{Name: "is_off", Val: Bool(offStates[state])},
	)
}

// EntityRecordList converts a decoded host array into a list of
// EntityState records. Non-array input yields an empty list.
func EntityRecordList(raw any) Value {
	arr, ok := raw.([]any)
	if !ok {
		return List()
	}
	items := make([]Value, 0, len(arr))
	for _, el := range arr {
		items = append(items, EntityRecord(el))
	}
	return List(items...)
}

func jsonStr(v any) string {
	s, _ := v.(string)
	return s
}
