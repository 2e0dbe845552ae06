package render

import "encoding/json"

// Each variant marshals its fields flattened beside a "type" discriminator.
// The alias types break the MarshalJSON recursion.

func (s Text) MarshalJSON() ([]byte, error) {
	type alias Text
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"text", alias(s)})
}

func (s Error) MarshalJSON() ([]byte, error) {
	type alias Error
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"error", alias(s)})
}

func (s Table) MarshalJSON() ([]byte, error) {
	type alias Table
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"table", alias(s)})
}

func (s HostCall) MarshalJSON() ([]byte, error) {
	type alias HostCall
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"host_call", alias(s)})
}

func (s VStack) MarshalJSON() ([]byte, error) {
	type alias VStack
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"vstack", alias(s)})
}

func (s HStack) MarshalJSON() ([]byte, error) {
	type alias HStack
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"hstack", alias(s)})
}

func (s Help) MarshalJSON() ([]byte, error) {
	type alias Help
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"help", alias(s)})
}

func (s EntityCard) MarshalJSON() ([]byte, error) {
	type alias EntityCard
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"entity_card", alias(s)})
}

func (s KeyValue) MarshalJSON() ([]byte, error) {
	type alias KeyValue
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"key_value", alias(s)})
}

func (s Badge) MarshalJSON() ([]byte, error) {
	type alias Badge
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"badge", alias(s)})
}

func (s Copyable) MarshalJSON() ([]byte, error) {
	type alias Copyable
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"copyable", alias(s)})
}

func (s Summary) MarshalJSON() ([]byte, error) {
	type alias Summary
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"summary", alias(s)})
}

func (s Assistant) MarshalJSON() ([]byte, error) {
	type alias Assistant
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"assistant", alias(s)})
}

func (s Sparkline) MarshalJSON() ([]byte, error) {
	type alias Sparkline
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"sparkline", alias(s)})
}

func (s Timeline) MarshalJSON() ([]byte, error) {
	type alias Timeline
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"timeline", alias(s)})
}

func (s Logbook) MarshalJSON() ([]byte, error) {
	type alias Logbook
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"logbook", alias(s)})
}

func (s TraceList) MarshalJSON() ([]byte, error) {
	type alias TraceList
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"trace_list", alias(s)})
}

func (s ECharts) MarshalJSON() ([]byte, error) {
	type alias ECharts
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"echarts", alias(s)})
}

func (s CalendarEvents) MarshalJSON() ([]byte, error) {
	type alias CalendarEvents
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"calendar_events", alias(s)})
}
