package observability

import (
	"context"
	"log/slog"
	"sort"
)

// SlogObserver emits events to a slog.Logger. The event type becomes the log
// message, Source becomes a "source" attribute, and Data keys follow in
// sorted order so console stderr output stays deterministic.
type SlogObserver struct {
	logger *slog.Logger
	min    Level
}

// NewSlogObserver creates a SlogObserver that emits every event to the given
// logger.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger, min: LevelVerbose}
}

// WithMinLevel returns a copy that drops events below the given level.
// Keeps engine chatter out of an interactive session's stderr.
func (o *SlogObserver) WithMinLevel(min Level) *SlogObserver {
	return &SlogObserver{logger: o.logger, min: min}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	if event.Level < o.min {
		return
	}

	keys := make([]string, 0, len(event.Data))
	for k := range event.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys)+1)
	attrs = append(attrs, slog.String("source", event.Source))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, event.Data[k]))
	}

	o.logger.LogAttrs(ctx, event.Level.SlogLevel(), string(event.Type), attrs...)
}
