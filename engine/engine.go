// Package engine implements the shell execution bridge: it owns a session,
// dispatches console input (commands, bare entity names, script snippets),
// drives the sandboxed interpreter through pause/resume cycles, and shapes
// every outcome into a render spec.
//
// The engine initializes from configuration via New. Functional options
// allow test overrides of the interpreter factory or observer.
//
//	e, err := engine.New(&cfg)
//	spec := e.Evaluate("sensor.kitchen_temp")
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/signaldeck/shell-engine/bundle"
	"github.com/signaldeck/shell-engine/core/render"
	"github.com/signaldeck/shell-engine/core/value"
	"github.com/signaldeck/shell-engine/magic"
	"github.com/signaldeck/shell-engine/observability"
	"github.com/signaldeck/shell-engine/router"
	"github.com/signaldeck/shell-engine/sandbox"
	"github.com/signaldeck/shell-engine/sandbox/mini"
	"github.com/signaldeck/shell-engine/session"
)

// Host-bound script operations the interpreter pauses on. Local operations
// (show, ago, plot_*) are resolved by the engine without a host round trip.
var hostOps = []string{
	"state", "states", "history", "statistics", "call_service", "room",
	"rooms", "logbook", "template", "traces", "devices", "entities",
	"events", "check_config", "error_log", "now", "services",
}

// ScriptOps returns every operation name the default interpreter treats as
// an external call, host-bound and local alike.
func ScriptOps() []string {
	ops := make([]string, 0, len(hostOps)+6)
	ops = append(ops, hostOps...)
	ops = append(ops, "show", "ago", "plot_line", "plot_bar", "plot_pie", "plot_series")
	return ops
}

// Methods whose fulfilled responses are rendered as rich displays in
// addition to any script output.
var vizMethods = map[string]bool{
	"get_history":    true,
	"get_statistics": true,
	"get_logbook":    true,
	"get_services":   true,
	"get_datetime":   true,
	"get_trace":      true,
	"list_traces":    true,
}

// Option configures an Engine after config-driven initialization.
// Applied by New after cold start — overrides replace config-created defaults.
type Option func(*Engine)

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithInterpreterFactory overrides the default interpreter factory. The
// factory is invoked once at startup and again on every Reset.
func WithInterpreterFactory(f func() sandbox.Interpreter) Option {
	return func(e *Engine) { e.factory = f }
}

// WithSession overrides the config-created session.
func WithSession(s *session.Session) Option {
	return func(e *Engine) { e.session = s }
}

// WithBundleStore overrides the config-created bundle store.
func WithBundleStore(s bundle.Store) Option {
	return func(e *Engine) { e.bundles = s }
}

// Engine is the console runtime that executes the evaluate/fulfil cycle.
type Engine struct {
	session  *session.Session
	factory  func() sandbox.Interpreter
	observer observability.Observer
	bundles  bundle.Store

	prompt       string
	historyHours int
	askContext   int
	chartHeight  int
}

// New creates an Engine from configuration. The session is initialized from
// its config section and seeded with a fresh interpreter. Functional options
// applied after initialization can override any subsystem for testing.
func New(cfg *Config, opts ...Option) (*Engine, error) {
	merged := DefaultConfig()
	merged.Merge(cfg)

	bundles, err := bundle.NewStore(&merged.Bundles)
	if err != nil {
		return nil, fmt.Errorf("failed to create bundle store: %w", err)
	}

	e := &Engine{
		session:      session.New(&merged.Session),
		bundles:      bundles,
		factory:      func() sandbox.Interpreter { return mini.New(ScriptOps()...) },
		observer:     observability.NewSlogObserver(slog.Default()),
		prompt:       merged.Prompt,
		historyHours: merged.HistoryHours,
		askContext:   merged.AskContextLines,
		chartHeight:  merged.ChartHeight,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.session.StoreInterpreter(e.factory())
	return e, nil
}

// SessionID returns the unique identifier of the engine's session.
func (e *Engine) SessionID() string { return e.session.ID() }

// History returns a copy of the session's command history.
func (e *Engine) History() []string { return e.session.History() }

// Prompt returns the string shown before each input line.
func (e *Engine) Prompt() string { return e.prompt }

// Reset discards the session interpreter and any pending host call, then
// installs a fresh interpreter. Required after a fatal compile error or a
// discarded continuation left the session dead.
func (e *Engine) Reset() {
	if id := e.session.PendingID(); id != "" {
		if p, ok := e.session.TakePending(id); ok && p.Cont != nil {
			p.Cont.Discard()
		}
	}
	e.session.TakeInterpreter()
	e.session.StoreInterpreter(e.factory())
}

// Evaluate processes one line of console input and returns a render spec
// (or a host call request the caller must fulfil).
func (e *Engine) Evaluate(input string) render.Spec {
	trimmed := strings.TrimSpace(input)

	// Don't record empty input.
	if trimmed == "" {
		return render.Text{}
	}

	e.session.PushHistory(trimmed)
	e.emit(EventEvalStart, observability.LevelInfo, "engine.Evaluate", map[string]any{
		"input_length": len(trimmed),
	})

	if cmd, ok := magic.Parse(trimmed); ok {
		return e.dispatchCommand(cmd)
	}

	// Auto-resolve: bare entity_id reads the entity, bare domain lists it.
	if looksLikeEntityID(trimmed) {
		return e.dispatchCommand(magic.Command{Kind: magic.Get, Arg: trimmed})
	}
	if knownDomain(trimmed) {
		return e.dispatchCommand(magic.Command{Kind: magic.Ls, Arg: trimmed})
	}

	return e.evalScript(trimmed)
}

// dispatchCommand executes a parsed shell command. Host-bound commands
// allocate a call id and store a continuation-less pending call.
func (e *Engine) dispatchCommand(cmd magic.Command) render.Spec {
	switch cmd.Kind {
	case magic.Help:
		return render.Help{Content: magic.HelpText}

	case magic.Clear:
		// The frontend interprets this marker as "clear output".
		return render.Text{Content: "\x1b[clear]"}

	case magic.Ls:
		params := map[string]any{}
		if cmd.Arg != "" {
			params["domain"] = cmd.Arg
		}
		return e.commandCall("get_states", params)

	case magic.Get:
		return e.commandCall("get_state", map[string]any{"entity_id": cmd.Arg})

	case magic.Find:
		return e.commandCall("find_entities", map[string]any{"pattern": cmd.Arg})

	case magic.Hist:
		hours := e.historyHours
		if cmd.HasHours {
			hours = cmd.Hours
		}
		return e.commandCall("get_history", map[string]any{
			"entity_id": cmd.Arg,
			"hours":     hours,
		})

	case magic.Attrs:
		return e.commandCall("get_state", map[string]any{
			"entity_id":  cmd.Arg,
			"attrs_only": true,
		})

	case magic.Diff:
		return e.commandCall("get_diff", map[string]any{
			"entity_a": cmd.Arg,
			"entity_b": cmd.Arg2,
		})

	case magic.Bundle:
		return e.runBundle(cmd.Arg)

	case magic.Fmt:
		return render.Textf("Output format set to: %s", cmd.Arg)

	case magic.Ask:
		return e.commandCall("conversation_process", map[string]any{
			"text":    cmd.Arg,
			"context": e.askContextText(),
		})
	}
	return render.Errorf("Unknown command")
}

// runBundle loads a named snippet bundle from the store and evaluates it as
// script. Without a configured store every bundle reads as missing.
func (e *Engine) runBundle(name string) render.Spec {
	if e.bundles == nil {
		return render.Errorf("Bundle '%s' not found", name)
	}

	b, err := e.bundles.Load(context.Background(), name)
	if err != nil {
		if errors.Is(err, bundle.ErrNotFound) || errors.Is(err, bundle.ErrInvalidName) {
			return render.Errorf("Bundle '%s' not found", name)
		}
		e.emit(EventError, observability.LevelError, "engine.runBundle", map[string]any{
			"bundle": name,
			"error":  err.Error(),
		})
		return render.Errorf("Failed to load bundle '%s': %v", name, err)
	}

	snippet := strings.TrimSpace(b.Snippet)
	if snippet == "" {
		return render.Errorf("Bundle '%s' is empty", name)
	}
	return e.evalScript(snippet)
}

// askContextText builds the recent-command context attached to an %ask call.
func (e *Engine) askContextText() string {
	history := e.session.History()
	if len(history) == 0 {
		return ""
	}
	start := len(history) - e.askContext
	if start < 0 {
		start = 0
	}
	return "Recent shell commands:\n" + strings.Join(history[start:], "\n")
}

// commandCall issues a command-originated host call: no continuation, the
// response is formatted directly on fulfilment.
func (e *Engine) commandCall(method string, params map[string]any) render.Spec {
	if e.session.HasPending() {
		return e.pendingError()
	}

	id := e.session.NextCallID()
	e.session.StorePending(session.PendingCall{
		CallID: id,
		Method: method,
		Params: params,
	})
	e.emit(EventCallIssued, observability.LevelInfo, "engine.Evaluate", map[string]any{
		"call_id": id,
		"method":  method,
	})
	return render.HostCall{CallID: id, Method: method, Params: params}
}

func (e *Engine) pendingError() render.Spec {
	return render.Errorf("%s (%s). Fulfil or reset before evaluating again.",
		session.ErrCallPending, e.session.PendingID())
}

// evalScript runs input as a script snippet through the session interpreter.
func (e *Engine) evalScript(input string) render.Spec {
	if e.session.HasPending() {
		return e.pendingError()
	}

	interp, ok := e.session.TakeInterpreter()
	if !ok {
		return render.Errorf("%s", session.ErrSessionDead)
	}

	return e.classify(interp, input, "", nil, interp.Eval(input))
}

// classify drives an execution to its next resting point: completion, a
// stored host call, or an error. Local pauses (show, ago, plot_*) are
// resolved in-process and the continuation resumed, so one statement can
// chain any number of local and host pauses.
func (e *Engine) classify(
	interp sandbox.Interpreter,
	snippet string,
	prefixOut string,
	displays []render.Spec,
	res sandbox.Result,
) render.Spec {
	for {
		switch r := res.(type) {
		case sandbox.Completed:
			e.session.StoreInterpreter(interp)
			out := combineOutput(prefixOut, r.Output)
			e.emit(EventComplete, observability.LevelInfo, "engine.Evaluate", map[string]any{
				"output_length": len(out),
				"has_value":     r.HasValue,
			})
			return e.renderComplete(out, r, displays)

		case sandbox.Paused:
			prefixOut = combineOutput(prefixOut, r.Output)
			dec := router.Route(r.Op, r.Args)

			if dec.Err != nil {
				// Recognized call with unusable arguments. The continuation
				// is unusable too; the session stays dead until Reset.
				r.Cont.Discard()
				e.emit(EventError, observability.LevelError, "engine.Evaluate", map[string]any{
					"op":    r.Op,
					"error": dec.Err.Error(),
				})
				return stackError(prefixOut, displays, dec.Err.Error())
			}

			switch dec.Kind {
			case router.KindLocal:
				var resumed value.Value
				switch r.Op {
				case "show":
					v := argOr(r.Args, 0)
					e.session.SetLastResult(v)
					displays = append(displays, e.formatShow(v))
					resumed = value.Null()
				case "ago":
					resumed = value.Int(router.Lookback(argOr(r.Args, 0), int64(e.historyHours)))
				default:
					displays = append(displays, e.buildChart(r.Op, r.Args))
					resumed = value.Null()
				}
				e.emit(EventLocalResolved, observability.LevelVerbose, "engine.Evaluate", map[string]any{
					"op": r.Op,
				})
				res = r.Cont.Resume(resumed)

			case router.KindHost:
				id := e.session.NextCallID()
				e.session.StoreInterpreter(interp)
				e.session.StorePending(session.PendingCall{
					CallID:        id,
					Cont:          r.Cont,
					OutputSoFar:   prefixOut,
					OriginSnippet: snippet,
					Method:        dec.Method,
					Params:        dec.Params,
					Displays:      displays,
				})
				e.emit(EventCallIssued, observability.LevelInfo, "engine.Evaluate", map[string]any{
					"call_id": id,
					"method":  dec.Method,
				})
				return render.HostCall{CallID: id, Method: dec.Method, Params: dec.Params}

			default:
				r.Cont.Discard()
				e.emit(EventError, observability.LevelError, "engine.Evaluate", map[string]any{
					"op": r.Op,
				})
				return stackError(prefixOut, displays, fmt.Sprintf("Unknown function: %s", r.Op))
			}

		case sandbox.Failed:
			if !r.Fatal {
				e.session.StoreInterpreter(interp)
			}
			e.emit(EventError, observability.LevelError, "engine.Evaluate", map[string]any{
				"error": r.Err.Error(),
				"fatal": r.Fatal,
			})
			return stackError(combineOutput(prefixOut, r.Output), displays, r.Err.Error())

		default:
			return render.Errorf("Unexpected interpreter result")
		}
	}
}

// renderComplete shapes a completed run: records the last result, stacks
// queued displays in order, and auto-displays entity records richly. All
// other values render as a plain "→ value" line.
func (e *Engine) renderComplete(out string, r sandbox.Completed, displays []render.Spec) render.Spec {
	if r.HasValue {
		e.session.SetLastResult(r.Value)
	} else {
		e.session.SetLastResult(value.Null())
	}

	var specs []render.Spec
	if out != "" {
		specs = append(specs, render.Text{Content: out})
	}
	specs = append(specs, displays...)

	// None results are not echoed, matching interactive interpreter behavior.
	if r.HasValue && !r.Value.IsNull() {
		if isEntityRecord(r.Value) || isEntityRecordList(r.Value) {
			specs = append(specs, e.formatShow(r.Value))
		} else {
			specs = append(specs, render.Textf("→ %s", r.Value))
		}
	}

	return stack(specs)
}

// Fulfil completes a pending host call with the host's JSON response.
// The payload is parsed before the pending entry is consumed, so a malformed
// response can be retried with the same call id.
func (e *Engine) Fulfil(callID, data string) render.Spec {
	raw, err := decodeResponse(data)
	if err != nil {
		e.emit(EventError, observability.LevelError, "engine.Fulfil", map[string]any{
			"call_id": callID,
			"error":   err.Error(),
		})
		return render.Errorf("%s", err)
	}

	p, ok := e.session.TakePending(callID)
	if !ok {
		return render.Errorf("%s: %s", session.ErrNoPendingCall, callID)
	}

	e.emit(EventResume, observability.LevelInfo, "engine.Fulfil", map[string]any{
		"call_id": p.CallID,
		"method":  p.Method,
	})

	// Command-originated call: format the response directly.
	if p.Cont == nil {
		return e.formatCommandResponse(p, raw)
	}

	interp, ok := e.session.TakeInterpreter()
	if !ok {
		p.Cont.Discard()
		return render.Errorf("%s", session.ErrSessionDead)
	}

	res := p.Cont.Resume(convertResponse(p.Method, raw))

	// Responses from the visualization methods get a rich display appended
	// when the resume runs to completion.
	if done, isDone := res.(sandbox.Completed); isDone && vizMethods[p.Method] {
		e.session.StoreInterpreter(interp)
		if done.HasValue {
			e.session.SetLastResult(done.Value)
		} else {
			e.session.SetLastResult(value.Null())
		}

		var specs []render.Spec
		if out := combineOutput(p.OutputSoFar, done.Output); out != "" {
			specs = append(specs, render.Text{Content: out})
		}
		specs = append(specs, p.Displays...)
		specs = append(specs, e.visualize(p.Method, raw, p.Params))
		e.emit(EventComplete, observability.LevelInfo, "engine.Fulfil", map[string]any{
			"method": p.Method,
		})
		return stack(specs)
	}

	return e.classify(interp, p.OriginSnippet, p.OutputSoFar, p.Displays, res)
}

// formatCommandResponse shapes the host's answer to a command-originated
// call. Envelope markers take precedence over method-based shaping.
func (e *Engine) formatCommandResponse(p session.PendingCall, raw any) render.Spec {
	if obj, ok := raw.(map[string]any); ok {
		if _, conv := obj["__conversation"]; conv {
			return render.NewAssistant(jsonString(obj["response"]), jsonStringOr(obj["agent_id"], "unknown"))
		}
		if _, diff := obj["__diff"]; diff {
			return formatDiffResponse(obj)
		}
		if _, attrs := obj["__attrs_only"]; attrs {
			return formatAttrsResponse(obj)
		}
	}
	if vizMethods[p.Method] {
		return e.visualize(p.Method, raw, p.Params)
	}
	return e.formatHostResponse(raw)
}

// visualize selects the response-shaping for an auto-visualized method.
func (e *Engine) visualize(method string, raw any, params map[string]any) render.Spec {
	switch method {
	case "get_logbook":
		return formatLogbookResponse(raw, params)
	case "get_services":
		return formatServicesResponse(raw)
	case "get_datetime":
		return formatDatetimeResponse(raw)
	case "get_trace", "list_traces":
		return formatTracesResponse(raw, params)
	default:
		return e.formatHostResponse(raw)
	}
}

// convertResponse turns the host payload into the value a resumed snippet
// receives. State-shaped responses become typed entity records.
func convertResponse(method string, raw any) value.Value {
	switch method {
	case "get_state":
		return value.EntityRecord(raw)
	case "get_states":
		return value.EntityRecordList(raw)
	case "get_area_entities":
		if obj, ok := raw.(map[string]any); ok {
			if entities, present := obj["entities"]; present {
				return value.EntityRecordList(entities)
			}
		}
		// Error envelope: pass through as a generic value.
		return value.Decode(raw)
	default:
		return value.Decode(raw)
	}
}

func decodeResponse(data string) (any, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse host response: %w", err)
	}
	return raw, nil
}

func (e *Engine) emit(t observability.EventType, level observability.Level, source string, data map[string]any) {
	e.observer.OnEvent(context.Background(), observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}

func argOr(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Null()
}

func stack(specs []render.Spec) render.Spec {
	switch len(specs) {
	case 0:
		return render.Text{}
	case 1:
		return specs[0]
	default:
		return render.VStack{Children: specs}
	}
}

func stackError(out string, displays []render.Spec, msg string) render.Spec {
	var specs []render.Spec
	if out != "" {
		specs = append(specs, render.Text{Content: out})
	}
	specs = append(specs, displays...)
	specs = append(specs, render.Error{Message: msg})
	return stack(specs)
}

func combineOutput(prefix, next string) string {
	if prefix == "" {
		return next
	}
	if next == "" {
		return prefix
	}
	return prefix + next
}

// Known domains for auto-resolve.
var knownDomains = map[string]bool{
	"alarm_control_panel": true, "automation": true, "binary_sensor": true,
	"button": true, "calendar": true, "camera": true, "climate": true,
	"counter": true, "cover": true, "device_tracker": true, "fan": true,
	"group": true, "humidifier": true, "image": true, "input_boolean": true,
	"input_datetime": true, "input_number": true, "input_select": true,
	"input_text": true, "light": true, "lock": true, "media_player": true,
	"notify": true, "number": true, "person": true, "remote": true,
	"scene": true, "script": true, "select": true, "sensor": true,
	"siren": true, "sun": true, "switch": true, "timer": true, "todo": true,
	"tts": true, "update": true, "vacuum": true, "water_heater": true,
	"weather": true, "zone": true,
}

func knownDomain(input string) bool { return knownDomains[input] }

// looksLikeEntityID reports whether input is a domain.object_id pair with a
// known domain and a word-only object id.
func looksLikeEntityID(input string) bool {
	domain, objectID, ok := strings.Cut(input, ".")
	if !ok || domain == "" || objectID == "" || !knownDomains[domain] {
		return false
	}
	for _, c := range objectID {
		if !isWordRune(c) {
			return false
		}
	}
	return true
}

func isWordRune(c rune) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
