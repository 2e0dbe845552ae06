// Package mini is a small persistent interpreter implementing the sandbox
// contract. It evaluates assignment and expression statements against a
// binding set that survives across Eval calls, and pauses whenever a snippet
// calls one of the configured external function names. It backs the local
// REPL and the engine tests; a production deployment can swap in a full
// interpreter behind the same interface.
package mini

import (
	"errors"

	"github.com/signaldeck/shell-engine/core/value"
	"github.com/signaldeck/shell-engine/sandbox"
)

// Interp is a persistent interpreter. Not safe for concurrent use.
type Interp struct {
	globals  map[string]value.Value
	external map[string]bool
	active   *run
}

// New returns an interpreter that pauses on calls to the given external
// function names.
func New(externals ...string) *Interp {
	ext := make(map[string]bool, len(externals))
	for _, name := range externals {
		ext[name] = true
	}
	return &Interp{
		globals:  make(map[string]value.Value),
		external: ext,
	}
}

// Bind sets a global, for pre-seeding test fixtures.
func (in *Interp) Bind(name string, v value.Value) {
	in.globals[name] = v
}

// Lookup reads a global.
func (in *Interp) Lookup(name string) (value.Value, bool) {
	v, ok := in.globals[name]
	return v, ok
}

// run carries one snippet's execution, which lives in its own goroutine so
// that a pause can freeze arbitrarily deep expression state. Closing quitC
// aborts a parked run; doneC is buffered so the final send never blocks an
// abandoned goroutine.
type run struct {
	pauseC  chan pauseMsg
	resumeC chan value.Value
	doneC   chan doneMsg
	quitC   chan struct{}
}

// errRunDiscarded unwinds a run whose continuation was abandoned.
var errRunDiscarded = errors.New("run discarded")

type pauseMsg struct {
	op     string
	args   []value.Value
	output string
}

type doneMsg struct {
	output   string
	value    value.Value
	hasValue bool
	err      error
	scratch  map[string]value.Value
}

// Eval parses and runs a snippet. Parse failures are fatal and nothing
// executes; runtime failures leave previously committed bindings intact.
// Bindings commit only when the whole snippet completes.
func (in *Interp) Eval(snippet string) sandbox.Result {
	if in.active != nil {
		return sandbox.Failed{Err: errors.New("evaluation already in progress")}
	}
	stmts, err := parse(snippet)
	if err != nil {
		return sandbox.Failed{Err: err, Fatal: true}
	}

	scratch := make(map[string]value.Value, len(in.globals))
	for k, v := range in.globals {
		scratch[k] = v
	}

	r := &run{
		pauseC:  make(chan pauseMsg),
		resumeC: make(chan value.Value),
		doneC:   make(chan doneMsg, 1),
		quitC:   make(chan struct{}),
	}
	ev := &evaluator{
		bindings: scratch,
		external: in.external,
	}
	ev.pause = func(op string, args []value.Value) (value.Value, error) {
		r.pauseC <- pauseMsg{op: op, args: args, output: ev.takeOutput()}
		select {
		case v := <-r.resumeC:
			return v, nil
		case <-r.quitC:
			return value.Value{}, errRunDiscarded
		}
	}
	go func() {
		v, hasValue, err := ev.runStmts(stmts)
		r.doneC <- doneMsg{
			output:   ev.takeOutput(),
			value:    v,
			hasValue: hasValue,
			err:      err,
			scratch:  ev.bindings,
		}
	}()
	return in.wait(r)
}

// wait blocks until the run either pauses or finishes, and folds the outcome
// into a sandbox.Result.
func (in *Interp) wait(r *run) sandbox.Result {
	select {
	case p := <-r.pauseC:
		in.active = r
		return sandbox.Paused{
			Output: p.output,
			Op:     p.op,
			Args:   p.args,
			Cont:   &continuation{in: in, r: r},
		}
	case d := <-r.doneC:
		in.active = nil
		if d.err != nil {
			return sandbox.Failed{Output: d.output, Err: d.err}
		}
		in.globals = d.scratch
		if d.hasValue && !d.value.IsNull() {
			in.globals["_"] = d.value
			return sandbox.Completed{Output: d.output, Value: d.value, HasValue: true}
		}
		return sandbox.Completed{Output: d.output}
	}
}

type continuation struct {
	in   *Interp
	r    *run
	used bool
}

// Resume feeds the host's answer into the paused run. A continuation resumes
// at most once.
func (c *continuation) Resume(v value.Value) sandbox.Result {
	if c.used {
		return sandbox.Failed{Err: errors.New("continuation already consumed")}
	}
	c.used = true
	c.r.resumeC <- v
	return c.in.wait(c.r)
}

// Discard abandons the paused run: the parked goroutine unwinds and the
// interpreter becomes free for a fresh Eval.
func (c *continuation) Discard() {
	if c.used {
		return
	}
	c.used = true
	close(c.r.quitC)
	<-c.r.doneC
	c.in.active = nil
}
