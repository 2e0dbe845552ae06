// Package sandbox defines the execution contract between the shell engine and
// a script interpreter. An interpreter runs a snippet until it either
// completes, fails, or pauses at a call the host must answer. A pause hands
// back a Continuation that freezes the interpreter mid-execution; feeding it
// a value resumes exactly where the script stopped.
package sandbox

import "github.com/signaldeck/shell-engine/core/value"

// Interpreter evaluates snippets against a persistent set of bindings.
// While an evaluation is paused the interpreter lives inside the returned
// continuation, and callers must not evaluate again until the continuation
// chain ends in Completed or Failed.
type Interpreter interface {
	Eval(snippet string) Result
}

// Continuation is a frozen mid-execution interpreter state. Resume consumes
// it: a continuation resumes at most once. Discard abandons the paused run
// and releases whatever backs it; a discarded continuation cannot be resumed.
type Continuation interface {
	Resume(v value.Value) Result
	Discard()
}

// Result is the outcome of an Eval or Resume: exactly one of Completed,
// Paused, or Failed.
type Result interface {
	result()
}

// Completed is a run that finished. Output holds everything the snippet
// printed; Value holds the final expression's value when HasValue is set.
type Completed struct {
	Output   string
	Value    value.Value
	HasValue bool
}

// Paused is a run stopped at a host-data call. Op and Args identify the call
// site; Cont resumes the run once the host's answer is available.
type Paused struct {
	Output string
	Op     string
	Args   []value.Value
	Cont   Continuation
}

// Failed is a run that errored. Fatal marks pre-execution failures (syntax,
// unbalanced delimiters) after which the interpreter instance is unusable;
// non-fatal failures leave previously committed bindings intact.
type Failed struct {
	Output string
	Err    error
	Fatal  bool
}

func (Completed) result() {}
func (Paused) result()    {}
func (Failed) result()    {}
