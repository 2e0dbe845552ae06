// Package replay adapts a from-scratch script runner into the persistent
// sandbox.Interpreter contract. Some interpreters cannot keep a live session
// between snippets; this adapter fakes one by replaying every previously
// successful snippet as a prefix ahead of each new snippet, then stripping the
// prefix's replayed output from the result.
package replay

import (
	"strings"

	"github.com/signaldeck/shell-engine/sandbox"
)

// Runner executes a complete source in a fresh interpreter each call.
type Runner interface {
	Run(src string) sandbox.Result
}

// Adapter implements sandbox.Interpreter over a Runner. Not safe for
// concurrent use.
type Adapter struct {
	runner Runner

	// Committed snippets, replayed ahead of each eval so bindings persist.
	prefix []string

	// Byte length of the prefix's own output in a full replay. Replay is
	// deterministic, so the measurement from the committing run stays valid.
	prefixOut int
}

// New wraps a runner in a replay adapter.
func New(r Runner) *Adapter {
	return &Adapter{runner: r}
}

// Prefix returns the committed snippets, for inspection.
func (a *Adapter) Prefix() []string {
	return append([]string(nil), a.prefix...)
}

// Eval runs the accumulated prefix plus the snippet. On success the snippet
// joins the prefix, unless it references `_` as a standalone identifier:
// `_` changes every eval, so replaying such a snippet later would bind
// against a stale value. On failure the snippet is retried without the
// prefix; if the retry succeeds the prefix itself was poisoned (stale
// variables, changed types) and is discarded in favor of the clean result.
func (a *Adapter) Eval(snippet string) sandbox.Result {
	if len(a.prefix) == 0 {
		return a.finish(snippet, a.runner.Run(snippet), 0)
	}

	src := strings.Join(a.prefix, "\n") + "\n" + snippet
	res := a.runner.Run(src)
	if _, isErr := res.(sandbox.Failed); isErr {
		retry := a.runner.Run(snippet)
		if _, retryErr := retry.(sandbox.Failed); !retryErr {
			a.prefix = nil
			a.prefixOut = 0
			return a.finish(snippet, retry, 0)
		}
		// Both failed: the snippet itself is broken, keep the prefix.
	}
	return a.finish(snippet, res, a.prefixOut)
}

// finish strips the replayed prefix output and commits completed snippets.
func (a *Adapter) finish(snippet string, res sandbox.Result, strip int) sandbox.Result {
	switch r := res.(type) {
	case sandbox.Completed:
		total := r.Output
		r.Output = stripPrefix(total, strip)
		if !referencesUnderscore(snippet) {
			a.prefix = append(a.prefix, snippet)
			a.prefixOut = len(total)
		}
		return r
	case sandbox.Paused:
		// Paused snippets never commit: the replayed prefix must stay a
		// sequence of self-contained runs.
		r.Output = stripPrefix(r.Output, strip)
		return r
	case sandbox.Failed:
		r.Output = stripPrefix(r.Output, strip)
		return r
	}
	return res
}

func stripPrefix(out string, n int) string {
	if n <= 0 || n > len(out) {
		return out
	}
	return out[n:]
}

// referencesUnderscore reports whether code uses `_` as a standalone
// identifier, skipping string literals and comments so names like my_var or
// "_" inside strings do not count.
func referencesUnderscore(code string) bool {
	b := []byte(code)
	for i := 0; i < len(b); i++ {
		switch {
		case b[i] == '"' || b[i] == '\'':
			quote := b[i]
			for i++; i < len(b) && b[i] != quote; i++ {
				if b[i] == '\\' {
					i++
				}
			}
		case b[i] == '#':
			for i < len(b) && b[i] != '\n' {
				i++
			}
		case b[i] == '_':
			beforeOK := i == 0 || !isIdentByte(b[i-1])
			afterOK := i+1 >= len(b) || !isIdentByte(b[i+1])
			if beforeOK && afterOK {
				return true
			}
		}
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
