package replay_test

import (
	"strings"
	"testing"

	"github.com/signaldeck/shell-engine/core/value"
	"github.com/signaldeck/shell-engine/sandbox"
	"github.com/signaldeck/shell-engine/sandbox/mini"
	"github.com/signaldeck/shell-engine/sandbox/replay"
)

// freshRunner runs each source in a brand new interpreter, modelling a
// snapshot-only backend.
type freshRunner struct {
	externals []string
}

func (f freshRunner) Run(src string) sandbox.Result {
	return mini.New(f.externals...).Eval(src)
}

func TestBindingsPersistViaReplay(t *testing.T) {
	a := replay.New(freshRunner{})
	if _, ok := a.Eval("x = 42").(sandbox.Completed); !ok {
		t.Fatal("assignment failed")
	}
	c, ok := a.Eval("x + 1").(sandbox.Completed)
	if !ok || c.Value.I != 43 {
		t.Fatalf("x + 1 = %#v", c)
	}
}

func TestPrefixOutputStripped(t *testing.T) {
	a := replay.New(freshRunner{})
	c := a.Eval("print('first')").(sandbox.Completed)
	if c.Output != "first\n" {
		t.Fatalf("output = %q", c.Output)
	}
	c = a.Eval("print('second')").(sandbox.Completed)
	if c.Output != "second\n" {
		t.Errorf("replayed prefix output leaked: %q", c.Output)
	}
}

func TestFailedSnippetNotCommitted(t *testing.T) {
	a := replay.New(freshRunner{})
	a.Eval("x = 1")
	if _, ok := a.Eval("1/0").(sandbox.Failed); !ok {
		t.Fatal("expected failure")
	}
	if got := a.Prefix(); len(got) != 1 || got[0] != "x = 1" {
		t.Errorf("prefix = %v", got)
	}
	c := a.Eval("x").(sandbox.Completed)
	if c.Value.I != 1 {
		t.Errorf("x = %v", c.Value)
	}
}

func TestUnderscoreSnippetNotCommitted(t *testing.T) {
	a := replay.New(freshRunner{})
	a.Eval("6 * 7")
	a.Eval("data = _")
	if got := a.Prefix(); len(got) != 1 || got[0] != "6 * 7" {
		t.Errorf("prefix = %v", got)
	}
}

func TestUnderscoreInIdentifierCommitted(t *testing.T) {
	a := replay.New(freshRunner{})
	a.Eval("my_var = 1")
	a.Eval("_private = 42")
	a.Eval("v = 'has _ inside'")
	a.Eval("w = 1  # uses _ in comment")
	got := a.Prefix()
	if len(got) != 4 {
		t.Errorf("prefix = %v", got)
	}
}

func TestPausedSnippetNotCommitted(t *testing.T) {
	a := replay.New(freshRunner{externals: []string{"get_state"}})
	a.Eval("x = 1")
	p, ok := a.Eval("get_state('light.a')").(sandbox.Paused)
	if !ok {
		t.Fatal("expected pause")
	}
	if _, ok := p.Cont.Resume(value.Str("on")).(sandbox.Completed); !ok {
		t.Fatal("resume failed")
	}
	if got := a.Prefix(); len(got) != 1 {
		t.Errorf("paused snippet committed: %v", got)
	}
}

// poisonRunner succeeds for solo snippets but fails any combined source
// containing the marker, standing in for a prefix that no longer replays.
type poisonRunner struct{}

func (poisonRunner) Run(src string) sandbox.Result {
	if strings.Contains(src, "POISON") && strings.Contains(src, "\n") {
		return mini.New().Eval("1/0")
	}
	return mini.New().Eval(src)
}

func TestPoisonedPrefixDiscarded(t *testing.T) {
	a := replay.New(poisonRunner{})
	// Commits fine on its own, then breaks every combined replay.
	if _, ok := a.Eval("p = 'POISON ok'").(sandbox.Failed); ok {
		t.Fatal("setup snippet should commit")
	}
	c, ok := a.Eval("2 + 2").(sandbox.Completed)
	if !ok || c.Value.I != 4 {
		t.Fatalf("retry result = %#v", c)
	}
	if got := a.Prefix(); len(got) != 1 || got[0] != "2 + 2" {
		t.Errorf("prefix after poison clear = %v", got)
	}
}

func TestBrokenSnippetKeepsPrefix(t *testing.T) {
	a := replay.New(freshRunner{})
	a.Eval("x = 1")
	if _, ok := a.Eval("nope + 1").(sandbox.Failed); !ok {
		t.Fatal("expected failure")
	}
	if got := a.Prefix(); len(got) != 1 || got[0] != "x = 1" {
		t.Errorf("prefix = %v", got)
	}
}
