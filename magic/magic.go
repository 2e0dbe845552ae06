// Package magic parses the shell's command sugar: colon commands (:help,
// :clear) and percent commands (%ls, %get, ...) that expand to host lookups
// without writing script.
package magic

import (
	"strconv"
	"strings"
)

// Kind identifies a parsed command.
type Kind int

const (
	Help Kind = iota
	Clear
	Ls
	Get
	Find
	Hist
	Attrs
	Diff
	Bundle
	Fmt
	Ask
)

// Command is one parsed shell command.
type Command struct {
	Kind Kind

	// Arg is the primary argument: domain for Ls (may be empty), entity id
	// for Get/Hist/Attrs, pattern for Find, first entity for Diff, bundle
	// name, format name, or the Ask question.
	Arg string

	// Arg2 is the second entity for Diff.
	Arg2 string

	// Hours is the Hist lookback when HasHours is set.
	Hours    int
	HasHours bool
}

// Parse tries to read input as a shell command. It returns ok=false for
// anything that should be evaluated as script instead, including percent
// commands missing their required argument.
func Parse(input string) (Command, bool) {
	trimmed := strings.TrimSpace(input)

	switch trimmed {
	case ":help", ":h":
		return Command{Kind: Help}, true
	case ":clear", ":cls":
		return Command{Kind: Clear}, true
	}

	if !strings.HasPrefix(trimmed, "%") {
		return Command{}, false
	}

	parts := strings.Fields(trimmed[1:])
	if len(parts) == 0 {
		return Command{}, false
	}

	argAt := func(i int) (string, bool) {
		if i < len(parts) {
			return parts[i], true
		}
		return "", false
	}

	switch parts[0] {
	case "ls":
		cmd := Command{Kind: Ls}
		cmd.Arg, _ = argAt(1)
		return cmd, true
	case "get":
		if id, ok := argAt(1); ok {
			return Command{Kind: Get, Arg: id}, true
		}
	case "find":
		if pattern, ok := argAt(1); ok {
			return Command{Kind: Find, Arg: pattern}, true
		}
	case "hist":
		id, ok := argAt(1)
		if !ok {
			return Command{}, false
		}
		cmd := Command{Kind: Hist, Arg: id}
		if flag, ok := argAt(2); ok && flag == "-h" {
			if raw, ok := argAt(3); ok {
				if hours, err := strconv.Atoi(raw); err == nil {
					cmd.Hours, cmd.HasHours = hours, true
				}
			}
		}
		return cmd, true
	case "attrs", "attributes":
		if id, ok := argAt(1); ok {
			return Command{Kind: Attrs, Arg: id}, true
		}
	case "diff", "compare":
		a, okA := argAt(1)
		b, okB := argAt(2)
		if okA && okB {
			return Command{Kind: Diff, Arg: a, Arg2: b}, true
		}
	case "bundle":
		if name, ok := argAt(1); ok {
			return Command{Kind: Bundle, Arg: name}, true
		}
	case "fmt":
		if format, ok := argAt(1); ok {
			return Command{Kind: Fmt, Arg: format}, true
		}
	case "ask", "assistant":
		// Everything after the command word is the question.
		rest := strings.TrimSpace(strings.TrimPrefix(trimmed[1:], parts[0]))
		if rest != "" {
			return Command{Kind: Ask, Arg: rest}, true
		}
	}
	return Command{}, false
}
