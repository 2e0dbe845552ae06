package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signaldeck/shell-engine/core/render"
	"github.com/signaldeck/shell-engine/engine"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session against the fixture dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := buildEngine()
		if err != nil {
			return err
		}
		host := newFixtureHost()

		fmt.Println(dimStyle.Render("signal-deck shell  (fixture data, :help for commands, exit to quit)"))

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print(e.Prompt())
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "exit" || line == "quit" {
				return nil
			}

			if out := resolve(e, host, e.Evaluate(line)); out != "" {
				fmt.Println(out)
			}
		}
	},
}

// resolve renders a spec, answering host calls from the fixture until the
// snippet runs to completion. A snippet can pause more than once.
func resolve(e *engine.Engine, host *fixtureHost, spec render.Spec) string {
	for {
		hc, ok := spec.(render.HostCall)
		if !ok {
			break
		}
		params, _ := hc.Params.(map[string]any)
		spec = e.Fulfil(hc.CallID, host.Fulfil(hc.Method, params))
	}
	return Render(spec)
}
