package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <input>",
	Short: "Evaluate one input against the fixture dataset and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := buildEngine()
		if err != nil {
			return err
		}
		host := newFixtureHost()

		input := strings.Join(args, " ")
		if out := resolve(e, host, e.Evaluate(input)); out != "" {
			fmt.Println(out)
		}
		return nil
	},
}
