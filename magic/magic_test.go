package magic_test

import (
	"testing"

	"github.com/signaldeck/shell-engine/magic"
)

func TestParseColonCommands(t *testing.T) {
	for input, kind := range map[string]magic.Kind{
		":help":  magic.Help,
		":h":     magic.Help,
		":clear": magic.Clear,
		":cls":   magic.Clear,
	} {
		cmd, ok := magic.Parse(input)
		if !ok || cmd.Kind != kind {
			t.Errorf("Parse(%q) = %+v, %v", input, cmd, ok)
		}
	}
}

func TestParseLs(t *testing.T) {
	cmd, ok := magic.Parse("%ls")
	if !ok || cmd.Kind != magic.Ls || cmd.Arg != "" {
		t.Errorf("%%ls = %+v, %v", cmd, ok)
	}
	cmd, ok = magic.Parse("%ls binary_sensor")
	if !ok || cmd.Arg != "binary_sensor" {
		t.Errorf("%%ls domain = %+v, %v", cmd, ok)
	}
}

func TestParseGetRequiresArgument(t *testing.T) {
	if _, ok := magic.Parse("%get"); ok {
		t.Errorf("%%get without id should not parse")
	}
	cmd, ok := magic.Parse("%get sensor.temp")
	if !ok || cmd.Kind != magic.Get || cmd.Arg != "sensor.temp" {
		t.Errorf("got %+v, %v", cmd, ok)
	}
}

func TestParseHist(t *testing.T) {
	cmd, ok := magic.Parse("%hist sensor.temp")
	if !ok || cmd.Kind != magic.Hist || cmd.HasHours {
		t.Errorf("got %+v, %v", cmd, ok)
	}
	cmd, ok = magic.Parse("%hist sensor.temp -h 24")
	if !ok || !cmd.HasHours || cmd.Hours != 24 {
		t.Errorf("got %+v, %v", cmd, ok)
	}
	// A malformed hours value degrades to the default lookback.
	cmd, ok = magic.Parse("%hist sensor.temp -h soon")
	if !ok || cmd.HasHours {
		t.Errorf("got %+v, %v", cmd, ok)
	}
}

func TestParseDiff(t *testing.T) {
	cmd, ok := magic.Parse("%diff sensor.a sensor.b")
	if !ok || cmd.Arg != "sensor.a" || cmd.Arg2 != "sensor.b" {
		t.Errorf("got %+v, %v", cmd, ok)
	}
	if _, ok := magic.Parse("%diff sensor.a"); ok {
		t.Errorf("%%diff with one entity should not parse")
	}
	cmd, ok = magic.Parse("%compare sensor.a sensor.b")
	if !ok || cmd.Kind != magic.Diff {
		t.Errorf("%%compare alias = %+v, %v", cmd, ok)
	}
}

func TestParseAttrsAlias(t *testing.T) {
	for _, input := range []string{"%attrs sensor.temp", "%attributes sensor.temp"} {
		cmd, ok := magic.Parse(input)
		if !ok || cmd.Kind != magic.Attrs || cmd.Arg != "sensor.temp" {
			t.Errorf("Parse(%q) = %+v, %v", input, cmd, ok)
		}
	}
}

func TestParseAskTakesRestOfLine(t *testing.T) {
	cmd, ok := magic.Parse("%ask why is the hallway light on?")
	if !ok || cmd.Kind != magic.Ask || cmd.Arg != "why is the hallway light on?" {
		t.Errorf("got %+v, %v", cmd, ok)
	}
	if _, ok := magic.Parse("%ask   "); ok {
		t.Error("%ask without question should not parse")
	}
	cmd, ok = magic.Parse("%assistant turn it off")
	if !ok || cmd.Kind != magic.Ask || cmd.Arg != "turn it off" {
		t.Errorf("%%assistant alias = %+v, %v", cmd, ok)
	}
}

func TestParseNonCommands(t *testing.T) {
	for _, input := range []string{"x = 1", "state('sensor.temp')", "%", "%unknowncmd", "  ", ":quit"} {
		if cmd, ok := magic.Parse(input); ok {
			t.Errorf("Parse(%q) should not parse, got %+v", input, cmd)
		}
	}
}
