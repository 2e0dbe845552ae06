package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/signaldeck/shell-engine/bundle"
	"github.com/signaldeck/shell-engine/session"
)

const (
	defaultPrompt          = "≫ "
	defaultHistoryHours    = 6
	defaultAskContextLines = 10
	defaultChartHeight     = 300
)

// Config holds initialization parameters for the engine and its session.
type Config struct {
	Session session.Config `json:"session"`
	Bundles bundle.Config  `json:"bundles,omitempty"`

	// Prompt is the string shown before each input line.
	Prompt string `json:"prompt,omitempty"`

	// HistoryHours is the default lookback for %hist when no -h flag is given.
	HistoryHours int `json:"history_hours,omitempty"`

	// AskContextLines is how many recent commands accompany an %ask question.
	AskContextLines int `json:"ask_context_lines,omitempty"`

	// ChartHeight is the pixel height of generated chart specs.
	ChartHeight int `json:"chart_height,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Session:         session.DefaultConfig(),
		Bundles:         bundle.DefaultConfig(),
		Prompt:          defaultPrompt,
		HistoryHours:    defaultHistoryHours,
		AskContextLines: defaultAskContextLines,
		ChartHeight:     defaultChartHeight,
	}
}

// Merge applies non-zero values from source into c, delegating to the
// session's Merge method.
func (c *Config) Merge(source *Config) {
	if source == nil {
		return
	}
	c.Session.Merge(&source.Session)
	c.Bundles.Merge(&source.Bundles)

	if source.Prompt != "" {
		c.Prompt = source.Prompt
	}
	if source.HistoryHours > 0 {
		c.HistoryHours = source.HistoryHours
	}
	if source.AskContextLines > 0 {
		c.AskContextLines = source.AskContextLines
	}
	if source.ChartHeight > 0 {
		c.ChartHeight = source.ChartHeight
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
