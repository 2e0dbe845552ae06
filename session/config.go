package session

// Config holds session initialization parameters.
type Config struct {
	// MaxHistory caps the number of recorded inputs; 0 means unlimited.
	MaxHistory int
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{MaxHistory: 500}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source == nil {
		return
	}
	if source.MaxHistory != 0 {
		c.MaxHistory = source.MaxHistory
	}
}
