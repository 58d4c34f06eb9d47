package config

import "fmt"

// HistoryConfig defines settings for ranking pass history storage.
type HistoryConfig struct {
	// Backend selects the history store type: "jsonl", "sqlite" or "none".
	Backend string `json:"backend"`
	// Path is the file location of the history store.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *HistoryConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Backend == "jsonl" && c.Path == "" {
		c.Path = "induction.log"
	}
	if c.Backend == "sqlite" && c.Path == "" {
		c.Path = "induction_history.db"
	}
}

// Validate checks mandatory fields.
func (c HistoryConfig) Validate() error {
	switch c.Backend {
	case "none":
		return nil
	case "jsonl", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("history path is required")
		}
		return nil
	default:
		return fmt.Errorf("unknown history backend %s", c.Backend)
	}
}
