package config

import (
	"fmt"

	infraoracle "github.com/kilianp07/induction/infra/oracle"
)

// OracleConfig selects the scoring oracle implementation.
type OracleConfig struct {
	// Mode selects the oracle: "http" for a remote scoring service or
	// "mock" for the built-in deterministic scorer.
	Mode string `json:"mode"`
	// HTTP configures the remote scoring client when Mode is "http".
	HTTP infraoracle.Config `json:"http"`
}

// SetDefaults applies sane defaults.
func (c *OracleConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "mock"
	}
	c.HTTP.SetDefaults()
}

// Validate checks mandatory fields.
func (c OracleConfig) Validate() error {
	switch c.Mode {
	case "mock":
		return nil
	case "http":
		return c.HTTP.Validate()
	default:
		return fmt.Errorf("unknown oracle mode %s", c.Mode)
	}
}
