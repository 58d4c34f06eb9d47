package planner

import "fmt"

// Config defines settings for the ranking engine.
type Config struct {
	// RevenueQuota is the maximum number of trainsets admitted to revenue
	// service per day.
	RevenueQuota int `json:"revenue_quota"`
	// StandbyPolicy names the what-if promotion policy: "first",
	// "lowest_mileage" or "earliest_cert_expiry".
	StandbyPolicy string `json:"standby_policy"`
	// OracleTimeoutSeconds bounds one scoring call.
	OracleTimeoutSeconds int `json:"oracle_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.RevenueQuota == 0 {
		c.RevenueQuota = 15
	}
	if c.StandbyPolicy == "" {
		c.StandbyPolicy = FirstStandbyPolicy{}.Name()
	}
	if c.OracleTimeoutSeconds == 0 {
		c.OracleTimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.RevenueQuota < 0 {
		return fmt.Errorf("revenue quota must not be negative")
	}
	switch c.StandbyPolicy {
	case FirstStandbyPolicy{}.Name(), LowestMileagePolicy{}.Name(), EarliestCertExpiryPolicy{}.Name():
	default:
		return fmt.Errorf("unknown standby policy %s", c.StandbyPolicy)
	}
	return nil
}
