package domain

import "time"

// ProbeResult is the outcome of a single dependency probe.
type ProbeResult struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Detail    string `json:"detail,omitempty"`
}

// ReadinessReport aggregates configuration validation and probe results.
// AllPassed is true only when no required configuration is missing and every
// probe succeeded.
type ReadinessReport struct {
	AllPassed     bool          `json:"all_passed"`
	MissingConfig []string      `json:"missing_config,omitempty"`
	Probes        []ProbeResult `json:"probes"`
	CheckedAt     time.Time     `json:"checked_at"`
}
