package sim

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FleetBundle holds fleet configuration loadable from YAML.
// Nil pointer fields mean "not set in YAML" and leave the FleetConfig value untouched.
// String fields use empty string for "not set".
type FleetBundle struct {
	Trucks          *int          `yaml:"trucks"`
	Seed            *int64        `yaml:"seed"`
	TimeUnit        string        `yaml:"time_unit"` // Go duration, e.g. "1ms", "50us"
	AdmissionPolicy string        `yaml:"admission_policy"`
	OrderedLaunch   *bool         `yaml:"ordered_launch"`
	Loading         LoadingBundle `yaml:"loading"`
	Arrival         ArrivalBundle `yaml:"arrival"`
	Routes          []string      `yaml:"routes"`
}

// LoadingBundle holds loading stage overrides.
type LoadingBundle struct {
	Capacity *int `yaml:"capacity"`
	MinMs    *int `yaml:"min_ms"`
	MaxMs    *int `yaml:"max_ms"`
}

// ArrivalBundle holds arrival stage overrides.
type ArrivalBundle struct {
	MinMs             *int     `yaml:"min_ms"`
	MaxMs             *int     `yaml:"max_ms"`
	CancelThresholdMs *int     `yaml:"cancel_threshold_ms"`
	UnloadDivisor     *float64 `yaml:"unload_divisor"`
	FinalWait         string   `yaml:"final_wait"`
}

// LoadFleetBundle reads and parses a YAML fleet configuration file.
// Unknown keys are rejected so typos surface as errors.
func LoadFleetBundle(path string) (*FleetBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fleet config: %w", err)
	}
	return ParseFleetBundle(data)
}

// ParseFleetBundle decodes a YAML fleet bundle with strict field checking.
func ParseFleetBundle(data []byte) (*FleetBundle, error) {
	var bundle FleetBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing fleet config: %w", err)
	}
	return &bundle, nil
}

// ValidAdmissionPolicies is the set of recognized admission policy names.
// Shared by Validate() and NewAdmissionGate() to avoid duplication.
var ValidAdmissionPolicies = map[string]bool{"": true, AdmissionCohort: true, AdmissionSliding: true}

// ValidFinalWaitPolicies is the set of recognized final wait policy names.
var ValidFinalWaitPolicies = map[string]bool{"": true, FinalWaitShared: true, FinalWaitPerTruck: true}

// IsValidAdmissionPolicy returns true if name is a recognized admission policy.
func IsValidAdmissionPolicy(name string) bool { return ValidAdmissionPolicies[name] }

// IsValidFinalWaitPolicy returns true if name is a recognized final wait policy.
func IsValidFinalWaitPolicy(name string) bool { return ValidFinalWaitPolicies[name] }

// Validate checks policy names and parameter ranges set in the bundle.
func (b *FleetBundle) Validate() error {
	if !ValidAdmissionPolicies[b.AdmissionPolicy] {
		return fmt.Errorf("unknown admission policy %q", b.AdmissionPolicy)
	}
	if !ValidFinalWaitPolicies[b.Arrival.FinalWait] {
		return fmt.Errorf("unknown final wait policy %q", b.Arrival.FinalWait)
	}
	if b.TimeUnit != "" {
		d, err := time.ParseDuration(b.TimeUnit)
		if err != nil {
			return fmt.Errorf("time_unit: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("time_unit must be positive, got %s", b.TimeUnit)
		}
	}
	if b.Trucks != nil && *b.Trucks < 1 {
		return fmt.Errorf("trucks must be >= 1, got %d", *b.Trucks)
	}
	if b.Loading.Capacity != nil && *b.Loading.Capacity < 1 {
		return fmt.Errorf("loading.capacity must be >= 1, got %d", *b.Loading.Capacity)
	}
	if b.Arrival.UnloadDivisor != nil && *b.Arrival.UnloadDivisor <= 0 {
		return fmt.Errorf("arrival.unload_divisor must be positive, got %f", *b.Arrival.UnloadDivisor)
	}
	if b.Arrival.CancelThresholdMs != nil && *b.Arrival.CancelThresholdMs < 0 {
		return fmt.Errorf("arrival.cancel_threshold_ms must be non-negative, got %d", *b.Arrival.CancelThresholdMs)
	}
	seen := make(map[string]bool, len(b.Routes))
	for _, r := range b.Routes {
		if seen[r] {
			return fmt.Errorf("duplicate route %q", r)
		}
		seen[r] = true
	}
	return nil
}

// ApplyTo overlays every field set in the bundle onto cfg.
// Call Validate first; ApplyTo ignores an unparsable time_unit.
func (b *FleetBundle) ApplyTo(cfg *FleetConfig) {
	if b.Trucks != nil {
		cfg.Trucks = *b.Trucks
	}
	if b.Seed != nil {
		cfg.Seed = *b.Seed
	}
	if d, err := time.ParseDuration(b.TimeUnit); err == nil && d > 0 {
		cfg.TimeUnit = d
	}
	if b.AdmissionPolicy != "" {
		cfg.AdmissionPolicy = b.AdmissionPolicy
	}
	if b.OrderedLaunch != nil {
		cfg.OrderedLaunch = *b.OrderedLaunch
	}
	if b.Loading.Capacity != nil {
		cfg.Loading.Capacity = *b.Loading.Capacity
	}
	if b.Loading.MinMs != nil {
		cfg.Loading.MinMs = *b.Loading.MinMs
	}
	if b.Loading.MaxMs != nil {
		cfg.Loading.MaxMs = *b.Loading.MaxMs
	}
	if b.Arrival.MinMs != nil {
		cfg.Arrival.MinMs = *b.Arrival.MinMs
	}
	if b.Arrival.MaxMs != nil {
		cfg.Arrival.MaxMs = *b.Arrival.MaxMs
	}
	if b.Arrival.CancelThresholdMs != nil {
		cfg.Arrival.CancelThresholdMs = *b.Arrival.CancelThresholdMs
	}
	if b.Arrival.UnloadDivisor != nil {
		cfg.Arrival.UnloadDivisor = *b.Arrival.UnloadDivisor
	}
	if b.Arrival.FinalWait != "" {
		cfg.Arrival.FinalWait = b.Arrival.FinalWait
	}
}
