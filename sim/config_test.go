package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFleetConfig_IsReferenceScenario(t *testing.T) {
	cfg := DefaultFleetConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Trucks)
	assert.Equal(t, 2, cfg.Loading.Capacity)
	assert.Equal(t, 500, cfg.Loading.MinMs)
	assert.Equal(t, 5001, cfg.Loading.MaxMs)
	assert.Equal(t, 500, cfg.Arrival.MinMs)
	assert.Equal(t, 5000, cfg.Arrival.MaxMs)
	assert.Equal(t, 3000, cfg.Arrival.CancelThresholdMs)
	assert.Equal(t, 2.0, cfg.Arrival.UnloadDivisor)
	assert.Equal(t, AdmissionCohort, cfg.AdmissionPolicy)
	assert.Equal(t, FinalWaitShared, cfg.Arrival.FinalWait)
	assert.Equal(t, time.Millisecond, cfg.TimeUnit)
}

func TestFleetConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*FleetConfig)
		wantErr string
	}{
		{name: "default is valid", mutate: func(*FleetConfig) {}},
		{name: "empty policies default", mutate: func(c *FleetConfig) {
			c.AdmissionPolicy = ""
			c.Arrival.FinalWait = ""
		}},
		{name: "zero trucks", mutate: func(c *FleetConfig) { c.Trucks = 0 }, wantErr: "trucks"},
		{name: "zero time unit", mutate: func(c *FleetConfig) { c.TimeUnit = 0 }, wantErr: "time unit"},
		{name: "unknown admission", mutate: func(c *FleetConfig) { c.AdmissionPolicy = "lifo" }, wantErr: "admission policy"},
		{name: "zero capacity", mutate: func(c *FleetConfig) { c.Loading.Capacity = 0 }, wantErr: "loading capacity"},
		{name: "empty loading range", mutate: func(c *FleetConfig) { c.Loading.MaxMs = c.Loading.MinMs }, wantErr: "loading range"},
		{name: "negative loading min", mutate: func(c *FleetConfig) { c.Loading.MinMs = -1 }, wantErr: "loading range"},
		{name: "inverted arrival range", mutate: func(c *FleetConfig) { c.Arrival.MaxMs = 10 }, wantErr: "arrival range"},
		{name: "negative threshold", mutate: func(c *FleetConfig) { c.Arrival.CancelThresholdMs = -1 }, wantErr: "cancel threshold"},
		{name: "zero divisor", mutate: func(c *FleetConfig) { c.Arrival.UnloadDivisor = 0 }, wantErr: "unload divisor"},
		{name: "unknown final wait", mutate: func(c *FleetConfig) { c.Arrival.FinalWait = "none" }, wantErr: "final wait"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFleetConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFleetConfig_UnloadingMs_Truncates(t *testing.T) {
	cfg := DefaultFleetConfig()
	assert.Equal(t, 500, cfg.UnloadingMs(1000))
	assert.Equal(t, 2500, cfg.UnloadingMs(5001))

	// The alternate divisor drops the fractional millisecond.
	cfg.Arrival.UnloadDivisor = 1.5
	assert.Equal(t, 666, cfg.UnloadingMs(1000))
	assert.Equal(t, 333, cfg.UnloadingMs(500))
}

func TestFleetConfig_Duration_ScalesByTimeUnit(t *testing.T) {
	cfg := DefaultFleetConfig()
	assert.Equal(t, 3*time.Second, cfg.Duration(3000))
	cfg.TimeUnit = 10 * time.Microsecond
	assert.Equal(t, 30*time.Millisecond, cfg.Duration(3000))
}

func TestFleetConfig_WorstCaseMs(t *testing.T) {
	// GIVEN the reference scenario: 5 loading cohorts, serialized final waits
	cfg := DefaultFleetConfig()

	// THEN the bound covers every cohort's longest load, one arrival wait,
	// and ten back-to-back final waits
	assert.Equal(t, 5*5000+4999+10*4999, cfg.WorstCaseMs())

	// Sliding admission and per-truck final waits loosen the bound differently
	cfg.AdmissionPolicy = AdmissionSliding
	cfg.Arrival.FinalWait = FinalWaitPerTruck
	assert.Equal(t, 10*5000+4999+4999, cfg.WorstCaseMs())
}
