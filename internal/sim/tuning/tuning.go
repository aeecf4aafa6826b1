package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz     int `yaml:"tick_rate_hz"`
	TickDurationMs int `yaml:"tick_duration_ms"`

	// Construction phase fractions in phase order:
	// poles, terrain_leveling, construction_rising, completed_rising.
	// Must sum to 1.0.
	PhaseFractions []float64 `yaml:"phase_fractions"`

	DefaultTerritoryRadius int `yaml:"default_territory_radius"`
	SpawnRingMaxRadius     int `yaml:"spawn_ring_max_radius"`

	ProductionIntervalTicks int `yaml:"production_interval_ticks"`
	SnapshotEveryTicks      int `yaml:"snapshot_every_ticks"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.ApplyDefaults()
	return t, nil
}

func (t *Tuning) ApplyDefaults() {
	if t.TickRateHz <= 0 {
		t.TickRateHz = 10
	}
	if t.TickDurationMs <= 0 {
		t.TickDurationMs = 1000 / t.TickRateHz
	}
	if len(t.PhaseFractions) == 0 {
		t.PhaseFractions = []float64{0.1, 0.3, 0.4, 0.2}
	}
	if t.DefaultTerritoryRadius <= 0 {
		t.DefaultTerritoryRadius = 12
	}
	if t.SpawnRingMaxRadius <= 0 {
		t.SpawnRingMaxRadius = 4
	}
	if t.ProductionIntervalTicks <= 0 {
		t.ProductionIntervalTicks = 20
	}
	if t.SnapshotEveryTicks <= 0 {
		t.SnapshotEveryTicks = 3000
	}
}
