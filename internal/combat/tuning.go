package combat

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the constants of the arcade simulation. Distances are world
// units, speeds are units per second and intervals are seconds.
type Tuning struct {
	SpawnInterval float64 `yaml:"spawn_interval"`
	SpawnRadius   float64 `yaml:"spawn_radius"`
	SpawnSpread   float64 `yaml:"spawn_spread"`
	EnemySpeed    float64 `yaml:"enemy_speed"`
	EnemyHealth   int     `yaml:"enemy_health"`

	ProjectileSpeed float64 `yaml:"projectile_speed"`
	MuzzleOffset    float64 `yaml:"muzzle_offset"`
	SpreadAngle     float64 `yaml:"spread_angle"`

	KillRadius float64 `yaml:"kill_radius"`
	HitRadius  float64 `yaml:"hit_radius"`

	GateSpacing       float64 `yaml:"gate_spacing"`
	GateOffsetX       float64 `yaml:"gate_offset_x"`
	GateHeight        float64 `yaml:"gate_height"`
	GateTriggerRadius float64 `yaml:"gate_trigger_radius"`

	ShipSpeed       float64 `yaml:"ship_speed"`
	TurboSpeed      float64 `yaml:"turbo_speed"`
	ShipResponse    float64 `yaml:"ship_response"`
	BulletTimeScale float64 `yaml:"bullet_time_scale"`
}

// DefaultTuning returns the stock arcade settings.
func DefaultTuning() Tuning {
	return Tuning{
		SpawnInterval: 2.0,
		SpawnRadius:   30,
		SpawnSpread:   20,
		EnemySpeed:    4,
		EnemyHealth:   1,

		ProjectileSpeed: 40,
		MuzzleOffset:    2,
		SpreadAngle:     0.2,

		KillRadius: 2,
		HitRadius:  2,

		GateSpacing:       30,
		GateOffsetX:       10,
		GateHeight:        1,
		GateTriggerRadius: 3.5,

		ShipSpeed:       15,
		TurboSpeed:      40,
		ShipResponse:    5,
		BulletTimeScale: 0.2,
	}
}

// LoadTuning reads a YAML file on top of DefaultTuning. Keys missing from the
// file keep their default. An empty path returns the defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse tuning: %w", err)
	}
	return t, t.Validate()
}

// Validate rejects settings that would stall or break the simulation.
func (t Tuning) Validate() error {
	switch {
	case t.SpawnInterval <= 0:
		return errors.New("spawn_interval must be positive")
	case t.BulletTimeScale <= 0 || t.BulletTimeScale > 1:
		return errors.New("bullet_time_scale must be in (0, 1]")
	case t.ProjectileSpeed <= 0:
		return errors.New("projectile_speed must be positive")
	case t.EnemySpeed < 0, t.ShipSpeed < 0, t.TurboSpeed < 0:
		return errors.New("enemy_speed, ship_speed and turbo_speed must not be negative")
	case t.ShipResponse <= 0:
		return errors.New("ship_response must be positive")
	case t.SpawnRadius < 0, t.SpawnSpread < 0:
		return errors.New("spawn_radius and spawn_spread must not be negative")
	case t.EnemyHealth < 1:
		return errors.New("enemy_health must be at least 1")
	case t.KillRadius <= 0, t.HitRadius <= 0, t.GateTriggerRadius <= 0:
		return errors.New("radii must be positive")
	}
	return nil
}
