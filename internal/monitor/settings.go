package monitor

import (
	"fmt"

	"github.com/speedwagon-io/saltydog/internal/config"
	"github.com/speedwagon-io/saltydog/internal/errs"
	"github.com/speedwagon-io/saltydog/internal/level"
	"github.com/speedwagon-io/saltydog/internal/units"
)

// Settings are fixed for the whole cycle. Depth and threshold are in Unit.
type Settings struct {
	Unit      units.Unit
	Geometry  level.TankGeometry
	Threshold units.Distance
	Force     bool
	Reads     int
}

func SettingsFromConfig(cfg *config.Config, unit units.Unit) (Settings, error) {
	geometry, err := level.NewTankGeometry(units.Distance{Value: cfg.TankDepth, Unit: unit})
	if err != nil {
		return Settings{}, err
	}
	if cfg.Threshold < 0 {
		return Settings{}, fmt.Errorf("%w: threshold must not be negative, got %v", errs.ErrInvalidConfiguration, cfg.Threshold)
	}
	if cfg.Sensor.Reads < 1 {
		return Settings{}, fmt.Errorf("%w: read count must be at least 1, got %d", errs.ErrInvalidConfiguration, cfg.Sensor.Reads)
	}

	return Settings{
		Unit:      unit,
		Geometry:  geometry,
		Threshold: units.Distance{Value: cfg.Threshold, Unit: unit},
		Force:     cfg.ForceReport,
		Reads:     cfg.Sensor.Reads,
	}, nil
}
