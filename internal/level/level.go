// Package level decides whether the salt in the tank has run low.
package level

import (
	"fmt"

	"github.com/speedwagon-io/saltydog/internal/errs"
	"github.com/speedwagon-io/saltydog/internal/units"
)

// TankGeometry is the distance from the sensor face to the bottom of the
// tank, in the unit the session reports in.
type TankGeometry struct {
	Depth units.Distance
}

func NewTankGeometry(depth units.Distance) (TankGeometry, error) {
	if depth.Value <= 0 {
		return TankGeometry{}, fmt.Errorf("%w: tank depth must be positive, got %v", errs.ErrInvalidConfiguration, depth)
	}
	return TankGeometry{Depth: depth}, nil
}

type Decision struct {
	Alert             bool
	Low               bool
	Forced            bool
	RemainingCapacity float64
	Unit              units.Unit
}

func (d Decision) Remaining() units.Distance {
	return units.Distance{Value: d.RemainingCapacity, Unit: d.Unit}
}

// Evaluate compares the salt left above the tank floor against threshold.
// All three lengths must already share a unit. A distance past the floor
// yields a negative remaining capacity, which is reported as is.
func Evaluate(distance units.Distance, geometry TankGeometry, threshold units.Distance, force bool) (Decision, error) {
	if distance.Unit != geometry.Depth.Unit || threshold.Unit != geometry.Depth.Unit {
		return Decision{}, fmt.Errorf("%w: mixed units: distance %s, depth %s, threshold %s",
			errs.ErrInvalidConfiguration, distance.Unit, geometry.Depth.Unit, threshold.Unit)
	}

	remaining := geometry.Depth.Value - distance.Value
	low := remaining < threshold.Value

	return Decision{
		Alert:             force || low,
		Low:               low,
		Forced:            force,
		RemainingCapacity: remaining,
		Unit:              geometry.Depth.Unit,
	}, nil
}
