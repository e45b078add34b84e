package level

import (
	"errors"
	"testing"

	"github.com/speedwagon-io/saltydog/internal/errs"
	"github.com/speedwagon-io/saltydog/internal/units"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		distance      float64
		depth         float64
		threshold     float64
		force         bool
		wantRemaining float64
		wantAlert     bool
		wantLow       bool
	}{
		{"below threshold", 80, 100, 25, false, 20, true, true},
		{"above threshold", 50, 100, 25, false, 50, false, false},
		{"forced report", 50, 100, 25, true, 50, true, false},
		{"exactly at threshold", 75, 100, 25, false, 25, false, false},
		{"zero threshold never low", 100, 100, 0, false, 0, false, false},
		{"distance past the floor", 120, 100, 0, false, -20, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geometry, err := NewTankGeometry(units.Centimeters(tt.depth))
			if err != nil {
				t.Fatalf("NewTankGeometry failed: %v", err)
			}

			got, err := Evaluate(units.Centimeters(tt.distance), geometry, units.Centimeters(tt.threshold), tt.force)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if got.RemainingCapacity != tt.wantRemaining {
				t.Errorf("RemainingCapacity = %v, want %v", got.RemainingCapacity, tt.wantRemaining)
			}
			if got.Alert != tt.wantAlert {
				t.Errorf("Alert = %v, want %v", got.Alert, tt.wantAlert)
			}
			if got.Low != tt.wantLow {
				t.Errorf("Low = %v, want %v", got.Low, tt.wantLow)
			}
			if got.Forced != tt.force {
				t.Errorf("Forced = %v, want %v", got.Forced, tt.force)
			}
		})
	}
}

func TestEvaluateImperial(t *testing.T) {
	geometry, err := NewTankGeometry(units.Inches(40))
	if err != nil {
		t.Fatalf("NewTankGeometry failed: %v", err)
	}

	got, err := Evaluate(units.Inches(37), geometry, units.Inches(4), false)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !got.Alert || got.RemainingCapacity != 3 || got.Unit != units.Imperial {
		t.Errorf("Evaluate = %+v, want alert with 3 inches", got)
	}
	if s := got.Remaining().String(); s != "3.00 inches" {
		t.Errorf("Remaining = %q", s)
	}
}

func TestEvaluateRejectsMixedUnits(t *testing.T) {
	geometry, _ := NewTankGeometry(units.Centimeters(100))

	if _, err := Evaluate(units.Inches(10), geometry, units.Centimeters(25), false); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Errorf("distance mismatch: expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := Evaluate(units.Centimeters(10), geometry, units.Inches(25), false); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Errorf("threshold mismatch: expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestNewTankGeometryRejectsNonPositiveDepth(t *testing.T) {
	for _, depth := range []float64{0, -5} {
		if _, err := NewTankGeometry(units.Centimeters(depth)); !errors.Is(err, errs.ErrInvalidConfiguration) {
			t.Errorf("depth %v: expected ErrInvalidConfiguration, got %v", depth, err)
		}
	}
}
