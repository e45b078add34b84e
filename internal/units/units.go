// Package units converts between the sensor's canonical centimeters and the
// unit system the user reports in.
package units

import (
	"fmt"
	"strings"
)

const CentimetersPerInch = 2.54

type Unit int

const (
	Metric Unit = iota
	Imperial
)

// ParseUnit maps a configuration value to a Unit. Unknown values yield Metric
// and ok=false so the caller can warn about the fallback.
func ParseUnit(s string) (u Unit, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metric":
		return Metric, true
	case "imperial":
		return Imperial, true
	default:
		return Metric, false
	}
}

func (u Unit) String() string {
	if u == Imperial {
		return "imperial"
	}
	return "metric"
}

// Notation is the word used for the unit in alert messages.
func (u Unit) Notation() string {
	if u == Imperial {
		return "inches"
	}
	return "centimeters"
}

func CmToIn(x float64) float64 {
	return x / CentimetersPerInch
}

func InToCm(x float64) float64 {
	return x * CentimetersPerInch
}

// Distance is a length tagged with the unit it is expressed in.
type Distance struct {
	Value float64
	Unit  Unit
}

func Centimeters(v float64) Distance {
	return Distance{Value: v, Unit: Metric}
}

func Inches(v float64) Distance {
	return Distance{Value: v, Unit: Imperial}
}

// In returns d expressed in u.
func (d Distance) In(u Unit) Distance {
	if d.Unit == u {
		return d
	}
	if u == Imperial {
		return Inches(CmToIn(d.Value))
	}
	return Centimeters(InToCm(d.Value))
}

func (d Distance) String() string {
	return fmt.Sprintf("%.2f %s", d.Value, d.Unit.Notation())
}
