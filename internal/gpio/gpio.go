// Package gpio abstracts the digital I/O the ultrasonic sensor needs.
// The real implementation drives the host's pins through periph.io.
// The fake implementation allows testing without hardware.
package gpio

type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "out"
	}
	return "in"
}

// Controller is the raw pin driver. Pins use BCM numbering.
type Controller interface {
	Configure(pin int, dir Direction) error
	Write(pin int, level Level) error
	Read(pin int) (Level, error)

	// Cleanup returns every configured pin to a safe input state.
	Cleanup() error
}
