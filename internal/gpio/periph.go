package gpio

import (
	"errors"
	"fmt"
	"strconv"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

type Periph struct {
	initialized bool
	pins        map[int]pgpio.PinIO
	dirs        map[int]Direction
}

func NewPeriph() *Periph {
	return &Periph{
		pins: make(map[int]pgpio.PinIO),
		dirs: make(map[int]Direction),
	}
}

func (p *Periph) Configure(pin int, dir Direction) error {
	if !p.initialized {
		if _, err := host.Init(); err != nil {
			return fmt.Errorf("failed to initialize host drivers: %w", err)
		}
		p.initialized = true
	}

	io, err := lookup(pin)
	if err != nil {
		return err
	}

	switch dir {
	case Output:
		err = io.Out(pgpio.Low)
	default:
		err = io.In(pgpio.PullDown, pgpio.NoEdge)
	}
	if err != nil {
		return fmt.Errorf("failed to configure pin %d as %s: %w", pin, dir, err)
	}

	p.pins[pin] = io
	p.dirs[pin] = dir
	return nil
}

func (p *Periph) Write(pin int, level Level) error {
	io, ok := p.pins[pin]
	if !ok || p.dirs[pin] != Output {
		return fmt.Errorf("pin %d is not configured as output", pin)
	}
	return io.Out(pgpio.Level(level))
}

func (p *Periph) Read(pin int) (Level, error) {
	io, ok := p.pins[pin]
	if !ok {
		return Low, fmt.Errorf("pin %d is not configured", pin)
	}
	return Level(io.Read()), nil
}

func (p *Periph) Cleanup() error {
	var errList []error
	for pin, io := range p.pins {
		if p.dirs[pin] == Output {
			if err := io.Out(pgpio.Low); err != nil {
				errList = append(errList, fmt.Errorf("pin %d: %w", pin, err))
			}
		}
		if err := io.In(pgpio.Float, pgpio.NoEdge); err != nil {
			errList = append(errList, fmt.Errorf("pin %d: %w", pin, err))
		}
		if err := io.Halt(); err != nil {
			errList = append(errList, fmt.Errorf("pin %d: %w", pin, err))
		}
	}

	clear(p.pins)
	clear(p.dirs)
	return errors.Join(errList...)
}

// lookup resolves a BCM number. On a Raspberry Pi the registry knows pins by
// their number and by their GPIOn alias.
func lookup(pin int) (pgpio.PinIO, error) {
	if io := gpioreg.ByName(strconv.Itoa(pin)); io != nil {
		return io, nil
	}
	if io := gpioreg.ByName("GPIO" + strconv.Itoa(pin)); io != nil {
		return io, nil
	}
	return nil, fmt.Errorf("no GPIO pin named %d", pin)
}
