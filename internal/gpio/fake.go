package gpio

import "fmt"

// WriteCall records one output change on a Fake.
type WriteCall struct {
	Pin   int
	Level Level
}

// Fake is an in-memory Controller. ReadFunc decides what inputs return; when
// nil, reads return the last written level of the pin.
type Fake struct {
	ReadFunc     func(pin int) Level
	ConfigureErr error
	ReadErr      error
	CleanupErr   error

	Configured map[int]Direction
	Writes     []WriteCall
	Reads      int
	Cleanups   int

	levels map[int]Level
}

func NewFake() *Fake {
	return &Fake{
		Configured: make(map[int]Direction),
		levels:     make(map[int]Level),
	}
}

func (f *Fake) Configure(pin int, dir Direction) error {
	if f.ConfigureErr != nil {
		return f.ConfigureErr
	}
	f.Configured[pin] = dir
	if dir == Output {
		f.levels[pin] = Low
	}
	return nil
}

func (f *Fake) Write(pin int, level Level) error {
	if f.Configured[pin] != Output {
		return fmt.Errorf("pin %d is not configured as output", pin)
	}
	f.levels[pin] = level
	f.Writes = append(f.Writes, WriteCall{Pin: pin, Level: level})
	return nil
}

func (f *Fake) Read(pin int) (Level, error) {
	if f.ReadErr != nil {
		return Low, f.ReadErr
	}
	if _, ok := f.Configured[pin]; !ok {
		return Low, fmt.Errorf("pin %d is not configured", pin)
	}
	f.Reads++
	if f.ReadFunc != nil {
		return f.ReadFunc(pin), nil
	}
	return f.levels[pin], nil
}

func (f *Fake) Cleanup() error {
	f.Cleanups++
	clear(f.Configured)
	return f.CleanupErr
}
