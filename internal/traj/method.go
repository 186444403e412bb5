package traj

import (
	"errors"
	"fmt"
)

// Method selects the detection scheme the trajectories unravel.
type Method int

const (
	// Homodyne measures one quadrature per stochastic channel.
	Homodyne Method = iota
	// Heterodyne measures both quadratures, splitting each channel in two.
	Heterodyne
	// Photocurrent counts detector clicks instead of diffusing.
	Photocurrent
)

// ErrUnknownMethod indicates an unrecognized detection method name.
var ErrUnknownMethod = errors.New("traj: unknown detection method")

func (m Method) String() string {
	switch m {
	case Homodyne:
		return "homodyne"
	case Heterodyne:
		return "heterodyne"
	case Photocurrent:
		return "photocurrent"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod resolves a detection method by name.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "homodyne":
		return Homodyne, nil
	case "heterodyne":
		return Heterodyne, nil
	case "photocurrent":
		return Photocurrent, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// MethodNames lists the recognized detection methods.
func MethodNames() []string {
	return []string{"heterodyne", "homodyne", "photocurrent"}
}
