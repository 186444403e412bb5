package analysis

import (
	"fmt"

	"github.com/san-kum/qdyn/internal/traj"
)

// MeanCurrent averages one channel of the measurement records across the
// ensemble.
func MeanCurrent(recs []*traj.Record, channel int) []float64 {
	if len(recs) == 0 {
		return nil
	}
	out := make([]float64, len(recs[0].Times))
	for _, rec := range recs {
		for i := range out {
			out[i] += rec.At(i, channel)
		}
	}
	inv := 1 / float64(len(recs))
	for i := range out {
		out[i] *= inv
	}
	return out
}

// RecordSpectrum computes the power spectrum of one channel of a single
// trajectory's measurement record, taking the sample spacing from its grid.
func RecordSpectrum(rec *traj.Record, channel int) (*Spectrum, error) {
	if channel < 0 || channel >= rec.Channels {
		return nil, fmt.Errorf("analysis: channel %d out of range [0,%d)", channel, rec.Channels)
	}
	if len(rec.Times) < 2 {
		return nil, fmt.Errorf("analysis: record too short for a spectrum")
	}
	dt := rec.Times[1] - rec.Times[0]
	return NewSpectrum(rec.Channel(channel), dt), nil
}
