package traj

// Record is one trajectory's measurement record on the output grid.
// Homodyne and photocurrent records carry one value per channel per interval
// (Quadratures == 1); heterodyne records carry two.
type Record struct {
	// Times are the right edges of the output intervals.
	Times       []float64
	Channels    int
	Quadratures int
	// Data is laid out interval-major, then channel, then quadrature.
	Data []float64
}

func newRecord(times []float64, nchan, nquad int) *Record {
	return &Record{
		Times:       times,
		Channels:    nchan,
		Quadratures: nquad,
		Data:        make([]float64, len(times)*nchan*nquad),
	}
}

// Shape returns (intervals, channels, quadratures).
func (r *Record) Shape() (int, int, int) {
	return len(r.Times), r.Channels, r.Quadratures
}

// At returns the single-quadrature value of channel j at interval i.
func (r *Record) At(i, j int) float64 { return r.AtQuad(i, j, 0) }

// AtQuad returns quadrature q of channel j at interval i.
func (r *Record) AtQuad(i, j, q int) float64 {
	return r.Data[(i*r.Channels+j)*r.Quadratures+q]
}

func (r *Record) set(i, j, q int, v float64) {
	r.Data[(i*r.Channels+j)*r.Quadratures+q] = v
}

// Channel extracts one channel's single-quadrature time series.
func (r *Record) Channel(j int) []float64 {
	out := make([]float64, len(r.Times))
	for i := range out {
		out[i] = r.At(i, j)
	}
	return out
}
