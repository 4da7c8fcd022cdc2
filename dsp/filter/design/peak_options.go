package design

// PeakOption configures the Peak and PeakCascade designers behind a
// peaking-EQ Filter: line.
//
// Without options, Peak uses the standard RBJ peaking-EQ formula, which is
// enough for a plain "Filter: ON PK Fc 1000 Gain 3 Q 1" directive.
// Supplying WithDCGain and/or WithNyquistGain switches to the Orfanidis
// algorithm, needed when a config also pins the gain at DC and/or Nyquist.
type PeakOption func(*peakConfig)

type peakConfig struct {
	dcGain       float64
	nyquistGain  float64
	bandEdgeGain float64 // 0 means "use default sqrt(G)"
	hasDCGain    bool
	hasNyqGain   bool
	hasBEGain    bool
}

// WithDCGain pins the linear gain at DC for Orfanidis-style peaking design.
// A value of 1.0 leaves DC unaffected. Setting this switches the designer
// off the default RBJ formula.
func WithDCGain(g float64) PeakOption {
	return func(c *peakConfig) {
		c.dcGain = g
		c.hasDCGain = true
	}
}

// WithNyquistGain pins the linear gain at Nyquist for Orfanidis-style
// peaking design. A value of 1.0 leaves Nyquist unaffected. Setting this
// switches the designer off the default RBJ formula.
func WithNyquistGain(g float64) PeakOption {
	return func(c *peakConfig) {
		c.nyquistGain = g
		c.hasNyqGain = true
	}
}

// WithBandEdgeGain overrides the band-edge gain used by Orfanidis-style
// peaking design. Left unset, it defaults to sqrt(G), the usual half-gain
// bandwidth convention.
func WithBandEdgeGain(g float64) PeakOption {
	return func(c *peakConfig) {
		c.bandEdgeGain = g
		c.hasBEGain = true
	}
}

func applyPeakOpts(opts []PeakOption) peakConfig {
	cfg := peakConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	return cfg
}
