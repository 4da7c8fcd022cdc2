package config

// DefaultRegistry returns a Registry with every built-in filter-emitting
// directive registered. Channel:, Device:, Stage:, Include:, If:, Else:,
// EndIf: and Set: are not registered here — the Compiler special-cases
// those keys itself, since they affect compilation control flow rather
// than emitting a filter.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister("Filter", FilterDirective)
	r.MustRegister("BiQuad", BiQuadDirective)
	r.MustRegister("IIR", IIRDirective)
	r.MustRegister("Preamp", PreampDirective)
	r.MustRegister("Delay", DelayDirective)
	r.MustRegister("Copy", CopyDirective)

	return r
}
