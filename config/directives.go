package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/apoengine/config/expr"
	"github.com/cwbudde/apoengine/dsp/filter/biquad"
	"github.com/cwbudde/apoengine/dsp/filter/design"
	"github.com/cwbudde/apoengine/dsp/gaindb"
	"github.com/cwbudde/apoengine/graph"
	"github.com/cwbudde/apoengine/kernel"
)

// FilterDirective compiles "Filter: ON PK Fc 1000 Hz Gain 3 dB Q 0.7" and
// its variants (LP, HP, LS, HS, BP, NO, AP) into a single RBJ biquad
// section.
func FilterDirective(ctx *Context, value string) ([]graph.FilterRequest, error) {
	toks := fields(value)

	enabled, toks := onOff(toks)
	if !enabled {
		return nil, nil
	}

	typ := strings.ToUpper(firstToken(toks))

	freq, _, ok := namedArg(toks, "Fc")
	if !ok {
		return nil, errMissingArg("Filter", "Fc")
	}

	gainDB, _, _ := namedArg(toks, "Gain")
	q, _, hasQ := namedArg(toks, "Q")
	if !hasQ {
		q = 1 / 1.4142135623730951
	}

	var c biquad.Coefficients

	switch typ {
	case "PK":
		c = design.Peak(freq, gainDB, q, ctx.SampleRate)
	case "LP":
		c = design.Lowpass(freq, q, ctx.SampleRate)
	case "HP":
		c = design.Highpass(freq, q, ctx.SampleRate)
	case "LS":
		c = design.LowShelf(freq, gainDB, q, ctx.SampleRate)
	case "HS":
		c = design.HighShelf(freq, gainDB, q, ctx.SampleRate)
	case "BP":
		c = design.Bandpass(freq, q, ctx.SampleRate)
	case "NO":
		c = design.Notch(freq, q, ctx.SampleRate)
	case "AP":
		c = design.Allpass(freq, q, ctx.SampleRate)
	default:
		return nil, fmt.Errorf("config: Filter: unknown type %q", typ)
	}

	return []graph.FilterRequest{{
		Kernel: kernel.NewBiquad([]biquad.Coefficients{c}, 1),
	}}, nil
}

// BiQuadDirective compiles "BiQuad: b0=.. b1=.. b2=.. a1=.. a2=.." — raw
// coefficients supplied directly, for configs built from externally
// designed filters.
func BiQuadDirective(_ *Context, value string) ([]graph.FilterRequest, error) {
	toks := fields(value)
	_, toks = onOff(toks)

	c := biquad.Coefficients{}

	for _, tok := range toks {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 {
			continue
		}

		v, err := strconv.ParseFloat(kv[1], 64)
		if err != nil {
			return nil, fmt.Errorf("config: BiQuad: invalid value %q", tok)
		}

		switch strings.ToLower(kv[0]) {
		case "b0":
			c.B0 = v
		case "b1":
			c.B1 = v
		case "b2":
			c.B2 = v
		case "a1":
			c.A1 = v
		case "a2":
			c.A2 = v
		}
	}

	return []graph.FilterRequest{{
		Kernel: kernel.NewBiquad([]biquad.Coefficients{c}, 1),
	}}, nil
}

// IIRDirective compiles "IIR: LP Fc 200 Hz Order 4" into a Butterworth
// cascade — the higher-order counterpart to Filter:/BiQuad:'s single
// section.
func IIRDirective(ctx *Context, value string) ([]graph.FilterRequest, error) {
	toks := fields(value)

	enabled, toks := onOff(toks)
	if !enabled {
		return nil, nil
	}

	typ := strings.ToUpper(firstToken(toks))

	freq, _, ok := namedArg(toks, "Fc")
	if !ok {
		return nil, errMissingArg("IIR", "Fc")
	}

	order, _, hasOrder := namedArg(toks, "Order")
	if !hasOrder || order < 1 {
		order = 2
	}

	gainDB, _, _ := namedArg(toks, "Gain")

	var coeffs []biquad.Coefficients

	switch typ {
	case "LP":
		coeffs = design.ButterworthLP(freq, int(order), ctx.SampleRate)
	case "HP":
		coeffs = design.ButterworthHP(freq, int(order), ctx.SampleRate)
	default:
		return nil, fmt.Errorf("config: IIR: unknown type %q", typ)
	}

	if len(coeffs) == 0 {
		return nil, fmt.Errorf("config: IIR: could not design %s Fc=%v order=%v", typ, freq, order)
	}

	return []graph.FilterRequest{{
		Kernel: kernel.NewBiquad(coeffs, gaindb.LinearFromDB(gainDB)),
	}}, nil
}

// PreampDirective compiles "Preamp: -6 dB" or "Preamp: 0.5".
func PreampDirective(_ *Context, value string) ([]graph.FilterRequest, error) {
	toks := fields(value)
	if len(toks) == 0 {
		return nil, errMissingArg("Preamp", "value")
	}

	v, err := strconv.ParseFloat(toks[0], 64)
	if err != nil {
		return nil, fmt.Errorf("config: Preamp: invalid value %q", toks[0])
	}

	gain := v
	if len(toks) > 1 && strings.EqualFold(toks[1], "dB") {
		gain = gaindb.LinearFromDB(v)
	}

	return []graph.FilterRequest{{
		Kernel: kernel.NewPreamp(gain),
	}}, nil
}

// DelayDirective compiles "Delay: 5 ms" or "Delay: 240 samples".
func DelayDirective(ctx *Context, value string) ([]graph.FilterRequest, error) {
	toks := fields(value)
	if len(toks) < 2 {
		return nil, errMissingArg("Delay", "value unit")
	}

	v, err := strconv.ParseFloat(toks[0], 64)
	if err != nil {
		return nil, fmt.Errorf("config: Delay: invalid value %q", toks[0])
	}

	samples := 0

	switch strings.ToLower(toks[1]) {
	case "ms":
		samples = int(v * ctx.SampleRate / 1000)
	case "samples":
		samples = int(v)
	default:
		return nil, fmt.Errorf("config: Delay: unknown unit %q", toks[1])
	}

	return []graph.FilterRequest{{
		Kernel: kernel.NewDelay(samples),
	}}, nil
}

// CopyDirective compiles "Copy: L=0.5*L+0.5*R SUB=0.5*L+0.5*R" — one or
// more weighted-sum assignments separated by whitespace.
func CopyDirective(ctx *Context, value string) ([]graph.FilterRequest, error) {
	toks := fields(value)
	if len(toks) == 0 {
		return nil, errMissingArg("Copy", "assignment")
	}

	assignments := make([]kernel.CopyAssignment, 0, len(toks))
	sources := make([]string, 0, len(toks))
	seen := make(map[string]bool)

	for _, tok := range toks {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("config: Copy: invalid assignment %q", tok)
		}

		target := kv[0]

		terms, err := parseCopyTerms(ctx, kv[1])
		if err != nil {
			return nil, err
		}

		for _, term := range terms {
			if !seen[term.Source] {
				seen[term.Source] = true
				sources = append(sources, term.Source)
			}
		}

		assignments = append(assignments, kernel.CopyAssignment{Target: target, Terms: terms})
	}

	return []graph.FilterRequest{{
		Kernel:         kernel.NewCopy(assignments),
		InChannelNames: sources,
	}}, nil
}

// parseCopyTerms parses "0.5*L+0.5*R" (or bare "L", weight defaulting to
// 1) into weighted source terms. A weight may be any expression the
// config/expr evaluator accepts, not just a literal, so "Copy:" lines can
// reuse Set: variables (e.g. "SUB=gain*L+gain*R").
func parseCopyTerms(ctx *Context, sumExpr string) ([]kernel.CopyTerm, error) {
	var terms []kernel.CopyTerm

	for _, part := range splitSigned(sumExpr) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if idx := strings.Index(part, "*"); idx >= 0 {
			w, err := expr.EvalFloat(strings.TrimSpace(part[:idx]), ctx.Env())
			if err != nil {
				return nil, fmt.Errorf("config: Copy: invalid weight in %q: %w", part, err)
			}

			terms = append(terms, kernel.CopyTerm{Source: strings.TrimSpace(part[idx+1:]), Weight: w})

			continue
		}

		terms = append(terms, kernel.CopyTerm{Source: part, Weight: 1})
	}

	return terms, nil
}

// splitSigned splits "a+b-c" into the terms ["a", "b", "-c"]: a leading
// '+' is dropped, a leading '-' stays attached to its term so it becomes
// part of the weight text (e.g. "-0.5*L").
func splitSigned(expr string) []string {
	var parts []string

	start := 0

	for i := 1; i < len(expr); i++ {
		if (expr[i] == '+' || expr[i] == '-') && expr[i-1] != '*' {
			parts = append(parts, expr[start:i])
			start = i
		}
	}

	parts = append(parts, expr[start:])

	for i, p := range parts {
		if strings.HasPrefix(p, "+") {
			parts[i] = p[1:]
		}
	}

	return parts
}
