package config

import (
	"fmt"
	"strconv"
	"strings"
)

// fields splits a directive's value text on whitespace, same as the
// original's token-by-token directive parsing.
func fields(value string) []string {
	return strings.Fields(value)
}

// namedArg scans a token stream (as produced by fields) for name followed
// by a numeric value and an optional unit suffix, e.g. "Fc 1000 Hz" or
// "Gain -6 dB". Returns ok=false if name doesn't appear.
func namedArg(toks []string, name string) (value float64, unit string, ok bool) {
	for i := 0; i < len(toks)-1; i++ {
		if !strings.EqualFold(toks[i], name) {
			continue
		}

		v, err := strconv.ParseFloat(toks[i+1], 64)
		if err != nil {
			return 0, "", false
		}

		if i+2 < len(toks) && isUnit(toks[i+2]) {
			return v, toks[i+2], true
		}

		return v, "", true
	}

	return 0, "", false
}

func isUnit(tok string) bool {
	switch strings.ToLower(tok) {
	case "hz", "db", "ms", "samples":
		return true
	default:
		return false
	}
}

func firstToken(toks []string) string {
	if len(toks) == 0 {
		return ""
	}

	return toks[0]
}

// onOff parses the leading ON/OFF token every Filter:/BiQuad:/IIR: line
// starts with. Missing the token entirely defaults to ON.
func onOff(toks []string) (enabled bool, rest []string) {
	if len(toks) == 0 {
		return true, toks
	}

	switch strings.ToUpper(toks[0]) {
	case "ON":
		return true, toks[1:]
	case "OFF":
		return false, toks[1:]
	default:
		return true, toks
	}
}

func errMissingArg(directive, name string) error {
	return fmt.Errorf("config: %s: missing %q argument", directive, name)
}
