// Package config compiles the text configuration language into a graph
// of filter build requests, driving a graph.Compiler to produce a
// graph.FilterConfiguration.
package config

import (
	"github.com/cwbudde/apoengine/config/expr"
	"github.com/cwbudde/apoengine/kvstore"
)

// DeviceInfo describes the audio device the engine is attached to —
// enough for the Device: directive to gate config sections by device
// name, connection name, GUID, or capture-vs-render direction.
type DeviceInfo struct {
	Name           string
	ConnectionName string
	GUID           string
	Capture        bool
	ChannelCount   int
	ChannelMask    uint32
}

// Context carries everything a directive factory needs besides the raw
// key/value text: the sample rate and block size filters are designed
// for, the current device identity, the host's LFX flag (used to gate
// Stage: blocks), the expression-evaluator variable namespace If:
// conditions and Copy: weights read and write, and the key/value store
// backing RegistryValue() lookups.
type Context struct {
	SampleRate float64
	MaxFrames  int
	Device     DeviceInfo
	LFX        bool

	Vars  expr.MapEnv
	Store kvstore.Store
}

func newContext(sampleRate float64, maxFrames int, device DeviceInfo, lfx bool, store kvstore.Store) *Context {
	return &Context{
		SampleRate: sampleRate,
		MaxFrames:  maxFrames,
		Device:     device,
		LFX:        lfx,
		Vars:       expr.MapEnv{},
		Store:      store,
	}
}

// Env adapts this Context to the expr package's Env and RegistryReader
// interfaces, so If:/Set:/Copy: weight expressions can read and write
// Set: variables and call RegistryValue()/RegistryExists() against Store.
func (c *Context) Env() expr.Env {
	return contextEnv{ctx: c}
}

type contextEnv struct {
	ctx *Context
}

func (e contextEnv) Get(name string) (expr.Value, bool) { return e.ctx.Vars.Get(name) }
func (e contextEnv) Set(name string, v expr.Value)       { e.ctx.Vars.Set(name, v) }

// ReadRegistry backs the RegistryValue() built-in. Reading a key also
// watches it, so whatever key a config's currently active If:/Set:/Copy:
// expressions reference becomes one the reload coordinator wakes up for.
func (e contextEnv) ReadRegistry(key string) (string, error) {
	if e.ctx.Store == nil {
		return "", kvstore.ErrNotFound
	}

	e.ctx.Store.Watch(key)

	return e.ctx.Store.Read(key)
}

// RegistryExists backs the RegistryExists() built-in.
func (e contextEnv) RegistryExists(key string) bool {
	if e.ctx.Store == nil {
		return false
	}

	e.ctx.Store.Watch(key)

	return e.ctx.Store.Exists(key)
}
