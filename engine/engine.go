// Package engine is the real-time audio processing engine: it owns the
// compiled filter configuration, the crossfade between an old and a
// newly reloaded one, and the silence/passthrough short-circuits that
// keep a quiet or unconfigured stream cheap to process.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/apoengine/config"
	"github.com/cwbudde/apoengine/graph"
	"github.com/cwbudde/apoengine/kvstore"
	"github.com/cwbudde/apoengine/reload"
	"github.com/cwbudde/apoengine/watch"
)

// DeviceInfo identifies the audio endpoint the engine is attached to.
// It must be set (via SetDeviceInfo) before Initialize for Device:
// directives to see it.
type DeviceInfo struct {
	Capture        bool
	Name           string
	ConnectionName string
	GUID           string
}

// InitConfig is everything Initialize needs to stand up a configuration:
// the stream geometry the host negotiated, and where the config language
// lives on disk.
type InitConfig struct {
	SampleRate         float64
	InputChannelCount  int
	RealChannelCount   int
	OutputChannelCount int
	ChannelMask        uint32
	MaxFrames          int

	// ConfigDir is the directory containing config.txt; Include: targets
	// resolve relative to whichever file contains them. Leave empty to
	// run without hot-reload (Initialize still compiles once, from an
	// empty config.Compiler).
	ConfigDir string

	// Registry supplies the directive factories the config compiler
	// dispatches to. A nil Registry uses config.DefaultRegistry().
	Registry *config.Registry

	// KVStore backs RegistryValue()/RegistryExists() lookups from the
	// config language. The reload coordinator also polls its Changed
	// method, alongside the config directory watch, to pick up edits to
	// whatever key the active config referenced.
	KVStore kvstore.Store
}

// Engine runs a compiled graph.FilterConfiguration on every audio
// callback and swaps in newly reloaded configurations with a short
// crossfade instead of a click-producing hard cutover.
type Engine struct {
	logger         *slog.Logger
	reloadDebounce time.Duration
	transitionMS   float64

	mu     sync.Mutex
	device DeviceInfo
	lfx    bool

	sampleRate         float64
	maxFrames          int
	deviceChans        int
	realChannelCount   int
	outputChannelCount int
	channelMask        uint32
	configDir          string
	registry           *config.Registry
	kv                 kvstore.Store
	transitionLen      int

	current atomic.Pointer[graph.FilterConfiguration]
	pool    [][]float64

	next               *graph.FilterConfiguration
	nextPool           [][]float64
	transitionCounter  int
	lastInputWasSilent bool

	outScratchA [][]float64
	outScratchB [][]float64

	coordinator *reload.Coordinator
	cancel      context.CancelFunc
}

// New returns an unconfigured Engine; call SetDeviceInfo/SetLFX as
// needed, then Initialize before the first Process call.
func New(opts ...Option) *Engine {
	o := engineOptions{logger: slog.Default(), reloadDebounce: reload.DefaultDebounce, transitionMS: 10}
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{
		logger:         o.logger,
		reloadDebounce: o.reloadDebounce,
		transitionMS:   o.transitionMS,
	}
}

// SetDeviceInfo records which device the engine is attached to, for
// Device: directives evaluated by the next Initialize or reload. Must be
// called before Initialize to take effect on the first compile.
func (e *Engine) SetDeviceInfo(info DeviceInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.device = info
}

// SetLFX records the host's pre-/post-mix placement flag, gating Stage:
// directives. Must be called before Initialize to take effect on the
// first compile.
func (e *Engine) SetLFX(lfx bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lfx = lfx
}

// Initialize compiles the first configuration and, if cfg.ConfigDir names
// a directory, starts watching it for changes. Calling Initialize again
// after a prior call tears down the previous watcher first.
func (e *Engine) Initialize(ctx context.Context, cfg InitConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()

		if e.coordinator != nil {
			_ = e.coordinator.Close()
		}
	}

	e.sampleRate = cfg.SampleRate
	e.maxFrames = cfg.MaxFrames
	e.channelMask = cfg.ChannelMask
	e.configDir = cfg.ConfigDir
	e.kv = cfg.KVStore

	if cfg.Registry != nil {
		e.registry = cfg.Registry
	} else {
		e.registry = config.DefaultRegistry()
	}

	deviceChans := cfg.OutputChannelCount
	if e.device.Capture {
		deviceChans = cfg.InputChannelCount
	}

	e.deviceChans = deviceChans
	e.outputChannelCount = cfg.OutputChannelCount

	real := cfg.RealChannelCount
	if real <= 0 || real > deviceChans {
		real = deviceChans
	}

	e.realChannelCount = real

	e.transitionLen = int(e.sampleRate * e.transitionMS / 1000)

	initial, err := e.compileLocked()
	if err != nil {
		return fmt.Errorf("engine: initial compile: %w", err)
	}

	e.current.Store(initial)
	e.pool = initial.NewPool(e.maxFrames)
	e.outScratchA = newPlanarBuffer(deviceChans, e.maxFrames)
	e.outScratchB = newPlanarBuffer(deviceChans, e.maxFrames)
	e.next = nil
	e.nextPool = nil
	e.transitionCounter = 0
	e.lastInputWasSilent = false
	e.coordinator = nil
	e.cancel = nil

	if e.configDir == "" {
		return nil
	}

	source, err := watch.NewSource(filepath.Join(e.configDir, "config.txt"))
	if err != nil {
		e.logger.Warn("hot-reload disabled: could not start config watcher", "error", err)
		return nil
	}

	e.coordinator = reload.New(source, e.kv, e.compile, e.reloadDebounce, e.logger)

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	go e.coordinator.Run(runCtx)

	return nil
}

// compile builds a fresh configuration from the directory Initialize was
// given, under the engine's current device/LFX state. It is the
// reload.CompileFunc passed to the coordinator. It holds e.mu for the
// whole compile, file read and parse included, so SetDeviceInfo, SetLFX,
// Initialize and Close wait for a running compile to finish.
func (e *Engine) compile() (*graph.FilterConfiguration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.compileLocked()
}

func (e *Engine) compileLocked() (*graph.FilterConfiguration, error) {
	// Only the real channels get named and wired into the graph; spare
	// lanes beyond realChannelCount never reach a filter and are carried
	// straight from input to output by Process.
	names := channelNamesFromMask(e.channelMask, e.realChannelCount)

	c := config.NewCompiler(e.registry, e.sampleRate, e.maxFrames, config.DeviceInfo{
		Name:           e.device.Name,
		ConnectionName: e.device.ConnectionName,
		GUID:           e.device.GUID,
		Capture:        e.device.Capture,
		ChannelCount:   e.realChannelCount,
		ChannelMask:    e.channelMask,
	}, e.lfx, names, e.kv)

	if err := c.CompileFile(filepath.Join(e.configDir, "config.txt")); err != nil {
		return nil, err
	}

	return c.Finish(), nil
}

// Close stops the hot-reload watcher, if one was started.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
	}

	if e.coordinator != nil {
		return e.coordinator.Close()
	}

	return nil
}

// Process runs one audio callback's worth of frames. input and output
// are interleaved by channel (frame-major: sample i of channel c is at
// index i*deviceChans+c) and may alias the same backing array. Only the
// first realChannelCount channels are deinterleaved into the filter
// graph's pool; any channels beyond that are spare lanes copied straight
// from input to output, never touched by a filter.
//
// It takes shortcuts before touching the filter graph: two consecutive
// all-silent callbacks skip the graph entirely and emit silence
// directly; an empty configuration with no pending reload and no spare
// lanes skips the (de-)interleaving work and copies input straight to
// output.
func (e *Engine) Process(output, input []float32, frames int) {
	e.maybePromote()

	silent := isSilent(input)

	if silent && e.lastInputWasSilent {
		zeroFloat32(output)
		return
	}

	e.lastInputWasSilent = silent

	cur := e.current.Load()

	if cur.IsEmpty(e.realChannelCount) && e.next == nil && e.realChannelCount == e.outputChannelCount {
		copy(output, input)
		return
	}

	deinterleave(e.pool, input, frames, e.realChannelCount, e.deviceChans)
	cur.Process(e.pool, frames)

	if e.next == nil {
		cur.Write(e.outScratchA, e.pool, frames)
		copySpareChannels(e.outScratchA, input, frames, e.deviceChans, e.realChannelCount, e.deviceChans)
		interleave(output, e.outScratchA, frames, e.deviceChans, e.deviceChans)

		return
	}

	deinterleave(e.nextPool, input, frames, e.realChannelCount, e.deviceChans)
	e.next.Process(e.nextPool, frames)

	cur.Write(e.outScratchA, e.pool, frames)
	e.next.Write(e.outScratchB, e.nextPool, frames)
	copySpareChannels(e.outScratchA, input, frames, e.deviceChans, e.realChannelCount, e.deviceChans)
	copySpareChannels(e.outScratchB, input, frames, e.deviceChans, e.realChannelCount, e.deviceChans)

	e.blendCrossfade(output, frames)

	if e.transitionCounter >= e.transitionLen {
		e.promoteNext()
	}
}

func (e *Engine) maybePromote() {
	if e.coordinator == nil || e.next != nil {
		return
	}

	select {
	case cfg := <-e.coordinator.Pending():
		e.next = cfg
		e.nextPool = cfg.NewPool(e.maxFrames)
		e.transitionCounter = 0
	default:
	}
}

func (e *Engine) promoteNext() {
	e.current.Store(e.next)
	e.pool = e.nextPool
	e.next = nil
	e.nextPool = nil
	e.transitionCounter = 0

	if e.coordinator != nil {
		e.coordinator.Release()
	}
}

// blendCrossfade writes a raised-cosine blend of outScratchA (current)
// and outScratchB (next) into output, advancing transitionCounter one
// step per frame until it reaches transitionLen, after which next's
// output passes through unmixed.
func (e *Engine) blendCrossfade(output []float32, frames int) {
	for f := 0; f < frames; f++ {
		factor := 1.0
		if e.transitionCounter < e.transitionLen {
			factor = 0.5 * (1 - math.Cos(float64(e.transitionCounter)*math.Pi/float64(e.transitionLen)))
		}

		for c := 0; c < e.deviceChans; c++ {
			a := e.outScratchA[c][f]
			b := e.outScratchB[c][f]
			output[f*e.deviceChans+c] = float32(a*(1-factor) + b*factor)
		}

		e.transitionCounter++
	}
}

func isSilent(buf []float32) bool {
	for _, v := range buf {
		if v != 0 {
			return false
		}
	}

	return true
}
