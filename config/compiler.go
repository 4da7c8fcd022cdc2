package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwbudde/apoengine/config/expr"
	"github.com/cwbudde/apoengine/graph"
	"github.com/cwbudde/apoengine/kvstore"
)

// ErrShareViolation is returned by readConfigFileWithRetry's loop if the
// config file stays locked by another process for too long — a config
// editor can hold the file open for writing while a reload tries to
// read it, so a permission error gets a few short retries before giving
// up.
var ErrShareViolation = fmt.Errorf("config: file locked by another process")

type ifFrame struct {
	parentEnabled bool
	cond          bool
}

// Compiler drives a graph.Compiler from the text configuration language:
// it reads directives line by line, resolves If:/Else:/EndIf: and
// Device: gating, Stage: filtering, and Include: recursion, and dispatches
// every other line to the Registry.
type Compiler struct {
	registry *Registry
	ctx      *Context
	g        *graph.Compiler

	ifStack      []ifFrame
	currentStage string
}

// NewCompiler starts a fresh compilation against registry, for the given
// sample rate, block size, device identity and LFX flag, with
// initialChannelNames as the starting channel pool (one name per physical
// device channel). store may be nil; RegistryValue()/RegistryExists()
// then resolve as if every key were absent.
func NewCompiler(registry *Registry, sampleRate float64, maxFrames int, device DeviceInfo, lfx bool, initialChannelNames []string, store kvstore.Store) *Compiler {
	return &Compiler{
		registry: registry,
		ctx:      newContext(sampleRate, maxFrames, device, lfx, store),
		g:        graph.NewCompiler(sampleRate, maxFrames, initialChannelNames),
	}
}

// Finish returns the compiled configuration.
func (c *Compiler) Finish() *graph.FilterConfiguration {
	return c.g.Finish()
}

func (c *Compiler) frameEnabled() bool {
	if len(c.ifStack) == 0 {
		return true
	}

	f := c.ifStack[len(c.ifStack)-1]

	return f.parentEnabled && f.cond
}

// stageGateOK reports whether the current Stage: (if any) matches the
// host's LFX flag. A config that never declares Stage: always passes —
// Stage: only narrows plugins that care about pre- vs post-mix
// placement, and most configs don't.
func (c *Compiler) stageGateOK() bool {
	switch c.currentStage {
	case "":
		return true
	case "pre mix":
		return !c.ctx.LFX
	case "post mix":
		return c.ctx.LFX
	default:
		return true
	}
}

func (c *Compiler) effectiveEnabled() bool {
	return c.frameEnabled() && c.stageGateOK()
}

func (c *Compiler) pushIf(cond bool) {
	c.ifStack = append(c.ifStack, ifFrame{parentEnabled: c.frameEnabled(), cond: cond})
}

func (c *Compiler) handleElse() error {
	if len(c.ifStack) == 0 {
		return fmt.Errorf("config: Else: with no matching If:")
	}

	top := &c.ifStack[len(c.ifStack)-1]
	top.cond = !top.cond

	return nil
}

func (c *Compiler) handleEndIf() error {
	if len(c.ifStack) == 0 {
		return fmt.Errorf("config: EndIf: with no matching If:")
	}

	c.ifStack = c.ifStack[:len(c.ifStack)-1]

	return nil
}

// CompileString compiles the directives in text, which must already be
// decoded to UTF-8 (see decodeLine for file-level decoding). baseDir is
// used to resolve Include: paths.
func (c *Compiler) CompileString(text, baseDir string) error {
	for _, line := range strings.Split(text, "\n") {
		if err := c.compileLine(strings.TrimSpace(line), baseDir); err != nil {
			return err
		}
	}

	return nil
}

// CompileFile reads path (retrying on a transient sharing violation,
// decoding with decodeLine's UTF-8/CP-1252-fallback rule) and compiles it.
func (c *Compiler) CompileFile(path string) error {
	data, err := readConfigFileWithRetry(path)
	if err != nil {
		return err
	}

	return c.CompileString(decodeLine(data), filepath.Dir(path))
}

func (c *Compiler) compileLine(line, baseDir string) error {
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
		return nil
	}

	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return nil
	}

	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch key {
	case "If":
		cond, err := expr.EvalBool(value, c.ctx.Env())
		if err != nil {
			return fmt.Errorf("config: If: %w", err)
		}

		c.pushIf(cond)

		return nil
	case "Else":
		return c.handleElse()
	case "EndIf":
		return c.handleEndIf()
	case "Device":
		matched, err := matchDevice(value, c.ctx.Device)
		if err != nil {
			return fmt.Errorf("config: Device: %w", err)
		}

		c.pushIf(matched)

		return nil
	case "Stage":
		if c.frameEnabled() {
			c.currentStage = strings.ToLower(value)
		}

		return nil
	}

	if !c.effectiveEnabled() {
		return nil
	}

	switch key {
	case "Channel":
		c.g.SetCurrentChannelNames(fields(value))

		return nil
	case "Include":
		return c.compileInclude(value, baseDir)
	case "Set":
		return c.compileSet(value)
	}

	factory := c.registry.Lookup(key)
	if factory == nil {
		// A numbered key such as "Filter 1" resolves to its base keyword.
		if base, _, numbered := strings.Cut(key, " "); numbered {
			factory = c.registry.Lookup(base)
		}
	}

	if factory == nil {
		return fmt.Errorf("config: unknown directive %q", key)
	}

	requests, err := factory(c.ctx, value)
	if err != nil {
		return err
	}

	for _, req := range requests {
		if _, err := c.g.AddFilters(req); err != nil {
			return err
		}
	}

	return nil
}

// compileInclude recurses into another config file, saving and restoring
// the active channel selection around it so the included file's own
// directives can't leak a channel-selection change into the file that
// included it.
func (c *Compiler) compileInclude(relPath, baseDir string) error {
	saved := c.g.CurrentChannelNames()
	defer c.g.SetCurrentChannelNames(saved)

	path := relPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, relPath)
	}

	return c.CompileFile(path)
}

// compileSet implements "Set: name = expr" for variables an If: condition
// or a later Set:/Copy: expression can read back.
func (c *Compiler) compileSet(value string) error {
	name, rhs, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("config: Set: expected name = expr, got %q", value)
	}

	name = strings.TrimSpace(name)

	v, err := expr.Eval(strings.TrimSpace(rhs), c.ctx.Env())
	if err != nil {
		return fmt.Errorf("config: Set: %w", err)
	}

	c.ctx.Vars.Set(name, v)

	return nil
}

// matchDevice reports whether pattern matches device. pattern is split on
// whitespace into alternatives — "Speakers* USB*" matches either — and
// each alternative is tried against the device's name, connection name,
// GUID, and a "capture"/"render" direction token in turn, so a Device:
// line can key off whichever piece of host-supplied metadata the target
// device actually has set.
func matchDevice(pattern string, device DeviceInfo) (bool, error) {
	direction := "render"
	if device.Capture {
		direction = "capture"
	}

	for _, alt := range fields(pattern) {
		for _, candidate := range []string{device.Name, device.ConnectionName, device.GUID, direction} {
			if candidate == "" {
				continue
			}

			ok, err := filepath.Match(alt, candidate)
			if err != nil {
				return false, err
			}

			if ok {
				return true, nil
			}
		}
	}

	return false, nil
}

func readConfigFileWithRetry(path string) ([]byte, error) {
	const maxAttempts = 5

	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}

		lastErr = err

		if !os.IsPermission(err) {
			return nil, err
		}

		time.Sleep(time.Millisecond)
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrShareViolation, path, lastErr)
}
