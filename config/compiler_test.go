package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/apoengine/kvstore"
)

func newTestCompiler(t *testing.T, device DeviceInfo) *Compiler {
	t.Helper()

	return NewCompiler(DefaultRegistry(), 48000, 512, device, false, []string{"L", "R"}, nil)
}

func TestCompileString_PreampEmitsOneFilter(t *testing.T) {
	c := newTestCompiler(t, DeviceInfo{Name: "Speakers"})

	if err := c.CompileString("Preamp: -6 dB", "."); err != nil {
		t.Fatalf("CompileString: %v", err)
	}

	cfg := c.Finish()
	if len(cfg.Filters) != 1 {
		t.Fatalf("got %d filters, want 1", len(cfg.Filters))
	}
}

func TestCompileString_IfElseSelectsExactlyOneBranch(t *testing.T) {
	c := newTestCompiler(t, DeviceInfo{Name: "Speakers"})

	text := "Set: x = 1\n" +
		"If: x == 1\n" +
		"Preamp: -3 dB\n" +
		"Else:\n" +
		"Preamp: -9 dB\n" +
		"EndIf:\n"

	if err := c.CompileString(text, "."); err != nil {
		t.Fatalf("CompileString: %v", err)
	}

	cfg := c.Finish()
	if len(cfg.Filters) != 1 {
		t.Fatalf("got %d filters, want exactly 1 (the If: branch)", len(cfg.Filters))
	}
}

func TestCompileString_NestedIfElseFlipsOnlyInnermostFrame(t *testing.T) {
	c := newTestCompiler(t, DeviceInfo{Name: "Speakers"})

	text := "If: 1 == 0\n" + // outer: false
		"Preamp: -1 dB\n" +
		"If: 1 == 1\n" + // would be true, but outer is false
		"Preamp: -2 dB\n" +
		"Else:\n" +
		"Preamp: -3 dB\n" +
		"EndIf:\n" +
		"EndIf:\n"

	if err := c.CompileString(text, "."); err != nil {
		t.Fatalf("CompileString: %v", err)
	}

	cfg := c.Finish()
	if len(cfg.Filters) != 0 {
		t.Fatalf("got %d filters, want 0 (outer If: is false)", len(cfg.Filters))
	}
}

func TestCompileString_DeviceDirectiveGatesByGlob(t *testing.T) {
	c := newTestCompiler(t, DeviceInfo{Name: "Speakers (Realtek)"})

	text := "Device: Speakers*\n" +
		"Preamp: -6 dB\n" +
		"EndIf:\n" +
		"Device: Headphones*\n" +
		"Preamp: -6 dB\n" +
		"EndIf:\n"

	if err := c.CompileString(text, "."); err != nil {
		t.Fatalf("CompileString: %v", err)
	}

	cfg := c.Finish()
	if len(cfg.Filters) != 1 {
		t.Fatalf("got %d filters, want 1 (only the matching Device: block)", len(cfg.Filters))
	}
}

func TestCompileString_StageGatesByLFX(t *testing.T) {
	c := newTestCompiler(t, DeviceInfo{Name: "Speakers"})
	c.ctx.LFX = false

	text := "Stage: Pre Mix\n" +
		"Preamp: -3 dB\n" +
		"Stage: Post Mix\n" +
		"Preamp: -9 dB\n"

	if err := c.CompileString(text, "."); err != nil {
		t.Fatalf("CompileString: %v", err)
	}

	cfg := c.Finish()
	if len(cfg.Filters) != 1 {
		t.Fatalf("got %d filters, want 1 (only the Pre Mix stage, LFX=false)", len(cfg.Filters))
	}
}

func TestCompileString_ChannelNarrowsPreamp(t *testing.T) {
	c := newTestCompiler(t, DeviceInfo{Name: "Speakers"})

	if err := c.CompileString("Channel: L\nPreamp: -12 dB", "."); err != nil {
		t.Fatalf("CompileString: %v", err)
	}

	cfg := c.Finish()
	if len(cfg.Filters) != 1 {
		t.Fatalf("got %d filters, want 1", len(cfg.Filters))
	}

	f := cfg.Filters[0]
	if len(f.InChannels) != 1 {
		t.Fatalf("got %d input channels, want 1 (just L)", len(f.InChannels))
	}

	lIdx := -1
	for i, name := range cfg.ChannelNames {
		if name == "L" {
			lIdx = i
		}
	}

	if f.InChannels[0] != lIdx {
		t.Fatalf("Preamp bound to channel index %d, want L's index %d", f.InChannels[0], lIdx)
	}
}

func TestCompileString_ChannelNarrowsCopySource(t *testing.T) {
	c := newTestCompiler(t, DeviceInfo{Name: "Speakers"})

	if err := c.CompileString("Channel: L\nCopy: SUB=L", "."); err != nil {
		t.Fatalf("CompileString: %v", err)
	}

	cfg := c.Finish()

	found := false

	for _, name := range cfg.ChannelNames {
		if name == "SUB" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected SUB channel to be introduced, got %v", cfg.ChannelNames)
	}
}

func TestCompileString_DeviceDirectiveMatchesConnectionNameAlternation(t *testing.T) {
	device := DeviceInfo{Name: "Unnamed Endpoint", ConnectionName: "USB Audio Device"}
	c := newTestCompiler(t, device)

	text := "Device: Speakers* USB*\n" +
		"Preamp: -6 dB\n" +
		"EndIf:\n"

	if err := c.CompileString(text, "."); err != nil {
		t.Fatalf("CompileString: %v", err)
	}

	cfg := c.Finish()
	if len(cfg.Filters) != 1 {
		t.Fatalf("got %d filters, want 1 (ConnectionName should match the USB* alternative)", len(cfg.Filters))
	}
}

func TestCompileString_SetReadsRegistryValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.kv")

	if err := os.WriteFile(path, []byte("profile=loud\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store := kvstore.NewFileStore(path)

	c := NewCompiler(DefaultRegistry(), 48000, 512, DeviceInfo{Name: "Speakers"}, false, []string{"L", "R"}, store)

	text := "Set: profile = RegistryValue(\"profile\")\n" +
		"If: profile == \"loud\"\n" +
		"Preamp: 0 dB\n" +
		"Else:\n" +
		"Preamp: -12 dB\n" +
		"EndIf:\n"

	if err := c.CompileString(text, "."); err != nil {
		t.Fatalf("CompileString: %v", err)
	}

	cfg := c.Finish()
	if len(cfg.Filters) != 1 {
		t.Fatalf("got %d filters, want exactly 1 (the If: branch matching the registry value)", len(cfg.Filters))
	}

	if !store.Exists("profile") {
		t.Fatalf("expected %q to exist in the store", "profile")
	}
}

func TestCompileString_UnknownDirectiveFails(t *testing.T) {
	c := newTestCompiler(t, DeviceInfo{Name: "Speakers"})

	if err := c.CompileString("Frobnicate: yes", "."); err == nil {
		t.Fatal("expected an error for an unknown directive")
	}
}

func TestDecodeLine_FallsBackToCP1252ForInvalidUTF8(t *testing.T) {
	// 0x93/0x94 are CP-1252 curly quotes; on their own they're invalid
	// UTF-8 continuation bytes.
	data := []byte{0x93, 'h', 'i', 0x94}

	got := decodeLine(data)
	want := "“hi”"

	if got != want {
		t.Fatalf("decodeLine() = %q, want %q", got, want)
	}
}

func TestDecodeLine_PassesThroughValidUTF8(t *testing.T) {
	data := []byte("Preamp: -6 dB # café")

	if got := decodeLine(data); got != string(data) {
		t.Fatalf("decodeLine() = %q, want %q", got, string(data))
	}
}
