package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"
	"unsafe"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/apoengine/engine"
)

// engineSource is an oto.Player source: each Read pulls the next block of
// frames from the decoder, runs it through the engine, and hands back the
// result as raw little-endian float32 bytes — the same buffer-filling
// shape as a live audio driver's callback.
type engineSource struct {
	dec      *wav.Decoder
	e        *engine.Engine
	numChans int
	bitDepth int
	maxVal   float64

	pcm    *goaudio.IntBuffer
	input  []float32
	output []float32
}

func newEngineSource(dec *wav.Decoder, e *engine.Engine, numChans, bitDepth, blockFrames int) *engineSource {
	format := &goaudio.Format{NumChannels: numChans, SampleRate: int(dec.SampleRate)}

	return &engineSource{
		dec:      dec,
		e:        e,
		numChans: numChans,
		bitDepth: bitDepth,
		maxVal:   float64(int64(1) << (bitDepth - 1)),
		pcm:      &goaudio.IntBuffer{Format: format, Data: make([]int, blockFrames*numChans), SourceBitDepth: bitDepth},
		input:    make([]float32, blockFrames*numChans),
		output:   make([]float32, blockFrames*numChans),
	}
}

func (s *engineSource) Read(p []byte) (int, error) {
	wantSamples := len(p) / 4
	if wantSamples > len(s.pcm.Data) {
		wantSamples = len(s.pcm.Data)
	}

	s.pcm.Data = s.pcm.Data[:wantSamples]

	n, err := s.dec.PCMBuffer(s.pcm)
	if err != nil {
		return 0, err
	}

	if n == 0 {
		return 0, io.EOF
	}

	frames := n / s.numChans

	for i := 0; i < n; i++ {
		s.input[i] = float32(float64(s.pcm.Data[i]) / s.maxVal)
	}

	s.e.Process(s.output[:n], s.input[:n], frames)

	byteLen := n * 4
	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&s.output[0]))[:byteLen])

	return byteLen, nil
}

// runPlay decodes a WAV file and plays it live through an oto output
// device, running every block through a config.txt filter chain first.
func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)

	in := fs.String("in", "", "input WAV file (required)")
	configDir := fs.String("config", "", "directory containing config.txt (required)")
	blockSize := fs.Int("block", 1024, "frames processed per Process call")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *in == "" || *configDir == "" {
		fs.Usage()
		return fmt.Errorf("play: -in and -config are both required")
	}

	inFile, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("play: open input: %w", err)
	}
	defer inFile.Close()

	dec := wav.NewDecoder(inFile)
	dec.ReadInfo()

	if err := dec.Err(); err != nil {
		return fmt.Errorf("play: decode header: %w", err)
	}

	numChans := int(dec.NumChans)
	sampleRate := int(dec.SampleRate)
	bitDepth := int(dec.BitDepth)

	e := engine.New()

	err = e.Initialize(context.Background(), engine.InitConfig{
		SampleRate:         float64(sampleRate),
		OutputChannelCount: numChans,
		MaxFrames:          *blockSize,
		ConfigDir:          *configDir,
	})
	if err != nil {
		return fmt.Errorf("play: initialize engine: %w", err)
	}
	defer e.Close()

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: numChans,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	})
	if err != nil {
		return fmt.Errorf("play: create oto context: %w", err)
	}

	<-ready

	source := newEngineSource(dec, e, numChans, bitDepth, *blockSize)
	player := ctx.NewPlayer(source)
	defer player.Close()

	player.Play()

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	return nil
}
