package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/apoengine/engine"
)

// runFile decodes a WAV file, runs it through a config.txt filter chain
// in fixed-size blocks, and writes the result to another WAV file.
func runFile(args []string) error {
	fs := flag.NewFlagSet("file", flag.ExitOnError)

	in := fs.String("in", "", "input WAV file (required)")
	out := fs.String("out", "", "output WAV file (required)")
	configDir := fs.String("config", "", "directory containing config.txt (required)")
	blockSize := fs.Int("block", 1024, "frames processed per Process call")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *in == "" || *out == "" || *configDir == "" {
		fs.Usage()
		return fmt.Errorf("file: -in, -out and -config are all required")
	}

	inFile, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("file: open input: %w", err)
	}
	defer inFile.Close()

	dec := wav.NewDecoder(inFile)
	dec.ReadInfo()

	if err := dec.Err(); err != nil {
		return fmt.Errorf("file: decode header: %w", err)
	}

	numChans := int(dec.NumChans)
	sampleRate := int(dec.SampleRate)
	bitDepth := int(dec.BitDepth)

	outFile, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("file: create output: %w", err)
	}
	defer outFile.Close()

	enc := wav.NewEncoder(outFile, sampleRate, 16, numChans, 1)
	defer enc.Close()

	e := engine.New()

	err = e.Initialize(context.Background(), engine.InitConfig{
		SampleRate:         float64(sampleRate),
		OutputChannelCount: numChans,
		MaxFrames:          *blockSize,
		ConfigDir:          *configDir,
	})
	if err != nil {
		return fmt.Errorf("file: initialize engine: %w", err)
	}
	defer e.Close()

	format := &goaudio.Format{NumChannels: numChans, SampleRate: sampleRate}
	pcm := &goaudio.IntBuffer{Format: format, Data: make([]int, *blockSize*numChans), SourceBitDepth: bitDepth}

	input := make([]float32, *blockSize*numChans)
	output := make([]float32, *blockSize*numChans)
	outInts := make([]int, *blockSize*numChans)

	maxVal := float64(int64(1) << (bitDepth - 1))

	for {
		pcm.Data = pcm.Data[:cap(pcm.Data)]

		n, err := dec.PCMBuffer(pcm)
		if err != nil {
			return fmt.Errorf("file: read samples: %w", err)
		}

		if n == 0 {
			break
		}

		frames := n / numChans

		for i := 0; i < n; i++ {
			input[i] = float32(float64(pcm.Data[i]) / maxVal)
		}

		e.Process(output[:n], input[:n], frames)

		for i := 0; i < n; i++ {
			outInts[i] = int(math.Round(float64(output[i]) * 32767))
		}

		writeBuf := &goaudio.IntBuffer{Format: &goaudio.Format{NumChannels: numChans, SampleRate: sampleRate}, Data: outInts[:n], SourceBitDepth: 16}
		if err := enc.Write(writeBuf); err != nil {
			return fmt.Errorf("file: write samples: %w", err)
		}

		if n < len(pcm.Data) {
			break
		}
	}

	return nil
}
