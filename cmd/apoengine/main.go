// Command apoengine is a demo host for the engine package: it runs a
// config.txt-driven filter chain over a WAV file or a live playback
// device, so the compiler and runtime can be exercised without a real
// audio driver plugin around them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error

	switch os.Args[1] {
	case "file":
		err = runFile(os.Args[2:])
	case "play":
		err = runPlay(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "apoengine: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: apoengine <command> [flags]

Commands:
  file   process a WAV file through a config.txt filter chain
  play   run a config.txt filter chain live against an output device

Run "apoengine <command> -h" for command-specific flags.
`)
}
