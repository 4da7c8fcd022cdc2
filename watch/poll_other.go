//go:build !linux

package watch

import (
	"os"
	"time"
)

const pollInterval = 500 * time.Millisecond

// pollSource polls a file's mtime and size on a fixed interval. It's the
// fallback for platforms without an inotify-equivalent wired up yet —
// correct but, unlike the Linux backend, not instantaneous.
type pollSource struct {
	path   string
	events chan struct{}
	done   chan struct{}
}

// NewSource starts a background goroutine that polls path's modification
// time and reports a change whenever it advances.
func NewSource(path string) (Source, error) {
	s := &pollSource{
		path:   path,
		events: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	go s.run()

	return s, nil
}

func (s *pollSource) Events() <-chan struct{} { return s.events }

func (s *pollSource) Close() error {
	close(s.done)
	return nil
}

func (s *pollSource) run() {
	defer close(s.events)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastModTime, lastSize := statOf(s.path)

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			modTime, size := statOf(s.path)
			if modTime != lastModTime || size != lastSize {
				lastModTime, lastSize = modTime, size
				notifyNonBlocking(s.events)
			}
		}
	}
}

func statOf(path string) (time.Time, int64) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, -1
	}

	return info.ModTime(), info.Size()
}
