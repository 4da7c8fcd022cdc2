//go:build linux

package watch

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// inotifySource watches the directory containing a path for writes,
// renames and moves, and reports every such event on its Events channel.
// Watching the containing directory rather than the file itself survives
// editors that save by replacing the file (write-new, rename-over-old),
// which would leave an fd-based watch on the old inode silently dead.
type inotifySource struct {
	fd       int
	watch    int
	fileName string
	events   chan struct{}
	done     chan struct{}
}

// NewSource opens an inotify watch on the directory containing path and
// starts a background goroutine that reports a change whenever that file
// is written to, renamed, or replaced.
func NewSource(path string) (Source, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("watch: inotify_init1: %w", err)
	}

	dir := filepath.Dir(path)

	const mask = unix.IN_CLOSE_WRITE | unix.IN_MOVED_TO | unix.IN_MOVED_FROM | unix.IN_DELETE | unix.IN_CREATE

	wd, err := unix.InotifyAddWatch(fd, dir, mask)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("watch: inotify_add_watch %q: %w", dir, err)
	}

	s := &inotifySource{
		fd:       fd,
		watch:    wd,
		fileName: filepath.Base(path),
		events:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	go s.run()

	return s, nil
}

func (s *inotifySource) Events() <-chan struct{} { return s.events }

func (s *inotifySource) Close() error {
	close(s.done)
	return unix.Close(s.fd)
}

func (s *inotifySource) run() {
	defer close(s.events)

	buf := make([]byte, 4096)

	for {
		n, err := unix.Read(s.fd, buf)
		if err != nil {
			select {
			case <-s.done:
			default:
			}

			return
		}

		if s.matchesWatchedFile(buf[:n]) {
			notifyNonBlocking(s.events)
		}
	}
}

// matchesWatchedFile reports whether any event in a raw inotify read
// buffer names the file this Source was created for — the directory
// watch fires for every entry in the directory, not just ours.
func (s *inotifySource) matchesWatchedFile(buf []byte) bool {
	off := 0

	for off+unix.SizeofInotifyEvent <= len(buf) {
		raw := (*unix.InotifyEvent)(ptrAt(buf, off))
		nameLen := int(raw.Len)
		nameStart := off + unix.SizeofInotifyEvent
		nameEnd := nameStart + nameLen

		if nameEnd > len(buf) {
			break
		}

		name := cString(buf[nameStart:nameEnd])
		if name == "" || name == s.fileName {
			return true
		}

		off = nameEnd
	}

	return false
}
