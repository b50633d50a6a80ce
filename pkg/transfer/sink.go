package transfer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// SinkPopulated reports whether path exists as a non-empty regular file.
func SinkPopulated(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular() && info.Size() > 0, nil
}

// sinkSet serializes appends per destination path. Bodies are first streamed
// to a spool file so a transfer that fails part way never touches the sink
// and concurrent transfers to one sink never interleave.
type sinkSet struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSinkSet() *sinkSet {
	return &sinkSet{locks: make(map[string]*sync.Mutex)}
}

func (s *sinkSet) lock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[path]
	if !ok {
		l = &sync.Mutex{}
		s.locks[path] = l
	}
	return l
}

func (s *sinkSet) write(path string, body io.Reader, spoolDir string, delim []byte) (int64, error) {
	spool, err := os.CreateTemp(spoolDir, "transfer-*.part")
	if err != nil {
		return 0, fmt.Errorf("create spool: %w", err)
	}
	defer os.Remove(spool.Name())
	defer spool.Close()

	n, err := io.Copy(spool, body)
	if err != nil {
		return n, fmt.Errorf("read body: %w", err)
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return n, err
	}

	l := s.lock(path)
	l.Lock()
	defer l.Unlock()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return n, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return n, fmt.Errorf("open sink: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return n, fmt.Errorf("stat sink: %w", err)
	}
	if err := appendRecord(f, info.Size(), spool, delim); err != nil {
		f.Close()
		return n, fmt.Errorf("append to %s: %w", path, err)
	}
	return n, f.Close()
}

// sinkFile is the part of *os.File an append needs.
type sinkFile interface {
	io.Writer
	Truncate(size int64) error
}

// appendRecord writes body then delim to f, which currently holds size bytes.
// On failure f is cut back to size so the sink never keeps a partial record.
func appendRecord(f sinkFile, size int64, body io.Reader, delim []byte) error {
	_, err := io.Copy(f, body)
	if err == nil && len(delim) > 0 {
		_, err = f.Write(delim)
	}
	if err == nil {
		return nil
	}
	if terr := f.Truncate(size); terr != nil {
		return errors.Join(err, fmt.Errorf("truncate to %d bytes: %w", size, terr))
	}
	return err
}
