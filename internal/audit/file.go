package audit

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// maxLineBytes bounds one JSONL record; a profile calculation with its full
// explanation is well under this.
const maxLineBytes = 4 << 20

// FileLog is a JSON Lines audit log. Every record is one line appended with
// O_APPEND; unreadable or oversized lines are skipped on read.
type FileLog struct {
	path    string
	maxLine int

	mu sync.Mutex
	f  *os.File
}

// OpenFile opens (creating if needed) the JSONL log at path.
func OpenFile(path string) (*FileLog, error) {
	if path == "" {
		return nil, eris.New("audit: file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "audit: create dir %s", dir)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "audit: open %s", path)
	}
	return &FileLog{path: path, maxLine: maxLineBytes, f: f}, nil
}

// Path returns the file backing the log.
func (l *FileLog) Path() string { return l.path }

func (l *FileLog) Append(_ context.Context, r Record) error {
	line, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "audit: encode record")
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return eris.New("audit: log closed")
	}
	if _, err := l.f.Write(line); err != nil {
		return eris.Wrap(err, "audit: append")
	}
	return nil
}

func (l *FileLog) Tail(ctx context.Context, n int) ([]Record, error) {
	recs, err := l.readAll(ctx, func(Record) bool { return true })
	if err != nil {
		return nil, err
	}
	return lastN(recs, n), nil
}

func (l *FileLog) ByType(ctx context.Context, typ Type, n int) ([]Record, error) {
	recs, err := l.readAll(ctx, func(r Record) bool { return r.Type == typ })
	if err != nil {
		return nil, err
	}
	return lastN(recs, n), nil
}

func (l *FileLog) Count(ctx context.Context) (int, error) {
	recs, err := l.readAll(ctx, func(Record) bool { return true })
	return len(recs), err
}

// Close closes the append handle. Reads remain possible.
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return eris.Wrap(err, "audit: close")
}

func (l *FileLog) readAll(ctx context.Context, keep func(Record) bool) ([]Record, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "audit: open %s", l.path)
	}
	defer f.Close() //nolint:errcheck

	rd := bufio.NewReaderSize(f, 64*1024)

	var (
		out     []Record
		skipped int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "audit: read cancelled")
		}
		line, oversized, err := readLine(rd, l.maxLine)
		if err != nil && err != io.EOF {
			return nil, eris.Wrap(err, "audit: read")
		}
		line = bytes.TrimSpace(line)
		switch {
		case oversized:
			skipped++
		case len(line) == 0:
		default:
			var r Record
			if jerr := json.Unmarshal(line, &r); jerr != nil {
				skipped++
			} else if keep(r) {
				out = append(out, r)
			}
		}
		if err == io.EOF {
			break
		}
	}
	if skipped > 0 {
		zap.L().Warn("audit: skipped unreadable lines", zap.String("path", l.path), zap.Int("skipped", skipped))
	}
	return out, nil
}

// readLine reads one newline-terminated line. Lines longer than limit are
// drained and reported as oversized without being buffered.
func readLine(rd *bufio.Reader, limit int) (line []byte, oversized bool, err error) {
	for {
		chunk, rerr := rd.ReadSlice('\n')
		if !oversized {
			if len(line)+len(chunk) > limit {
				oversized, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if rerr == bufio.ErrBufferFull {
			continue
		}
		return line, oversized, rerr
	}
}
