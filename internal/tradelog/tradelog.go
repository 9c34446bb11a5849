package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"signal-engine/internal/risk"
	"signal-engine/internal/types"
)

// Entry is one journal line.
type Entry struct {
	Time   string             `json:"time"`
	Signal *types.Signal      `json:"signal"`
	Size   *risk.PositionSize `json:"position_size,omitempty"`
}

// Journal appends evaluated signals to daily JSON-lines files under Dir.
type Journal struct {
	Dir string

	mu sync.Mutex
}

func New(dir string) *Journal {
	if dir == "" {
		dir = "logs"
	}
	return &Journal{Dir: dir}
}

func (j *Journal) path(t time.Time) string {
	return filepath.Join(j.Dir, "signals", t.UTC().Format("2006-01-02")+".jsonl")
}

// AppendSignal writes sig as one line of the file for the day of at. size is
// an optional advisory written alongside it.
func (j *Journal) AppendSignal(sig *types.Signal, at time.Time, size *risk.PositionSize) error {
	if sig == nil {
		return fmt.Errorf("tradelog: nil signal")
	}
	b, err := json.Marshal(Entry{Time: at.UTC().Format(time.RFC3339), Signal: sig, Size: size})
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	p := j.path(at)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files last modified more than retentionDays ago
// and removes the originals.
func (j *Journal) CompressOlder(retentionDays int, now time.Time) error {
	if retentionDays <= 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := now.AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(j.Dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".jsonl") {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, err := os.Stat(gz); err == nil {
			return os.Remove(p)
		}
		return compress(p, gz)
	})
}

func compress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
