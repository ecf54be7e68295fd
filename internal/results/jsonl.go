package results

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rankedlist/internal/model"
)

// JSONL appends one JSON object per response to a file.
type JSONL struct {
	mu     sync.Mutex
	path   string
	seq    int64
	closed bool
	now    func() time.Time
}

func OpenJSONL(path string) (*JSONL, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("results: jsonl path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	j := &JSONL{path: path, now: time.Now}
	recs, err := j.read()
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		if r.Seq > j.seq {
			j.seq = r.Seq
		}
	}
	return j, nil
}

func (j *JSONL) Record(_ context.Context, resp model.TrialResponse) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}
	rec := Record{Seq: j.seq + 1, RecordedAt: j.now().UTC(), Response: resp}
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	j.seq = rec.Seq
	return f.Close()
}

func (j *JSONL) List(_ context.Context, limit int) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil, ErrClosed
	}
	recs, err := j.read()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		out = append(out, recs[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (j *JSONL) read() ([]Record, error) {
	f, err := os.Open(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(strings.TrimSpace(string(b))) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("results: %s:%d: %w", j.path, line, err)
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}

func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	return nil
}
