// Package journal appends audit records to per-day JSON-lines files.
//
// Each stream ("offline_sales", "online_orders") gets one file per calendar
// day, <dir>/<stream>_YYYY-MM-DD.jsonl. A record is one JSON object per line
// and the file is opened with O_APPEND, so concurrent appends never rewrite
// earlier entries.
package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/georgemunganga/smartsupply-backend/internal/logger"
)

const (
	StreamSales  = "offline_sales"
	StreamOrders = "online_orders"

	dayLayout = "2006-01-02"
)

// Appender is what the sales and order services need from a journal.
type Appender interface {
	Append(ctx context.Context, stream string, at time.Time, record any) error
}

type Journal struct {
	dir  string
	logg *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(dir string, logg *logger.Logger) (*Journal, error) {
	if dir == "" {
		return nil, errors.New("journal dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Journal{dir: dir, logg: logg, locks: make(map[string]*sync.Mutex)}, nil
}

// Path returns the file a record for stream at time at is written to.
func (j *Journal) Path(stream string, at time.Time) string {
	return filepath.Join(j.dir, fmt.Sprintf("%s_%s.jsonl", stream, at.Format(dayLayout)))
}

func (j *Journal) lockFor(path string) *sync.Mutex {
	j.mu.Lock()
	defer j.mu.Unlock()
	l, ok := j.locks[path]
	if !ok {
		l = &sync.Mutex{}
		j.locks[path] = l
	}
	return l
}

// Append encodes record as one line of the stream's file for the day of at.
func (j *Journal) Append(ctx context.Context, stream string, at time.Time, record any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode journal record: %w", err)
	}
	line = append(line, '\n')

	path := j.Path(stream, at)
	l := j.lockFor(path)
	l.Lock()
	defer l.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", path, err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("write journal %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close journal %s: %w", path, err)
	}

	j.logg.Debug(j.logg.WithFields(ctx, map[string]any{"stream": stream, "path": path}), "journal.appended")
	return nil
}

// ReadDay returns the raw records of a stream for one day, oldest first. A
// missing file yields an empty slice.
func (j *Journal) ReadDay(stream string, day time.Time) ([]json.RawMessage, error) {
	path := j.Path(stream, day)
	l := j.lockFor(path)
	l.Lock()
	defer l.Unlock()

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	defer f.Close()

	records := []json.RawMessage{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		records = append(records, json.RawMessage(append([]byte(nil), scanner.Bytes()...)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal %s: %w", path, err)
	}
	return records, nil
}
