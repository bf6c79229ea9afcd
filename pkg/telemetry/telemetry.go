package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"timelinedb/pkg/timeutil"
)

type Step struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration_ms"`
}

type Trace struct {
	Name     string    `json:"name"`
	Start    time.Time `json:"start"`
	Steps    []Step    `json:"steps"`
	TotalMS  float64   `json:"total_ms"`
	lastMark time.Time
	tel      *Telemetry
}

// Telemetry writes finished traces to per-op JSONL files from a background
// goroutine so tracing never blocks a sweep.
type Telemetry struct {
	dir              string
	mu               sync.Mutex
	files            map[string]*os.File
	buffers          map[string]*bufio.Writer
	traces           chan *Trace
	stopCh           chan struct{}
	stopOnce         sync.Once
	wg               sync.WaitGroup
	flushInt         time.Duration
	maxFileSizeBytes int64
	bufferSize       int
}

var tel *Telemetry

// Init initializes the global telemetry instance. Without Init, Track still
// works but traces are dropped on Finish.
func Init(dir string, bufferSize, queueCapacity int, flushInterval time.Duration, maxFileSize int64) {
	tel, _ = New(dir, bufferSize, queueCapacity, flushInterval, maxFileSize)
}

func Track(name string) *Trace {
	now := timeutil.Now()
	return &Trace{Name: name, Start: now, lastMark: now, tel: tel}
}

func Close() {
	if tel != nil {
		tel.Close()
		tel = nil
	}
}

func New(dir string, bufferSize, queueCapacity int, flushInterval time.Duration, maxFileSize int64) (*Telemetry, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	t := &Telemetry{
		dir:              dir,
		files:            make(map[string]*os.File),
		buffers:          make(map[string]*bufio.Writer),
		traces:           make(chan *Trace, queueCapacity),
		stopCh:           make(chan struct{}),
		flushInt:         flushInterval,
		maxFileSizeBytes: maxFileSize,
		bufferSize:       bufferSize,
	}
	t.wg.Add(1)
	go t.writerLoop()
	return t, nil
}

// Mark records the elapsed duration since the last mark.
func (tr *Trace) Mark(label string) {
	now := timeutil.Now()
	tr.Steps = append(tr.Steps, Step{Name: label, Duration: now.Sub(tr.lastMark).Seconds() * 1000})
	tr.lastMark = now
}

// Finish finalizes the trace and enqueues it for background writing. Safe
// to call via defer or when telemetry is uninitialized.
func (tr *Trace) Finish() {
	if tr.tel == nil {
		return
	}
	tr.TotalMS = time.Since(tr.Start).Seconds() * 1000
	var sum float64
	for _, s := range tr.Steps {
		sum += s.Duration
	}
	if remaining := tr.TotalMS - sum; remaining > 0.001 {
		tr.Steps = append(tr.Steps, Step{Name: "unmarked", Duration: remaining})
	}
	select {
	case tr.tel.traces <- tr:
	default: // drop rather than stall the sweep
	}
	tr.tel = nil
}

func (t *Telemetry) writerLoop() {
	defer t.wg.Done()
	ticker := time.NewTicker(t.flushInt)
	defer ticker.Stop()

	for {
		select {
		case tr := <-t.traces:
			if tr == nil {
				continue
			}
			data, err := json.Marshal(tr)
			if err != nil {
				continue
			}
			t.mu.Lock()
			b := t.getBufferFor(tr.Name)
			b.Write(data)
			b.WriteByte('\n')
			t.mu.Unlock()

		case <-ticker.C:
			t.mu.Lock()
			for name, b := range t.buffers {
				b.Flush()
				f := t.files[name]
				if fi, err := f.Stat(); err == nil && fi.Size() > t.maxFileSizeBytes {
					f.Close()
					os.Remove(f.Name())
					newF, _ := os.OpenFile(f.Name(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
					t.files[name] = newF
					t.buffers[name] = bufio.NewWriterSize(newF, t.bufferSize)
				}
			}
			t.mu.Unlock()

		case <-t.stopCh:
			t.mu.Lock()
			for _, b := range t.buffers {
				b.Flush()
			}
			for _, f := range t.files {
				f.Sync()
				f.Close()
			}
			t.mu.Unlock()
			return
		}
	}
}

func (t *Telemetry) getBufferFor(op string) *bufio.Writer {
	if b, ok := t.buffers[op]; ok {
		return b
	}
	path := filepath.Join(t.dir, fmt.Sprintf("%s.jsonl", op))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: failed to open %s: %v\n", path, err)
		return bufio.NewWriter(os.Stdout)
	}
	b := bufio.NewWriterSize(f, t.bufferSize)
	t.files[op] = f
	t.buffers[op] = b
	return b
}

func (t *Telemetry) Close() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
		t.wg.Wait()
	})
}
