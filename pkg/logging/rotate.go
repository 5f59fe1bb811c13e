package logging

import (
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DailyFile is an append-only log file that rolls over at local midnight and
// keeps a bounded number of rotated files. It is safe for concurrent writes.
type DailyFile struct {
	file *lumberjack.Logger
	now  func() time.Time

	stop     chan struct{}
	done     chan struct{}
	startMu  sync.Mutex
	started  bool
	stopOnce sync.Once
}

// NewDailyFile opens (lazily, on first write) the log file at path.
// maxBackups bounds how many rotated files are kept; 0 keeps them all.
func NewDailyFile(path string, maxBackups int) *DailyFile {
	return &DailyFile{
		file: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100, // megabytes
			MaxBackups: maxBackups,
			LocalTime:  true,
		},
		now:  time.Now,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Write appends p to the current file.
func (f *DailyFile) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

// Rotate closes the current file, renames it with a timestamp suffix and
// opens a fresh one.
func (f *DailyFile) Rotate() error {
	return f.file.Rotate()
}

// Start begins the midnight rotation loop. Calling Start more than once has
// no effect.
func (f *DailyFile) Start() {
	f.startMu.Lock()
	defer f.startMu.Unlock()
	if f.started {
		return
	}
	f.started = true
	go f.loop()
}

func (f *DailyFile) loop() {
	defer close(f.done)
	for {
		now := f.now()
		timer := time.NewTimer(NextMidnight(now).Sub(now))
		select {
		case <-timer.C:
			_ = f.Rotate()
		case <-f.stop:
			timer.Stop()
			return
		}
	}
}

// Close stops the rotation loop and closes the file.
func (f *DailyFile) Close() error {
	f.stopOnce.Do(func() {
		close(f.stop)
		f.startMu.Lock()
		started := f.started
		f.startMu.Unlock()
		if started {
			<-f.done
		}
	})
	return f.file.Close()
}

// NextMidnight returns the first local midnight strictly after t.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
