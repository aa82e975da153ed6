// Package progress renders phase progress on a terminal or, when output is
// redirected, as periodic log lines.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"VisualContentExtractor/internal/ports"
)

// New returns a bar when f is a terminal and a log reporter otherwise.
func New(f *os.File, logger *slog.Logger) ports.Progress {
	if IsTerminal(f) {
		return NewBar(f)
	}
	return NewLog(logger, 10*time.Second)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Bar draws one progress bar per phase.
type Bar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

var _ ports.Progress = (*Bar)(nil)

// NewBar draws on w.
func NewBar(w io.Writer) *Bar {
	return &Bar{w: w}
}

func (b *Bar) Begin(phase string, total int) {
	b.End()
	if total <= 0 {
		total = -1
	}
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(fmt.Sprintf("%-12s", phase)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(b.w) }),
	)
}

func (b *Bar) Advance(n int) {
	if b.bar != nil {
		_ = b.bar.Add(n)
	}
}

func (b *Bar) End() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
	b.bar = nil
}

// Log reports progress through a logger, at most once per interval.
type Log struct {
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	phase string
	total int
	done  int
	last  time.Time
}

var _ ports.Progress = (*Log)(nil)

// NewLog reports through logger every interval.
func NewLog(logger *slog.Logger, interval time.Duration) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger, interval: interval, now: time.Now}
}

func (l *Log) Begin(phase string, total int) {
	l.phase, l.total, l.done = phase, total, 0
	l.last = l.now()
	l.logger.Info("progress", "phase", phase, "done", 0, "total", total)
}

func (l *Log) Advance(n int) {
	l.done += n
	if now := l.now(); now.Sub(l.last) >= l.interval {
		l.last = now
		l.logger.Info("progress", "phase", l.phase, "done", l.done, "total", l.total)
	}
}

func (l *Log) End() {
	if l.phase == "" {
		return
	}
	l.logger.Info("progress", "phase", l.phase, "done", l.done, "total", l.total, "finished", true)
	l.phase = ""
}
