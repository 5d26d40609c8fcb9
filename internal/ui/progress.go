package ui

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/srcforge/internal/util"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type ProgressManager struct {
	p *mpb.Progress
}

func NewProgressManager() *ProgressManager {
	return NewProgressManagerTo(os.Stdout)
}

func NewProgressManagerTo(w io.Writer) *ProgressManager {
	p := mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(w),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	return &ProgressManager{p: p}
}

func (pm *ProgressManager) Close() {
	pm.p.Wait()
}

// Register adds a bar counting unit ("pages", "steps") with a byte
// counter when showBytes is set.
func (pm *ProgressManager) Register(prefix, unit string, showBytes bool) *ProgressHandle {
	h := &ProgressHandle{
		pm:        pm,
		prefix:    prefix,
		unit:      unit,
		showBytes: showBytes,
	}
	h.initBar()
	return h
}

type ProgressHandle struct {
	pm        *ProgressManager
	prefix    string
	unit      string
	showBytes bool
	bar       *mpb.Bar

	total int64
	bytes int64

	start   time.Time
	elapsed atomic.Int64

	final atomic.Bool
	note  atomic.Value
}

func (h *ProgressHandle) initBar() {
	h.start = time.Now()
	h.note.Store("")

	decorators := []decor.Decorator{
		decor.Percentage(decor.WCSyncWidth),
		decor.CountersNoUnit(" | %d/%d "+h.unit, decor.WCSyncWidth),
	}
	if h.showBytes {
		decorators = append(decorators, decor.Any(func(_ decor.Statistics) string {
			return " | " + util.Human(atomic.LoadInt64(&h.bytes))
		}))
	}
	decorators = append(decorators,
		decor.Any(func(_ decor.Statistics) string {
			if h.final.Load() {
				return fmt.Sprintf(" | %ds", h.elapsed.Load())
			}
			return fmt.Sprintf(" | %ds", int(time.Since(h.start).Seconds()))
		}),
		decor.Any(func(_ decor.Statistics) string {
			if n, _ := h.note.Load().(string); n != "" {
				return " | " + n
			}
			return ""
		}),
	)

	h.bar = h.pm.p.New(
		0,
		mpb.BarStyle().Rbound("]"),
		mpb.PrependDecorators(decor.Name(h.prefix+"  ")),
		mpb.AppendDecorators(decorators...),
	)
}

func (h *ProgressHandle) SetTotal(total int) {
	if h.final.Load() {
		return
	}

	atomic.StoreInt64(&h.total, int64(total))
	h.bar.SetTotal(int64(total), false)
}

// Note sets a short status shown after the counters.
func (h *ProgressHandle) Note(s string) {
	h.note.Store(s)
}

func (h *ProgressHandle) Update(done, total int, bytes int64) {
	if h.final.Load() {
		return
	}

	if total > 0 {
		atomic.StoreInt64(&h.total, int64(total))
		h.bar.SetTotal(int64(total), false)
	}

	atomic.StoreInt64(&h.bytes, bytes)
	h.bar.SetCurrent(int64(done))
}

func (h *ProgressHandle) MarkDone() {
	if h.final.Swap(true) {
		return
	}

	h.elapsed.Store(int64(time.Since(h.start).Seconds()))
	total := atomic.LoadInt64(&h.total)
	h.bar.SetCurrent(total)
	h.bar.SetTotal(total, true)
}
