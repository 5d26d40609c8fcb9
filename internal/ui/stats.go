package ui

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/srcforge/internal/util"
)

type Stats struct {
	TotalPages    atomic.Int64
	TotalBytes    atomic.Int64
	TotalChapters atomic.Int64
	Failed        atomic.Int64
}

func (s *Stats) Summary(elapsed time.Duration) string {
	return fmt.Sprintf("%d chapters, %d pages, %s in %s (%d failed)",
		s.TotalChapters.Load(),
		s.TotalPages.Load(),
		util.Human(s.TotalBytes.Load()),
		elapsed.Round(time.Second),
		s.Failed.Load(),
	)
}
