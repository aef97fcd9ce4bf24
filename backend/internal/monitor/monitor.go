package monitor

import (
	"context"
	"runtime"
	"sync"
	"time"
	"vincit.fi/photo-frame/common/logger"
)

const DefaultInterval = 90 * time.Second

// MemoryMonitor logs the highest memory use seen so far.
type MemoryMonitor struct {
	interval time.Duration
	sample   func() uint64
	max      uint64
	mux      sync.Mutex
}

func NewMemoryMonitor(interval time.Duration) *MemoryMonitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &MemoryMonitor{
		interval: interval,
		sample:   systemMemory,
	}
}

func (s *MemoryMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sample()
	for {
		select {
		case <-ctx.Done():
			logger.Info.Printf("Memory monitor stopped, max memory %d MiB", s.Max()/1024/1024)
			return
		case <-ticker.C:
			s.Sample()
		}
	}
}

// Sample reads the current memory use and returns true when it is a new
// maximum.
func (s *MemoryMonitor) Sample() bool {
	current := s.sample()

	s.mux.Lock()
	defer s.mux.Unlock()
	if current <= s.max {
		return false
	}
	s.max = current
	logger.Info.Printf("Max memory: %d MiB", current/1024/1024)
	return true
}

func (s *MemoryMonitor) Max() uint64 {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.max
}

func systemMemory() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Sys
}
