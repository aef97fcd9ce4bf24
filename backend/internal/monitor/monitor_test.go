package monitor

import (
	"context"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestMemoryMonitor_Sample(t *testing.T) {
	a := require.New(t)
	samples := []uint64{100, 300, 200, 300, 400}
	sut := NewMemoryMonitor(0)
	sut.sample = func() uint64 {
		value := samples[0]
		samples = samples[1:]
		return value
	}

	a.Equal(DefaultInterval, sut.interval)
	a.True(sut.Sample())
	a.True(sut.Sample())
	a.False(sut.Sample())
	a.False(sut.Sample())
	a.True(sut.Sample())
	a.Equal(uint64(400), sut.Max())
}

func TestMemoryMonitor_Run(t *testing.T) {
	a := require.New(t)
	sut := NewMemoryMonitor(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool)
	go func() {
		sut.Run(ctx)
		done <- true
	}()

	a.Eventually(func() bool { return sut.Max() > 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		a.Fail("monitor did not stop")
	}
}
