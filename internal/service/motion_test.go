package service

import (
	"context"
	"sync"
	"testing"
	"time"
)

type motionSinkStub struct {
	mu    sync.Mutex
	calls int
}

func (m *motionSinkStub) SetMotion(detected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
}

func (m *motionSinkStub) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestMotionService_TicksUntilCancelled(t *testing.T) {
	sink := &motionSinkStub{}
	svc := NewMotionService(sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	waitFor(t, func() bool { return sink.count() >= 3 })
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after context cancellation")
	}
}
