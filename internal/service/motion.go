package service

import (
	"context"
	"math/rand"
	"time"
)

// MotionSink receives readings from the motion stub. Satisfied by the
// controller, which stores the value for snapshots and broadcasts it.
type MotionSink interface {
	SetMotion(detected bool)
}

// MotionService fakes a motion detector: each tick it reports a random
// detected/clear reading. There is no real sensor behind it.
type MotionService struct {
	sink MotionSink
	rng  *rand.Rand
}

func NewMotionService(sink MotionSink) *MotionService {
	return &MotionService{
		sink: sink,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run ticks at the given interval until ctx is canceled.
func (m *MotionService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.sink.SetMotion(m.rng.Float64() > 0.5)
		}
	}
}
