package handlers

import (
	"context"
	"sync"

	"smart_bulb"
	"smart_bulb/internal/hub"
	"smart_bulb/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

// mockRelay counters are guarded: the websocket handler calls Attach/Detach
// from its own goroutine.
type mockRelay struct {
	mu           sync.Mutex
	toggleResp   smart_bulb.RelayState
	stateResp    smart_bulb.BulbSnapshot
	toggleCalls  int
	attachCalls  int
	detachCalls  int
	lastObserver *hub.Observer
}

func (m *mockRelay) Toggle(ctx context.Context) smart_bulb.RelayState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggleCalls++
	return m.toggleResp
}

func (m *mockRelay) State(ctx context.Context) smart_bulb.BulbSnapshot {
	return m.stateResp
}

func (m *mockRelay) Attach(o *hub.Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attachCalls++
	m.lastObserver = o
}

func (m *mockRelay) Detach(o *hub.Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detachCalls++
}

func (m *mockRelay) calls() (toggle, attach, detach int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toggleCalls, m.attachCalls, m.detachCalls
}

type mockTimer struct {
	scheduleResp  smart_bulb.TimerState
	scheduleErr   error
	scheduleCalls int
	cancelCalls   int
	lastMinutes   int
	lastAction    string
}

func (m *mockTimer) Schedule(ctx context.Context, minutes int, action string) (smart_bulb.TimerState, error) {
	m.scheduleCalls++
	m.lastMinutes = minutes
	m.lastAction = action
	return m.scheduleResp, m.scheduleErr
}

func (m *mockTimer) Cancel(ctx context.Context) {
	m.cancelCalls++
}

type mockStats struct {
	resp smart_bulb.UsageStats
	err  error
}

func (m *mockStats) Compute(ctx context.Context) (smart_bulb.UsageStats, error) {
	return m.resp, m.err
}

type mockEventLog struct {
	resp       []smart_bulb.BulbEvent
	err        error
	lastFilter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]smart_bulb.BulbEvent, error) {
	m.lastFilter = f
	return m.resp, m.err
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(s, nil).InitRoutes()
}
