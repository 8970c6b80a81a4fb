package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"smart_bulb"
	"smart_bulb/internal/hub"
	"smart_bulb/internal/logger"
	"smart_bulb/internal/repository"
)

var (
	errInvalidMinutes = errors.New("invalid timer duration: minutes must be a positive integer")
	errInvalidAction  = errors.New(`invalid timer action: must be "on" or "off"`)
)

// IsInvalidTimer reports whether err is a Schedule input-validation error,
// as opposed to an internal failure.
func IsInvalidTimer(err error) bool {
	return errors.Is(err, errInvalidMinutes) || errors.Is(err, errInvalidAction)
}

const (
	dayLayout = "2006-01-02"

	// Ledger and event-log writes are fire-and-forget from the mutation's
	// perspective; they still get a bounded deadline of their own.
	storeWriteTimeout = 5 * time.Second
)

// pendingTimer is the single armed delayed transition. The generation
// number ties the AfterFunc callback to the timer that armed it: a callback
// whose generation no longer matches the live one finds the timer was
// cancelled or replaced and must not act.
type pendingTimer struct {
	gen     uint64
	action  string
	minutes int
	fireAt  time.Time
	stop    *time.Timer
}

// ControllerService is the single owner of the relay state, the pending
// timer, and the motion-stub flag. Every mutation, whether from a request
// or from timer expiry, is serialized under mu, and broadcasts happen
// inside the same critical section so observers see one total order.
type ControllerService struct {
	mu             sync.Mutex
	isOn           bool
	onSince        time.Time // zero while no on-interval is open
	motionDetected bool

	gen     uint64
	pending *pendingTimer

	usageRepo repository.UsageRepo
	eventRepo repository.EventRepo
	hub       Broadcaster
	log       *logger.Logger

	// minute is the duration of one scheduled "minute". Tests shrink it to
	// exercise expiry without waiting wall-clock minutes.
	minute time.Duration
}

func NewControllerService(usageRepo repository.UsageRepo, eventRepo repository.EventRepo, b Broadcaster, log *logger.Logger) *ControllerService {
	return &ControllerService{
		usageRepo: usageRepo,
		eventRepo: eventRepo,
		hub:       b,
		log:       log,
		minute:    time.Minute,
	}
}

// Toggle flips the relay. Turning on opens an on-interval; turning off
// closes it and merge-adds the elapsed duration to today's ledger entry.
// Always succeeds; the ledger write happens in the background.
func (s *ControllerService) Toggle(ctx context.Context) smart_bulb.RelayState {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.isOn {
		s.switchOffLocked(now)
		s.appendEvent(EventToggle, "Bulb turned off", map[string]any{"state": false})
	} else {
		s.switchOnLocked(now)
		s.appendEvent(EventToggle, "Bulb turned on", map[string]any{"state": true})
	}
	s.hub.Publish(s.relayPushLocked())
	return s.relayStateLocked()
}

// Schedule replaces any pending timer with a new one firing after the given
// number of minutes. The replaced timer's action never fires. Invalid input
// is rejected before any state is touched.
func (s *ControllerService) Schedule(ctx context.Context, minutes int, action string) (smart_bulb.TimerState, error) {
	if minutes <= 0 {
		return smart_bulb.TimerState{}, errInvalidMinutes
	}
	if action != smart_bulb.ActionOn && action != smart_bulb.ActionOff {
		return smart_bulb.TimerState{}, errInvalidAction
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.stop.Stop()
		s.pending = nil
	}

	s.gen++
	gen := s.gen
	delay := time.Duration(minutes) * s.minute
	p := &pendingTimer{
		gen:     gen,
		action:  action,
		minutes: minutes,
		fireAt:  time.Now().Add(delay),
	}
	p.stop = time.AfterFunc(delay, func() { s.fire(gen) })
	s.pending = p

	s.appendEvent(EventTimerSet, "Timer set", map[string]any{
		"action":           action,
		"duration_minutes": minutes,
		"fire_at":          p.fireAt.UTC(),
	})
	s.hub.Publish(smart_bulb.TimerPush{
		Type:            smart_bulb.PushTimer,
		Active:          true,
		Action:          action,
		DurationMinutes: minutes,
		FireAtEpochMs:   p.fireAt.UnixMilli(),
	})
	return s.timerStateLocked(), nil
}

// Cancel discards the pending timer, if any. Idempotent; never errors.
// A timer-cleared broadcast goes out either way.
func (s *ControllerService) Cancel(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.stop.Stop()
		s.pending = nil
		s.appendEvent(EventTimerCancelled, "Timer cancelled", nil)
	}
	s.hub.Publish(smart_bulb.TimerPush{Type: smart_bulb.PushTimer, Active: false})
}

// fire is the timer expiry callback. It re-checks that its timer is still
// the armed one: a Cancel or Schedule that won the race already cleared or
// replaced s.pending and this call becomes a no-op.
func (s *ControllerService) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil || s.pending.gen != gen {
		return
	}
	action := s.pending.action
	s.pending = nil

	now := time.Now()
	if action == smart_bulb.ActionOn {
		s.switchOnLocked(now)
	} else {
		s.switchOffLocked(now)
	}
	s.appendEvent(EventTimerFired, "Timer fired", map[string]any{
		"action": action,
		"state":  s.isOn,
	})
	s.hub.Publish(s.relayPushLocked())
	s.hub.Publish(smart_bulb.TimerPush{Type: smart_bulb.PushTimer, Active: false})
}

// SetMotion records the motion stub's latest reading and forwards it to
// observers.
func (s *ControllerService) SetMotion(detected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.motionDetected = detected
	s.hub.Publish(smart_bulb.MotionPush{Type: smart_bulb.PushMotion, Detected: detected})
}

// State returns the full current snapshot.
func (s *ControllerService) State(ctx context.Context) smart_bulb.BulbSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return smart_bulb.BulbSnapshot{
		Relay:          s.relayStateLocked(),
		Timer:          s.timerStateLocked(),
		MotionDetected: s.motionDetected,
	}
}

// Attach registers an observer with a snapshot computed under the
// controller lock. Mutations also publish under that lock, so the observer
// either sees a change in its snapshot or receives the change as an event,
// never a torn mix.
func (s *ControllerService) Attach(o *hub.Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hub.Register(o, s.relayPushLocked(), s.motionPushLocked(), s.timerPushLocked())
}

// Detach removes an observer from the hub registry.
func (s *ControllerService) Detach(o *hub.Observer) {
	s.hub.Unregister(o)
}

func (s *ControllerService) switchOnLocked(now time.Time) {
	s.isOn = true
	s.onSince = now
}

func (s *ControllerService) switchOffLocked(now time.Time) {
	s.isOn = false
	if s.onSince.IsZero() {
		// No open interval to account for; nothing to log.
		return
	}
	durationMs := now.Sub(s.onSince).Milliseconds()
	s.onSince = time.Time{}
	if durationMs < 0 {
		durationMs = 0
	}
	s.recordUsage(now.Format(dayLayout), durationMs)
}

// recordUsage merge-adds the closed on-interval into the ledger without
// blocking the mutation. A failed write degrades to a log line: the state
// change and its broadcast already committed.
func (s *ControllerService) recordUsage(day string, durationMs int64) {
	if s.usageRepo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeWriteTimeout)
		defer cancel()
		if err := s.usageRepo.Add(ctx, day, durationMs); err != nil {
			if s.log != nil {
				s.log.Errorw("usage_log_failed", "err", err, "day", day, "duration_ms", durationMs)
			}
			return
		}
		if s.log != nil {
			s.log.Infow("usage_logged", "day", day, "duration_ms", durationMs)
		}
	}()
}

// appendEvent writes to the event log in the background, same contract as
// recordUsage.
func (s *ControllerService) appendEvent(typ, description string, metadata map[string]any) {
	if s.eventRepo == nil {
		return
	}
	e := smart_bulb.BulbEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: description,
		Metadata:    metadata,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeWriteTimeout)
		defer cancel()
		if err := s.eventRepo.Append(ctx, e); err != nil && s.log != nil {
			s.log.Errorw("event_append_failed", "err", err, "type", typ)
		}
	}()
}

func (s *ControllerService) relayStateLocked() smart_bulb.RelayState {
	st := smart_bulb.RelayState{IsOn: s.isOn}
	if !s.onSince.IsZero() {
		t := s.onSince
		st.OnSince = &t
	}
	return st
}

func (s *ControllerService) timerStateLocked() smart_bulb.TimerState {
	if s.pending == nil {
		return smart_bulb.TimerState{Active: false}
	}
	return smart_bulb.TimerState{
		Active:          true,
		Action:          s.pending.action,
		DurationMinutes: s.pending.minutes,
		FireAt:          s.pending.fireAt,
	}
}

func (s *ControllerService) relayPushLocked() smart_bulb.RelayPush {
	return smart_bulb.RelayPush{Type: smart_bulb.PushRelay, State: s.isOn}
}

func (s *ControllerService) motionPushLocked() smart_bulb.MotionPush {
	return smart_bulb.MotionPush{Type: smart_bulb.PushMotion, Detected: s.motionDetected}
}

// timerPushLocked builds the snapshot form of the timer message: remaining
// minutes, rounded, rather than the originally requested duration.
func (s *ControllerService) timerPushLocked() smart_bulb.TimerPush {
	if s.pending == nil {
		return smart_bulb.TimerPush{Type: smart_bulb.PushTimer, Active: false}
	}
	remaining := int(math.Round(float64(time.Until(s.pending.fireAt)) / float64(s.minute)))
	return smart_bulb.TimerPush{
		Type:            smart_bulb.PushTimer,
		Active:          true,
		Action:          s.pending.action,
		DurationMinutes: remaining,
		FireAtEpochMs:   s.pending.fireAt.UnixMilli(),
	}
}
