package session

import (
	"math"
	"sync"
	"time"
)

// Notifier delivers a best-effort "rest over" notification. Implementations
// must not block; delivery failures are swallowed.
type Notifier interface {
	RestComplete(exerciseName string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) RestComplete(string) {}

// RestTimer is a single countdown associated with the focused exercise.
// The visible per-second countdown is cosmetic; accumulated rest is always
// computed from wall-clock deltas, so suspended or slow ticks never
// undercount rest time.
type RestTimer struct {
	nowFn    func() time.Time
	interval time.Duration
	notifier Notifier

	mu           sync.Mutex
	start        time.Time // zero when no rest is active
	duration     int
	stop         chan struct{}
	onTick       func(remainingSeconds int)
	onElapsed    func(elapsedSeconds int)
	exerciseName string
}

// SetOnTick installs the cosmetic remaining-seconds countdown callback.
func (t *RestTimer) SetOnTick(fn func(remainingSeconds int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTick = fn
}

// SetOnElapsed installs the accounting callback, which receives finalized
// rest seconds on natural completion or skip.
func (t *RestTimer) SetOnElapsed(fn func(elapsedSeconds int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onElapsed = fn
}

// SetExerciseName labels the rest-over notification for the current period.
func (t *RestTimer) SetExerciseName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exerciseName = name
}

// NewRestTimer creates a timer that ticks once per second and notifies via
// the given Notifier on natural completion.
func NewRestTimer(notifier Notifier) *RestTimer {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RestTimer{
		nowFn:    time.Now,
		interval: time.Second,
		notifier: notifier,
	}
}

// Start begins a countdown of durationSeconds. Any previously running rest
// is finalized first so its elapsed time is never lost.
func (t *RestTimer) Start(durationSeconds int) {
	if elapsed, ok := t.Finalize(); ok {
		t.emit(elapsed)
	}

	t.mu.Lock()
	t.start = t.nowFn()
	t.duration = durationSeconds
	t.stop = make(chan struct{})
	stop := t.stop
	t.mu.Unlock()

	go t.run(stop)
}

// run drives the cosmetic countdown and auto-finalizes at zero.
func (t *RestTimer) run(stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.start.IsZero() {
				t.mu.Unlock()
				return
			}
			remaining := t.duration - int(t.nowFn().Sub(t.start)/time.Second)
			if remaining < 0 {
				remaining = 0
			}
			name := t.exerciseName
			onTick := t.onTick
			t.mu.Unlock()

			if onTick != nil {
				onTick(remaining)
			}
			if remaining == 0 {
				if elapsed, ok := t.Finalize(); ok {
					t.emit(elapsed)
					t.notifier.RestComplete(name)
				}
				return
			}
		}
	}
}

// Finalize ends the active rest period and returns its wall-clock elapsed
// seconds, rounded to the nearest second and clamped at zero (clock skew
// must never produce negative rest). Finalizing with no active rest is a
// no-op; the start instant is cleared so a second call accrues nothing.
func (t *RestTimer) Finalize() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.start.IsZero() {
		return 0, false
	}

	elapsed := int(math.Round(t.nowFn().Sub(t.start).Seconds()))
	if elapsed < 0 {
		elapsed = 0
	}

	t.start = time.Time{}
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	return elapsed, true
}

// Skip is the user-triggered early finalize. Accounting is identical to
// natural completion but the notification is suppressed.
func (t *RestTimer) Skip() {
	if elapsed, ok := t.Finalize(); ok {
		t.emit(elapsed)
	}
}

// Active reports whether a rest period is currently running.
func (t *RestTimer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.start.IsZero()
}

func (t *RestTimer) emit(elapsed int) {
	t.mu.Lock()
	onElapsed := t.onElapsed
	t.mu.Unlock()
	if onElapsed != nil {
		onElapsed(elapsed)
	}
}
