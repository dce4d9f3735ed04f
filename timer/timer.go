// Package timer provides delay timers advanced by explicit elapsed time.
package timer

import "github.com/milk9111/monowheel/event"

// Delay counts down once it is enabled and fires End when the delay has
// elapsed. It never schedules anything; UpdateTimer must be called once per
// tick while it is active.
type Delay struct {
	name    string
	delay   float64
	elapsed float64
	active  bool

	End event.Trigger
}

func NewDelay(name string, delay float64) *Delay {
	return &Delay{name: name, delay: delay}
}

// NewBeforeStop is the pause between the rider coming to rest and the stop
// pose starting.
func NewBeforeStop(delay float64) *Delay {
	return NewDelay("before_stop", delay)
}

// NewDangerousCollisions debounces the end of a dangerous touch.
func NewDangerousCollisions(delay float64) *Delay {
	return NewDelay("dangerous_collisions", delay)
}

func (d *Delay) Name() string { return d.name }

func (d *Delay) IsActive() bool {
	return d != nil && d.active
}

// Elapsed is the time counted since the timer was last enabled.
func (d *Delay) Elapsed() float64 { return d.elapsed }

func (d *Delay) SetDelay(delay float64) { d.delay = delay }

// EnableStopTimer restarts the countdown.
func (d *Delay) EnableStopTimer() {
	d.elapsed = 0
	d.active = true
}

// DisableStopTimer cancels the countdown without firing End.
func (d *Delay) DisableStopTimer() {
	d.active = false
}

// UpdateTimer advances the countdown by dt seconds.
func (d *Delay) UpdateTimer(dt float64) {
	if d == nil || !d.active {
		return
	}
	d.elapsed += dt
	if d.elapsed < d.delay {
		return
	}
	d.active = false
	event.Fire(&d.End)
}
