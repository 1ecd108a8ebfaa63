// Package engine provides the garden growth simulation: shading, soil,
// crowding, seasons, disturbances, and the clock that drives monthly steps.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Clock fires one simulation step per interval while running. The effective
// interval is the base interval divided by the speed multiplier.
type Clock struct {
	sim       *Simulation
	interval  time.Duration // Base interval at 1x
	capMonths int           // Auto-stop once the month counter reaches this

	mu      sync.Mutex
	running bool
	speed   float64
	wake    chan struct{}

	// OnStep is called after every firing with the step's report.
	OnStep func(StepReport)
	// OnStop is called once each time the clock stops, manually or at the cap.
	OnStop func(month int)
}

// NewClock creates a stopped clock at 1x speed using the simulation's
// interval and duration cap.
func NewClock(sim *Simulation) *Clock {
	p := sim.Params()
	return &Clock{
		sim:       sim,
		interval:  p.Interval,
		capMonths: p.CapMonths(),
		speed:     1.0,
		wake:      make(chan struct{}, 1),
	}
}

// Start begins firing. It is rejected when the garden has no living plants
// or the run has already reached its cap.
func (c *Clock) Start() error {
	if c.sim.LiveCount() == 0 {
		return ErrEmptyGarden
	}
	if c.sim.Month() >= c.capMonths {
		return ErrRunComplete
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	speed := c.speed
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	slog.Info("simulation clock started", "month", c.sim.Month(), "speed", speed, "cap_months", c.capMonths)
	return nil
}

// Stop halts the clock. Stopping a stopped clock does nothing.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	onStop := c.OnStop
	c.mu.Unlock()

	month := c.sim.Month()
	slog.Info("simulation clock stopped", "month", month, "time", SimTime(month))
	if onStop != nil {
		onStop(month)
	}
}

// Running reports whether the clock is firing.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetSpeed changes the speed multiplier. The new interval applies from the
// next firing; elapsed months are unaffected.
func (c *Clock) SetSpeed(speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("speed %v must be positive", speed)
	}
	c.mu.Lock()
	c.speed = speed
	c.mu.Unlock()
	slog.Info("speed changed", "speed", speed)
	return nil
}

// Speed returns the current speed multiplier.
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Interval returns the effective time between firings.
func (c *Clock) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Duration(float64(c.interval) / c.speed)
}

// CapMonths returns the total duration cap in months.
func (c *Clock) CapMonths() int {
	return c.capMonths
}

// Fire performs one firing: one full simulation step, then the cap check.
// It does nothing and returns false when the clock is stopped.
func (c *Clock) Fire() (StepReport, bool) {
	if !c.Running() {
		return StepReport{}, false
	}

	report := c.sim.Step()
	if c.OnStep != nil {
		c.OnStep(report)
	}
	if report.Month >= c.capMonths {
		slog.Info("simulation duration reached", "months", report.Month, "years", report.Month/MonthsPerYear)
		c.Stop()
	}
	return report, true
}

// Run drives the clock until ctx is cancelled. While stopped it waits for
// Start; while running it sleeps for the current interval before each firing.
func (c *Clock) Run(ctx context.Context) {
	slog.Info("simulation clock loop started", "interval", c.interval)
	defer slog.Info("simulation clock loop exited", "month", c.sim.Month())

	for {
		if !c.Running() {
			select {
			case <-ctx.Done():
				return
			case <-c.wake:
				continue
			}
		}

		timer := time.NewTimer(c.Interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			c.Fire()
		}
	}
}
