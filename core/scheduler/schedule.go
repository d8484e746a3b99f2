package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// AdvancePolicy selects how the schedule moves after firing.
type AdvancePolicy string

const (
	// AdvanceSingle adds exactly one interval after each firing. After a
	// long gap the schedule fires on consecutive ticks until it catches up.
	AdvanceSingle AdvancePolicy = "single"
	// AdvanceRealign jumps to the first boundary strictly after the firing
	// tick, so a gap produces a single run.
	AdvanceRealign AdvancePolicy = "realign"
)

// ParsePolicy converts a configuration value into an AdvancePolicy. An empty
// string selects AdvanceSingle.
func ParsePolicy(s string) (AdvancePolicy, error) {
	switch AdvancePolicy(s) {
	case "", AdvanceSingle:
		return AdvanceSingle, nil
	case AdvanceRealign:
		return AdvanceRealign, nil
	}
	return "", fmt.Errorf("unknown advance policy %q", s)
}

// Boundary returns the smallest instant at or after now that lies on an
// interval boundary counted from midnight of now's day, in now's location.
// The offset from midnight is measured in wall-clock time.
func Boundary(now time.Time, interval time.Duration) time.Time {
	y, m, d := now.Date()
	h, mi, s := now.Clock()
	since := time.Duration(h)*time.Hour + time.Duration(mi)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(now.Nanosecond())
	steps := since / interval
	if since%interval != 0 {
		steps++
	}
	return time.Date(y, m, d, 0, 0, 0, int(steps*interval), now.Location())
}

// Schedule tracks the next optimization instant. It starts idle and arms on
// the first call to Due. A Schedule is not safe for concurrent use.
type Schedule struct {
	interval time.Duration
	policy   AdvancePolicy
	next     time.Time
	armed    bool
}

// New returns an idle schedule.
func New(interval time.Duration, policy AdvancePolicy) (*Schedule, error) {
	if interval <= 0 {
		return nil, errors.New("scheduler: interval must be positive")
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	if policy == "" {
		policy = AdvanceSingle
	}
	return &Schedule{interval: interval, policy: policy}, nil
}

// Interval returns the optimization interval.
func (s *Schedule) Interval() time.Duration { return s.interval }

// Policy returns the advance policy.
func (s *Schedule) Policy() AdvancePolicy { return s.policy }

// Next returns the next optimization instant and whether the schedule is
// armed.
func (s *Schedule) Next() (time.Time, bool) { return s.next, s.armed }

// Due reports whether the optimizer should run at now. The first call arms
// the schedule on the first boundary at or after now without firing unless
// now is itself a boundary. When it fires, the schedule advances before Due
// returns.
func (s *Schedule) Due(now time.Time) bool {
	if !s.armed {
		s.next = Boundary(now, s.interval)
		s.armed = true
	}
	if now.Before(s.next) {
		return false
	}
	switch s.policy {
	case AdvanceRealign:
		s.next = Boundary(now.Add(time.Nanosecond), s.interval)
	default:
		s.next = s.next.Add(s.interval)
	}
	return true
}

// Upcoming lists the next n boundaries at or after from. It does not change
// the schedule state.
func (s *Schedule) Upcoming(from time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	t := Boundary(from, s.interval)
	for i := 0; i < n; i++ {
		out = append(out, t)
		t = Boundary(t.Add(time.Nanosecond), s.interval)
	}
	return out
}
