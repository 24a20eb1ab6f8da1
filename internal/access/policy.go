// ABOUTME: Access policy combining a static admin allow-list with work hours
// ABOUTME: Gates every viewing and mutating entry point of the dialog core

package access

import (
	"time"
)

// Policy decides whether an identity may act at a given moment. It combines
// two independent predicates: membership in a fixed administrator set, and
// the current hour falling inside the configured work window. The bypass
// flag lets admins act outside the window; non-admins never bypass it.
type Policy struct {
	admins map[int64]struct{}
	loc    *time.Location
	start  int // inclusive hour
	end    int // exclusive hour
	bypass bool

	offMsg string
	now    func() time.Time
}

// Option configures a Policy.
type Option func(*Policy)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Policy) { p.now = now }
}

// New creates a Policy. The window is [start, end) in hours of the given
// location; end < start wraps across midnight. offMsg is the fixed message
// shown on off-hours denial.
func New(admins []int64, loc *time.Location, start, end int, bypass bool, offMsg string, opts ...Option) *Policy {
	set := make(map[int64]struct{}, len(admins))
	for _, id := range admins {
		set[id] = struct{}{}
	}
	if loc == nil {
		loc = time.UTC
	}
	p := &Policy{
		admins: set,
		loc:    loc,
		start:  start,
		end:    end,
		bypass: bypass,
		offMsg: offMsg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsAdmin reports whether the identity is in the administrator set.
func (p *Policy) IsAdmin(id int64) bool {
	_, ok := p.admins[id]
	return ok
}

// InWindow reports whether t falls inside the work window. When the window
// wraps midnight (end < start), membership is h >= start || h < end.
func (p *Policy) InWindow(t time.Time) bool {
	h := t.In(p.loc).Hour()
	if p.start <= p.end {
		return p.start <= h && h < p.end
	}
	return h >= p.start || h < p.end
}

// MayAct reports whether the identity may act right now:
// inside the window, or an admin with bypass enabled.
func (p *Policy) MayAct(id int64) bool {
	return p.MayActAt(id, p.now())
}

// MayActAt is MayAct at an explicit instant.
func (p *Policy) MayActAt(id int64, t time.Time) bool {
	if p.InWindow(t) {
		return true
	}
	return p.bypass && p.IsAdmin(id)
}

// OffHoursMessage is the fixed user-visible denial text.
func (p *Policy) OffHoursMessage() string {
	return p.offMsg
}
