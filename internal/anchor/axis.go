// Package anchor implements a one-dimensional draggable axis that settles on
// a discrete set of named positions (anchors).
//
// An Axis is driven by explicit inputs: raw drag deltas, release velocities
// and animation time steps. It owns no goroutines and no timers, and it is
// not safe for concurrent use. Callers confine it to one goroutine (a UI
// update loop) or serialize access themselves.
package anchor

import (
	"math"
	"sort"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Anchor is a named settle position on the axis.
type Anchor[A comparable] struct {
	Value    A
	Position float64
}

// Direction selects how ClosestAnchor breaks away from a position.
type Direction int

const (
	// Nearest picks the anchor closest to the position.
	Nearest Direction = iota
	// Up picks the first anchor at or above the position.
	Up
	// Down picks the last anchor at or below the position.
	Down
)

// Config tunes release and settle behavior.
type Config struct {
	// VelocityThreshold is the release speed (units per second) above which
	// a release moves to the next anchor in the direction of travel instead
	// of the positionally nearest one.
	VelocityThreshold float64
	// Stiffness of the settle spring; its square root is the angular
	// frequency. The spring is critically damped.
	Stiffness float64
	// RestDistance and RestVelocity decide when a settle animation is done.
	RestDistance float64
	RestVelocity float64
}

// DefaultConfig returns the tuning used by the navigator.
func DefaultConfig() Config {
	return Config{
		VelocityThreshold: 400,
		Stiffness:         400,
		RestDistance:      0.5,
		RestVelocity:      5,
	}
}

// Neighbors holds the anchors immediately before and after a given anchor
// in position order.
type Neighbors[A comparable] struct {
	Prev, Next       A
	HasPrev, HasNext bool
}

type settle[A comparable] struct {
	target   A
	velocity float64
}

// Axis is the anchored drag state machine.
type Axis[A comparable] struct {
	cfg       Config
	current   A
	offset    float64
	hasOffset bool
	anchors   []Anchor[A] // sorted by Position
	anim      *settle[A]
}

// New returns an axis resting on initial with no anchors and no offset.
func New[A comparable](initial A, cfg Config) *Axis[A] {
	if cfg.Stiffness <= 0 {
		cfg.Stiffness = DefaultConfig().Stiffness
	}
	if cfg.RestDistance <= 0 {
		cfg.RestDistance = DefaultConfig().RestDistance
	}
	if cfg.RestVelocity <= 0 {
		cfg.RestVelocity = DefaultConfig().RestVelocity
	}
	return &Axis[A]{cfg: cfg, current: initial}
}

// Current returns the last settled anchor.
func (a *Axis[A]) Current() A { return a.current }

// Target returns the anchor the axis is animating toward, or the current
// anchor when no animation is in flight.
func (a *Axis[A]) Target() A {
	if a.anim != nil {
		return a.anim.target
	}
	return a.current
}

// Animating reports whether a settle animation is in flight.
func (a *Axis[A]) Animating() bool { return a.anim != nil }

// Offset returns the raw offset and whether it has been initialized.
func (a *Axis[A]) Offset() (float64, bool) { return a.offset, a.hasOffset }

// Anchors returns a copy of the anchor set in position order.
func (a *Axis[A]) Anchors() []Anchor[A] {
	out := make([]Anchor[A], len(a.anchors))
	copy(out, a.anchors)
	return out
}

// Position returns the position of v in the current anchor set.
func (a *Axis[A]) Position(v A) (float64, bool) {
	if i := a.index(v); i >= 0 {
		return a.anchors[i].Position, true
	}
	return 0, false
}

func (a *Axis[A]) index(v A) int {
	for i, an := range a.anchors {
		if an.Value == v {
			return i
		}
	}
	return -1
}

// IsSettled reports whether the offset rests exactly on the current anchor.
// An axis with no offset or no anchors is settled.
func (a *Axis[A]) IsSettled() bool {
	if !a.hasOffset || len(a.anchors) == 0 {
		return true
	}
	pos, ok := a.Position(a.current)
	return !ok || a.offset == pos
}

// OffsetToCurrent returns offset - position(current), or 0 when the offset
// is unset.
func (a *Axis[A]) OffsetToCurrent() float64 {
	if !a.hasOffset {
		return 0
	}
	pos, ok := a.Position(a.current)
	if !ok {
		return 0
	}
	return a.offset - pos
}

// UpdateAnchors replaces the anchor set. The offset is shifted so that the
// distance between the offset and retarget is unchanged, which keeps the
// visual position stable across a rebuild. When retarget is not in the new
// set the raw offset is kept, clamped to the new bounds, and the current
// anchor becomes the one nearest to it. An in-flight animation keeps running
// when its target survives and is re-aimed at the anchor nearest the offset
// otherwise.
func (a *Axis[A]) UpdateAnchors(anchors []Anchor[A], retarget A) {
	rel := a.OffsetToCurrent()

	a.anchors = make([]Anchor[A], len(anchors))
	copy(a.anchors, anchors)
	sort.SliceStable(a.anchors, func(i, j int) bool {
		return a.anchors[i].Position < a.anchors[j].Position
	})

	if len(a.anchors) == 0 {
		a.current = retarget
		a.anim = nil
		return
	}

	switch {
	case a.index(retarget) >= 0:
		a.current = retarget
		pos, _ := a.Position(a.current)
		if a.hasOffset {
			a.offset = pos + rel
		} else {
			a.offset = pos
		}
	case a.hasOffset:
		a.offset = a.clamp(a.offset)
		a.current, _ = a.ClosestAnchor(a.offset, Nearest)
	default:
		a.current, _ = a.ClosestAnchor(0, Nearest)
		a.offset, _ = a.Position(a.current)
	}
	a.hasOffset = true

	if a.anim != nil && a.index(a.anim.target) < 0 {
		a.anim.target, _ = a.ClosestAnchor(a.offset, Nearest)
	}
}

func (a *Axis[A]) clamp(v float64) float64 {
	if n := len(a.anchors); n > 0 {
		return math.Max(a.anchors[0].Position, math.Min(a.anchors[n-1].Position, v))
	}
	return v
}

// DispatchRawDelta moves the offset by delta, clamped to the anchor bounds,
// and returns the amount actually consumed. A drag always preempts a settle
// animation.
func (a *Axis[A]) DispatchRawDelta(delta float64) float64 {
	a.anim = nil
	if !a.hasOffset {
		a.offset, _ = a.Position(a.current)
		a.hasOffset = true
	}
	next := a.clamp(a.offset + delta)
	consumed := next - a.offset
	a.offset = next
	return consumed
}

// resolve maps v onto the anchor set, falling back to the anchor nearest the
// current offset when v is missing.
func (a *Axis[A]) resolve(v A) A {
	if len(a.anchors) == 0 || a.index(v) >= 0 {
		return v
	}
	near, _ := a.ClosestAnchor(a.offset, Nearest)
	return near
}

// SnapTo moves immediately to v and cancels any animation.
func (a *Axis[A]) SnapTo(v A) {
	a.anim = nil
	v = a.resolve(v)
	a.current = v
	if len(a.anchors) == 0 {
		return
	}
	a.offset, _ = a.Position(v)
	a.hasOffset = true
}

// SettleTo starts animating toward v with the given initial velocity. The
// animation is advanced by Advance and sets the current anchor when it
// completes. Any earlier animation is preempted.
func (a *Axis[A]) SettleTo(v A, velocity float64) {
	v = a.resolve(v)
	if len(a.anchors) == 0 || !a.hasOffset {
		a.SnapTo(v)
		return
	}
	pos, _ := a.Position(v)
	if a.offset == pos && velocity == 0 {
		a.anim = nil
		a.current = v
		return
	}
	a.anim = &settle[A]{target: v, velocity: velocity}
}

// Release ends a drag gesture: it picks a settle target from the offset and
// the release velocity and starts settling there. It returns the target.
func (a *Axis[A]) Release(velocity float64) A {
	target := a.releaseTarget(velocity)
	a.SettleTo(target, velocity)
	return target
}

func (a *Axis[A]) releaseTarget(velocity float64) A {
	if len(a.anchors) == 0 || !a.hasOffset {
		return a.current
	}
	const eps = 1e-6
	switch {
	case velocity >= a.cfg.VelocityThreshold && a.cfg.VelocityThreshold > 0:
		for _, an := range a.anchors {
			if an.Position > a.offset+eps {
				return an.Value
			}
		}
		return a.anchors[len(a.anchors)-1].Value
	case velocity <= -a.cfg.VelocityThreshold && a.cfg.VelocityThreshold > 0:
		for i := len(a.anchors) - 1; i >= 0; i-- {
			if a.anchors[i].Position < a.offset-eps {
				return a.anchors[i].Value
			}
		}
		return a.anchors[0].Value
	}
	near, _ := a.ClosestAnchor(a.offset, Nearest)
	return near
}

// Cancel stops an in-flight animation. The offset stays exactly where the
// animation was interrupted and the current anchor is unchanged.
func (a *Axis[A]) Cancel() {
	a.anim = nil
}

// Advance steps the settle animation by dt. It reports whether an animation
// completed during this step.
func (a *Axis[A]) Advance(dt time.Duration) bool {
	if a.anim == nil {
		return false
	}
	target, ok := a.Position(a.anim.target)
	if !ok {
		a.anim = nil
		return false
	}

	// Rest is checked after every step.
	const maxStep = 4 * time.Millisecond

	freq := math.Sqrt(a.cfg.Stiffness)
	for dt > 0 {
		step := min(dt, maxStep)
		dt -= step
		spring := harmonica.NewSpring(step.Seconds(), freq, 1)
		a.offset, a.anim.velocity = spring.Update(a.offset, a.anim.velocity, target)

		if math.Abs(a.offset-target) <= a.cfg.RestDistance && math.Abs(a.anim.velocity) <= a.cfg.RestVelocity {
			a.offset = target
			a.current = a.anim.target
			a.anim = nil
			return true
		}
	}
	return false
}

// ClosestAnchor returns the anchor closest to pos in the given direction.
// Up and Down fall back to the extreme anchor when nothing lies in that
// direction. It returns false only when the anchor set is empty.
func (a *Axis[A]) ClosestAnchor(pos float64, dir Direction) (A, bool) {
	var zero A
	n := len(a.anchors)
	if n == 0 {
		return zero, false
	}
	switch dir {
	case Up:
		i := sort.Search(n, func(i int) bool { return a.anchors[i].Position >= pos })
		if i == n {
			i = n - 1
		}
		return a.anchors[i].Value, true
	case Down:
		i := sort.Search(n, func(i int) bool { return a.anchors[i].Position > pos }) - 1
		if i < 0 {
			i = 0
		}
		return a.anchors[i].Value, true
	}
	best := 0
	for i := 1; i < n; i++ {
		if math.Abs(a.anchors[i].Position-pos) < math.Abs(a.anchors[best].Position-pos) {
			best = i
		}
	}
	return a.anchors[best].Value, true
}

// AdjacentAnchors returns the neighbors of v in position order. A v that is
// not in the anchor set is located by the current offset. With no anchors
// both neighbors are reported as the current anchor and absent.
func (a *Axis[A]) AdjacentAnchors(v A) Neighbors[A] {
	nb := Neighbors[A]{Prev: a.current, Next: a.current}
	if len(a.anchors) == 0 {
		return nb
	}
	i := a.index(v)
	if i < 0 {
		i = a.index(a.resolve(v))
	}
	if i > 0 {
		nb.Prev, nb.HasPrev = a.anchors[i-1].Value, true
	}
	if i < len(a.anchors)-1 {
		nb.Next, nb.HasNext = a.anchors[i+1].Value, true
	}
	return nb
}

// Progress locates the offset between the current anchor and its neighbor
// on the side the offset has moved to. progress runs from 0 at from to 1 at
// to. A settled axis reports from == to == current and 0.
func (a *Axis[A]) Progress() (from, to A, progress float64) {
	from, to = a.current, a.current
	rel := a.OffsetToCurrent()
	if rel == 0 {
		return from, to, 0
	}
	nb := a.AdjacentAnchors(a.current)
	cur, _ := a.Position(a.current)
	if rel < 0 {
		if !nb.HasPrev {
			return from, to, 0
		}
		prev, _ := a.Position(nb.Prev)
		return nb.Prev, a.current, fraction(a.offset-prev, cur-prev)
	}
	if !nb.HasNext {
		return from, to, 0
	}
	next, _ := a.Position(nb.Next)
	return a.current, nb.Next, fraction(a.offset-cur, next-cur)
}

func fraction(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, num/den))
}
