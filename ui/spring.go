package ui

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// springFPS is the rate the underline spring is stepped at.
const springFPS = 30

// springInterval is the delay between spring ticks.
const springInterval = time.Second / springFPS

// RuleSpring eases the underline beneath the banner text toward the
// width of the text currently shown, so the rule grows while words are
// typed and shrinks while they are deleted.
type RuleSpring struct {
	spring  harmonica.Spring
	pos     float64
	vel     float64
	target  float64
	settled bool
}

// NewRuleSpring creates a settled spring at width 0.
func NewRuleSpring() *RuleSpring {
	return &RuleSpring{
		spring:  harmonica.NewSpring(harmonica.FPS(springFPS), 7.0, 0.75),
		settled: true,
	}
}

// SetTarget points the spring at a new width. It reports whether the
// spring was at rest, meaning the caller has to start ticking again.
func (s *RuleSpring) SetTarget(width int) bool {
	if width < 0 {
		width = 0
	}
	if float64(width) == s.target {
		return false
	}
	wasSettled := s.settled
	s.target = float64(width)
	s.settled = false
	return wasSettled
}

// Snap jumps straight to the target.
func (s *RuleSpring) Snap() {
	s.pos = s.target
	s.vel = 0
	s.settled = true
}

// Tick advances the spring by one frame. Returns true while still moving.
func (s *RuleSpring) Tick() bool {
	if s.settled {
		return false
	}
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, s.target)
	if math.Abs(s.pos-s.target) < 0.05 && math.Abs(s.vel) < 0.05 {
		s.Snap()
		return false
	}
	return true
}

// Width returns the current rule width, clamped to be non-negative.
func (s *RuleSpring) Width() int {
	w := int(math.Round(s.pos))
	if w < 0 {
		return 0
	}
	return w
}

// Target returns the width the spring is heading for.
func (s *RuleSpring) Target() int {
	return int(s.target)
}

// Settled reports whether the spring is at rest.
func (s *RuleSpring) Settled() bool {
	return s.settled
}
