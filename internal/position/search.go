package position

import (
	"math"
)

// DefaultMaxDepth bounds the number of tree steps taken by Compute.
const DefaultMaxDepth = 2000

// Search is a cursor into the Stern–Brocot tree of positive rationals.
//
// The cursor starts at the root 1/1 with the implicit ancestors 0/1 on the
// left and 1/0 (+Inf) on the right. Every step replaces the current node by
// the mediant of itself and one of its bracketing ancestors, so fractions stay
// in lowest terms without any gcd computation.
//
// A Search is not safe for concurrent use. Create one per operation.
type Search struct {
	num, den           uint64
	leftNum, leftDen   uint64
	rightNum, rightDen uint64
	depth              int
}

// NewSearch returns a cursor positioned at the root 1/1.
func NewSearch() *Search {
	return &Search{
		num: 1, den: 1,
		leftNum: 0, leftDen: 1,
		rightNum: 1, rightDen: 0,
	}
}

// Value returns the current fraction as a float64.
func (s *Search) Value() float64 {
	return float64(s.num) / float64(s.den)
}

// Fraction returns the current numerator and denominator.
func (s *Search) Fraction() (num, den uint64) {
	return s.num, s.den
}

// Depth returns the number of steps taken since the root.
func (s *Search) Depth() int {
	return s.depth
}

// GoRight moves to the right child. The value strictly increases.
// Returns false, leaving the cursor unchanged, if the step would overflow.
func (s *Search) GoRight() bool {
	num, ok := addUint(s.num, s.rightNum)
	if !ok {
		return false
	}
	den, ok := addUint(s.den, s.rightDen)
	if !ok {
		return false
	}
	s.leftNum, s.leftDen = s.num, s.den
	s.num, s.den = num, den
	s.depth++
	return true
}

// GoLeft moves to the left child. The value strictly decreases.
// Returns false, leaving the cursor unchanged, if the step would overflow.
func (s *Search) GoLeft() bool {
	num, ok := addUint(s.num, s.leftNum)
	if !ok {
		return false
	}
	den, ok := addUint(s.den, s.leftDen)
	if !ok {
		return false
	}
	s.rightNum, s.rightDen = s.num, s.den
	s.num, s.den = num, den
	s.depth++
	return true
}

// Between walks down from the current node until its value lies strictly
// inside (lower, upper) or maxDepth total steps have been taken. It reports
// whether the bound was satisfied; on false the cursor holds the best-effort
// value reached.
func (s *Search) Between(lower, upper float64, maxDepth int) bool {
	for {
		v := s.Value()
		if lower < v && v < upper {
			return true
		}
		if s.depth >= maxDepth {
			return false
		}
		var moved bool
		if v <= lower {
			moved = s.GoRight()
		} else {
			moved = s.GoLeft()
		}
		if !moved {
			return false
		}
	}
}

// Compute returns the simplest rational strictly inside (lower, upper).
//
// upper may be +Inf, meaning there is no item above. maxDepth <= 0 selects
// DefaultMaxDepth. An invalid interval yields a *RangeError. When the depth
// budget runs out the best-effort value is returned together with an
// *ExhaustedError; callers decide whether to accept the drift or heal.
func Compute(lower, upper float64, maxDepth int) (float64, error) {
	s, err := Locate(lower, upper, maxDepth)
	if s == nil {
		return 0, err
	}
	return s.Value(), err
}

// Locate is Compute returning the finished cursor, so callers can inspect
// the fraction and the depth it took. The cursor is nil only when the range
// is invalid.
func Locate(lower, upper float64, maxDepth int) (*Search, error) {
	if err := checkRange(lower, upper); err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	s := NewSearch()
	if !s.Between(lower, upper, maxDepth) {
		return s, &ExhaustedError{
			Lower: lower,
			Upper: upper,
			Value: s.Value(),
			Depth: s.Depth(),
		}
	}
	return s, nil
}

// Rational finds the fraction in the tree whose float value equals p,
// walking at most maxDepth steps. It recovers the num/den behind a stored
// position. ok is false if p is not positive and finite or the walk runs out.
func Rational(p float64, maxDepth int) (num, den uint64, ok bool) {
	if !(p > 0) || math.IsInf(p, 0) {
		return 0, 0, false
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	s := NewSearch()
	for {
		v := s.Value()
		if v == p {
			num, den = s.Fraction()
			return num, den, true
		}
		if s.depth >= maxDepth {
			return 0, 0, false
		}
		var moved bool
		if v < p {
			moved = s.GoRight()
		} else {
			moved = s.GoLeft()
		}
		if !moved {
			return 0, 0, false
		}
	}
}

func checkRange(lower, upper float64) error {
	if math.IsNaN(lower) || math.IsNaN(upper) || lower < 0 || lower >= upper {
		return &RangeError{Lower: lower, Upper: upper}
	}
	return nil
}

func addUint(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}
