// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package domain

import (
	"fmt"
	"math"
)

// StoryPoint is an estimation value. Valid values are positive Fibonacci
// numbers; the team convention caps the suggested range at 13, but any
// Fibonacci value is accepted.
type StoryPoint struct {
	value int
}

// NewStoryPoint validates value and returns an immutable StoryPoint.
func NewStoryPoint(value int) (StoryPoint, error) {
	if !isFibonacci(value) {
		return StoryPoint{}, fmt.Errorf("story point must be a positive Fibonacci number, got %d: %w", value, ErrInvalidArgument)
	}
	return StoryPoint{value: value}, nil
}

// Value returns the point value. The zero StoryPoint returns 0, which is
// never a valid estimate.
func (p StoryPoint) Value() int {
	return p.value
}

// IsZero reports whether p is the zero value (no estimate).
func (p StoryPoint) IsZero() bool {
	return p.value == 0
}

func (p StoryPoint) String() string {
	return fmt.Sprintf("%dpt", p.value)
}

// SuggestedSequence returns the ascending Fibonacci values up to max,
// starting the recurrence at 1,1 and collapsing the repeated leading 1.
func SuggestedSequence(max int) []int {
	seq := []int{}
	a, b := 1, 1
	for a <= max {
		if len(seq) == 0 || seq[len(seq)-1] != a {
			seq = append(seq, a)
		}
		// The recurrence overflows int past fib(92); stop before it wraps.
		if b > math.MaxInt-a {
			break
		}
		a, b = b, a+b
	}
	return seq
}

// maxCheckableFib is the largest Fibonacci number for which 5n²+4 still
// fits in an int64; the test computes that product, so anything larger
// is rejected outright rather than risk a wrapped false positive.
const maxCheckableFib = 1134903170

// isFibonacci uses the classic test: n is a Fibonacci number iff
// 5n²+4 or 5n²-4 is a perfect square.
func isFibonacci(n int) bool {
	if n <= 0 || n > maxCheckableFib {
		return false
	}
	n2 := int64(n) * int64(n)
	return isPerfectSquare(5*n2+4) || isPerfectSquare(5*n2-4)
}

func isPerfectSquare(n int64) bool {
	if n < 0 {
		return false
	}
	root := int64(math.Sqrt(float64(n)))
	// Guard against float truncation near the boundary.
	for _, r := range []int64{root - 1, root, root + 1} {
		if r >= 0 && r*r == n {
			return true
		}
	}
	return false
}
