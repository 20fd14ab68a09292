package geometry

import "github.com/chewxy/math32"

// Interval is the projection of a shape onto an axis.
type Interval struct {
	Min float32
	Max float32
}

// EmptyInterval returns an interval that any Extend call replaces.
func EmptyInterval() Interval {
	return Interval{Min: math32.Inf(1), Max: math32.Inf(-1)}
}

// Extend grows the interval to include v.
func (i Interval) Extend(v float32) Interval {
	if v < i.Min {
		i.Min = v
	}
	if v > i.Max {
		i.Max = v
	}
	return i
}

// Overlaps reports whether the two intervals share at least one point.
func (i Interval) Overlaps(o Interval) bool {
	return i.Min <= o.Max && o.Min <= i.Max
}

// Contains reports whether v lies inside the closed interval.
func (i Interval) Contains(v float32) bool {
	return v >= i.Min && v <= i.Max
}

// Length is Max-Min, or zero for an empty interval.
func (i Interval) Length() float32 {
	if i.Max < i.Min {
		return 0
	}
	return i.Max - i.Min
}
