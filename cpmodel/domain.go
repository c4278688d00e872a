// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cpmodel

import (
	"fmt"
	"math"
)

// ClosedInterval stores the closed interval `[start,end]`. If the `Start` is greater
// than the `End`, the interval is considered empty. math.MinInt64 and math.MaxInt64
// stand for unbounded sides.
type ClosedInterval struct {
	Start int64
	End   int64
}

// checkOverflowAndAdd first checks if adding `delta` to `i` will cause an integer overflow.
// It will return the value of the summation if there is no overflow. Otherwise, it will
// return MaxInt64 or MinInt64 depending on the direction of the overflow.
func checkOverflowAndAdd(i, delta int64) int64 {
	if i == math.MinInt64 || i == math.MaxInt64 {
		return i
	}

	s := i + delta
	if delta < 0 && s > i {
		return math.MinInt64
	}
	if delta > 0 && s < i {
		return math.MaxInt64
	}

	return s
}

// Offset adds an offset to both the `Start` and `End` of the ClosedInterval `c`. If the `Start`
// is equal to MinInt or if `End` is equal to MaxInt, the offset does not get added since those
// values represent an unbounded domain. Both `Start` and `End` are clamped at math.MinInt64 and
// Math.MaxInt64.
func (c ClosedInterval) Offset(delta int64) ClosedInterval {
	return ClosedInterval{checkOverflowAndAdd(c.Start, delta), checkOverflowAndAdd(c.End, delta)}
}

// IsEmpty reports whether the interval contains no value.
func (c ClosedInterval) IsEmpty() bool {
	return c.Start > c.End
}

// IsFixed reports whether the interval contains exactly one value.
func (c ClosedInterval) IsFixed() bool {
	return c.Start == c.End
}

// Contains reports whether `v` lies in the interval.
func (c ClosedInterval) Contains(v int64) bool {
	return c.Start <= v && v <= c.End
}

// HasLowerBound reports whether the interval is bounded from below.
func (c ClosedInterval) HasLowerBound() bool {
	return c.Start != math.MinInt64
}

// HasUpperBound reports whether the interval is bounded from above.
func (c ClosedInterval) HasUpperBound() bool {
	return c.End != math.MaxInt64
}

// String formats the interval as `[start,end]` with `-inf` and `+inf` for unbounded sides.
func (c ClosedInterval) String() string {
	lo, hi := "-inf", "+inf"
	if c.HasLowerBound() {
		lo = fmt.Sprint(c.Start)
	}
	if c.HasUpperBound() {
		hi = fmt.Sprint(c.End)
	}
	return fmt.Sprintf("[%s,%s]", lo, hi)
}

// boundToFloat converts an interval bound to a float, mapping unbounded sides to infinities.
func boundToFloat(b int64) float64 {
	switch b {
	case math.MinInt64:
		return math.Inf(-1)
	case math.MaxInt64:
		return math.Inf(1)
	}
	return float64(b)
}
