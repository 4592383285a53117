package cube

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Pos holds the position of a voxel. Depending on context it is either
// chunk-local, in which case every component lies in [0, chunk.Size), or
// relative to the origin of a chunk and allowed to leave it.
type Pos [3]int

// X returns the X coordinate of the position.
func (p Pos) X() int { return p[0] }

// Y returns the Y coordinate of the position.
func (p Pos) Y() int { return p[1] }

// Z returns the Z coordinate of the position.
func (p Pos) Z() int { return p[2] }

// Add returns the sum of the two positions.
func (p Pos) Add(o Pos) Pos {
	return Pos{p[0] + o[0], p[1] + o[1], p[2] + o[2]}
}

// Sub returns p minus o.
func (p Pos) Sub(o Pos) Pos {
	return Pos{p[0] - o[0], p[1] - o[1], p[2] - o[2]}
}

// Side returns the position directly next to p on the face passed.
func (p Pos) Side(face Face) Pos {
	return p.Add(face.Normal())
}

// DivEuclid divides every component by n, rounding towards negative
// infinity.
func (p Pos) DivEuclid(n int) Pos {
	return Pos{FloorDiv(p[0], n), FloorDiv(p[1], n), FloorDiv(p[2], n)}
}

// RemEuclid returns the non-negative remainder of every component divided by
// n.
func (p Pos) RemEuclid(n int) Pos {
	return Pos{Mod(p[0], n), Mod(p[1], n), Mod(p[2], n)}
}

// String implements fmt.Stringer.
func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p[0], p[1], p[2])
}

// Pos2 is a position within the plane of one Face. Which two axes the
// components map to is decided by Face.PlaneAxes.
type Pos2 [2]int

// String implements fmt.Stringer.
func (p Pos2) String() string {
	return fmt.Sprintf("(%d, %d)", p[0], p[1])
}

// FloorDiv divides a by b and rounds the result towards negative infinity,
// so that FloorDiv(-1, 16) == -1. b must be positive.
func FloorDiv[T constraints.Integer](a, b T) T {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod returns the Euclidean remainder of a divided by b, which is always in
// [0, b) for a positive b.
func Mod[T constraints.Integer](a, b T) T {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
