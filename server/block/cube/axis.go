package cube

// Axis represents the axis that a face or direction lies on. The numeric
// value of an Axis is the index of that axis in a Pos.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// String returns the lower-case name of the axis.
func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	panic("invalid axis")
}
