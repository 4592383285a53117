package cube

// Face represents one of the six faces of a voxel or chunk.
type Face int

const (
	// FaceDown represents the bottom face, pointing towards negative Y.
	FaceDown Face = iota
	// FaceUp represents the top face, pointing towards positive Y.
	FaceUp
	// FaceNorth represents the north face, pointing towards negative Z.
	FaceNorth
	// FaceSouth represents the south face, pointing towards positive Z.
	FaceSouth
	// FaceWest represents the west face, pointing towards negative X.
	FaceWest
	// FaceEast represents the east face, pointing towards positive X.
	FaceEast
)

// Faces returns all six faces in their declaration order.
func Faces() []Face {
	return []Face{FaceDown, FaceUp, FaceNorth, FaceSouth, FaceWest, FaceEast}
}

// Axis returns the axis the face is perpendicular to.
func (f Face) Axis() Axis {
	switch f {
	case FaceDown, FaceUp:
		return Y
	case FaceNorth, FaceSouth:
		return Z
	default:
		return X
	}
}

// Positive reports if the face points towards the positive end of its axis.
func (f Face) Positive() bool {
	return f == FaceUp || f == FaceSouth || f == FaceEast
}

// Direction returns 1 for faces pointing towards the positive end of their
// axis and -1 otherwise.
func (f Face) Direction() int {
	if f.Positive() {
		return 1
	}
	return -1
}

// Opposite returns the face on the other side of the cube.
func (f Face) Opposite() Face {
	return f ^ 1
}

// Normal returns the unit offset the face points towards.
func (f Face) Normal() Pos {
	var p Pos
	p[f.Axis()] = f.Direction()
	return p
}

// PlaneAxes returns the two axes spanning the face plane, in the order used
// for face-local coordinates. Y faces use (X, Z), X faces use (Y, Z) and Z
// faces use (X, Y).
func (f Face) PlaneAxes() (u, v Axis) {
	switch f.Axis() {
	case Y:
		return X, Z
	case X:
		return Y, Z
	default:
		return X, Y
	}
}

// Project turns a face-local position into a 3D position, placing the
// coordinate along the face axis at mag.
func (f Face) Project(p Pos2, mag int) Pos {
	var out Pos
	u, v := f.PlaneAxes()
	out[u], out[v], out[f.Axis()] = p[0], p[1], mag
	return out
}

// Flatten drops the coordinate along the face axis, returning the face-local
// position of p. Flatten is the inverse of Project.
func (f Face) Flatten(p Pos) Pos2 {
	u, v := f.PlaneAxes()
	return Pos2{p[u], p[v]}
}

// String returns the face's name.
func (f Face) String() string {
	switch f {
	case FaceDown:
		return "down"
	case FaceUp:
		return "up"
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	case FaceWest:
		return "west"
	case FaceEast:
		return "east"
	}
	panic("invalid face")
}
