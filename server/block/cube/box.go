package cube

// Box is an axis aligned box of voxel positions. Min is inclusive and Max is
// exclusive.
type Box struct {
	Min, Max Pos
}

// Cube returns a Box covering [0, size) on all three axes.
func Cube(size int) Box {
	return Box{Max: Pos{size, size, size}}
}

// Contains checks if p lies within the box.
func (b Box) Contains(p Pos) bool {
	for i := range p {
		if p[i] < b.Min[i] || p[i] >= b.Max[i] {
			return false
		}
	}
	return true
}

// Size returns the extent of the box along each axis.
func (b Box) Size() Pos {
	return b.Max.Sub(b.Min)
}

// Volume returns the amount of positions contained in the box.
func (b Box) Volume() int {
	s := b.Size()
	if s[0] <= 0 || s[1] <= 0 || s[2] <= 0 {
		return 0
	}
	return s[0] * s[1] * s[2]
}

// Range calls f for every position in the box, iterating X fastest and Y
// slowest. Iteration stops early if f returns false.
func (b Box) Range(f func(p Pos) bool) {
	for y := b.Min[1]; y < b.Max[1]; y++ {
		for z := b.Min[2]; z < b.Max[2]; z++ {
			for x := b.Min[0]; x < b.Max[0]; x++ {
				if !f(Pos{x, y, z}) {
					return
				}
			}
		}
	}
}
