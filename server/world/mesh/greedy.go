package mesh

import (
	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/world/chunk"
)

// Greedy is a Mesher that merges adjacent faces with identical textures into
// larger quads. Merging happens in raster order: starting at the first
// unconsumed face, a quad is widened as far as the row allows and then grown
// row by row while every face in the next row matches. The partition found
// is not necessarily the smallest possible one.
type Greedy struct{}

// Build builds merged geometry for the chunk readable through a.
func (Greedy) Build(a chunk.Access, ctx Context) (*Buffer, error) {
	buf := NewBuffer(64)
	plane := new(facePlane)
	for _, face := range cube.Faces() {
		for layer := 0; layer < chunk.Size; layer++ {
			if err := fillPlane(plane, a, ctx, face, layer); err != nil {
				return nil, err
			}
			mergePlane(plane, func(q Quad, cell faceCell) {
				buf.Add(PositionedQuad{Face: face, Layer: layer, Quad: q, Texture: cell.tex})
			})
		}
	}
	return buf, nil
}

// Material returns the material of the high quality chunk pipeline.
func (Greedy) Material() Material {
	return Material{Name: "chunk_hq", Shader: "shaders/chunk_hq.wgsl", CullBack: true, Defs: shaderDefs()}
}

// mergePlane emits one quad per greedily merged run of visible faces and
// clears the faces consumed.
func mergePlane(plane *facePlane, emit func(q Quad, cell faceCell)) {
	const n = chunk.Size
	for v := 0; v < n; v++ {
		for u := 0; u < n; u++ {
			start := plane[u+v*n]
			if !start.visible {
				continue
			}
			w := 1
			for u+w < n && plane[u+w+v*n] == start {
				w++
			}
			h := 1
		rows:
			for v+h < n {
				for du := 0; du < w; du++ {
					if plane[u+du+(v+h)*n] != start {
						break rows
					}
				}
				h++
			}
			for dv := 0; dv < h; dv++ {
				for du := 0; du < w; du++ {
					plane[u+du+(v+dv)*n] = faceCell{}
				}
			}
			emit(Quad{Min: cube.Pos2{u, v}, Max: cube.Pos2{u + w, v + h}}, start)
		}
	}
}
