package mesh

import (
	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/world/chunk"
)

// Simple is a Mesher that emits one unit quad for every visible face. It
// does far less work per chunk than Greedy at the cost of more geometry.
type Simple struct{}

// Build builds one quad per visible face of the chunk readable through a.
func (Simple) Build(a chunk.Access, ctx Context) (*Buffer, error) {
	buf := NewBuffer(64)
	plane := new(facePlane)
	for _, face := range cube.Faces() {
		for layer := 0; layer < chunk.Size; layer++ {
			if err := fillPlane(plane, a, ctx, face, layer); err != nil {
				return nil, err
			}
			for i, cell := range plane {
				if cell.visible {
					q := UnitQuad(cube.Pos2{i % chunk.Size, i / chunk.Size})
					buf.Add(PositionedQuad{Face: face, Layer: layer, Quad: q, Texture: cell.tex})
				}
			}
		}
	}
	return buf, nil
}

// Material returns the material of the low quality chunk pipeline.
func (Simple) Material() Material {
	return Material{Name: "chunk_lq", Shader: "shaders/chunk_lq.wgsl", CullBack: true, Defs: shaderDefs()}
}
