package server

import (
	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/block/model"
	"github.com/df-mc/chunkmesh/server/world/chunk"
	"github.com/df-mc/chunkmesh/server/world/generator/heightmap"
	"github.com/df-mc/chunkmesh/server/world/registry"
)

// TerrainContent is the set of voxels the default terrain is made of.
type TerrainContent struct {
	Registries *registry.Registries
	Palette    heightmap.Palette
}

// NewTerrainContent registers stone, dirt, grass and water along with their
// textures. Water is the only transparent voxel.
func NewTerrainContent() (TerrainContent, error) {
	l := registry.NewLoader()
	textures := map[string]model.TextureIndex{}
	for _, name := range []string{"stone", "dirt", "grass_top", "grass_side", "water"} {
		idx, err := l.RegisterTexture(name)
		if err != nil {
			return TerrainContent{}, err
		}
		textures[name] = idx
	}

	var p heightmap.Palette
	for _, v := range []struct {
		name  string
		t     registry.Transparency
		model model.Block
		dst   *chunk.VoxelInput
	}{
		{"stone", registry.Opaque, model.Filled(textures["stone"]), &p.Stone},
		{"dirt", registry.Opaque, model.Filled(textures["dirt"]), &p.Dirt},
		{"grass", registry.Opaque, grassModel(textures), &p.Grass},
		{"water", registry.Transparent, model.Filled(textures["water"]), &p.Water},
	} {
		id, err := l.RegisterVoxel(v.name, v.t)
		if err != nil {
			return TerrainContent{}, err
		}
		*v.dst = chunk.VoxelInput{ID: id, Model: v.model}
	}
	return TerrainContent{Registries: l.Build(), Palette: p}, nil
}

func grassModel(textures map[string]model.TextureIndex) model.Block {
	return model.Filled(textures["grass_side"]).
		WithTexture(cube.FaceUp, model.FaceTexture{Texture: textures["grass_top"]}).
		WithTexture(cube.FaceDown, model.FaceTexture{Texture: textures["dirt"]})
}
