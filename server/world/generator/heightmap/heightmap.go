// Package heightmap implements a terrain generator shaped by smoothed perlin
// noise.
package heightmap

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/world"
	"github.com/df-mc/chunkmesh/server/world/chunk"
)

// smoothSize is the radius of the kernel heights are smoothed with.
const smoothSize = 2

var gaussianKernel = [5][5]float64{
	{1.4715177646858, 2.141045714076, 2.4261226388505, 2.141045714076, 1.4715177646858},
	{2.141045714076, 3.1152031322856, 3.5299876103384, 3.1152031322856, 2.141045714076},
	{2.4261226388505, 3.5299876103384, 4, 3.5299876103384, 2.4261226388505},
	{2.141045714076, 3.1152031322856, 3.5299876103384, 3.1152031322856, 2.141045714076},
	{1.4715177646858, 2.141045714076, 2.4261226388505, 2.141045714076, 1.4715177646858},
}

// Palette holds the voxels terrain is built from.
type Palette struct {
	Stone, Dirt, Grass, Water chunk.VoxelInput
}

// Config holds the settings of a Generator.
type Config struct {
	Seed int64
	// BaseHeight is the world-space Y the surface oscillates around.
	BaseHeight int
	// Amplitude is the maximum distance of the surface from BaseHeight.
	Amplitude float64
	// Scale is the frequency of the noise. Smaller values give wider hills.
	Scale float64
	// WaterLevel is the world-space Y below which empty voxels are filled
	// with Palette.Water. Water is left out if WaterLevel is not above the
	// lowest possible surface.
	WaterLevel int
	// DirtDepth is the amount of dirt voxels between the grass and the
	// stone.
	DirtDepth int
	Palette   Palette
}

func (c Config) withDefaults() Config {
	if c.Amplitude == 0 {
		c.Amplitude = 12
	}
	if c.Scale == 0 {
		c.Scale = 1.0 / 48
	}
	if c.DirtDepth == 0 {
		c.DirtDepth = 3
	}
	return c
}

// Generator generates rolling terrain. It is safe for concurrent use.
type Generator struct {
	conf  Config
	noise *perlin.Perlin
}

// New creates a Generator.
func New(conf Config) *Generator {
	conf = conf.withDefaults()
	return &Generator{conf: conf, noise: perlin.NewPerlin(2, 2, 3, conf.Seed)}
}

// Height returns the world-space Y of the topmost solid voxel of the column
// at x, z.
func (g *Generator) Height(x, z int) int {
	var sum, weightSum float64
	for sx := -smoothSize; sx <= smoothSize; sx++ {
		for sz := -smoothSize; sz <= smoothSize; sz++ {
			weight := gaussianKernel[sx+smoothSize][sz+smoothSize]
			sum += g.raw(x+sx, z+sz) * weight
			weightSum += weight
		}
	}
	n := max(-1, min(1, sum/weightSum))
	return g.conf.BaseHeight + int(math.Round(n*g.conf.Amplitude))
}

func (g *Generator) raw(x, z int) float64 {
	return g.noise.Noise2D(float64(x)*g.conf.Scale, float64(z)*g.conf.Scale)
}

// GenerateChunk fills the chunk at pos with terrain.
func (g *Generator) GenerateChunk(pos world.ChunkPos, a *chunk.WriteAccess) error {
	origin := pos.Origin()
	p := g.conf.Palette
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			height := g.Height(origin[0]+x, origin[2]+z)
			for y := 0; y < chunk.Size; y++ {
				wy := origin[1] + y
				var v chunk.VoxelInput
				switch {
				case wy > height:
					if wy >= g.conf.WaterLevel {
						continue
					}
					v = p.Water
				case wy == height && height >= g.conf.WaterLevel:
					v = p.Grass
				case wy > height-g.conf.DirtDepth:
					v = p.Dirt
				default:
					v = p.Stone
				}
				if err := a.Set(cube.Pos{x, y, z}, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
