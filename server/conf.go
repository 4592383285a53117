package server

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df-mc/chunkmesh/server/world"
	"github.com/df-mc/chunkmesh/server/world/chunk"
	"github.com/df-mc/chunkmesh/server/world/generator"
	"github.com/df-mc/chunkmesh/server/world/generator/heightmap"
	"github.com/df-mc/chunkmesh/server/world/mesh"
	"github.com/df-mc/chunkmesh/server/world/registry"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml"
)

// Config contains options for starting a Server.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set to
	// slog.Default(). It is passed on to the realm and the mesh builder.
	Log *slog.Logger
	// RealmID identifies the realm of the server in logs and stats. A random
	// id is generated if left as uuid.Nil.
	RealmID uuid.UUID
	// Mesh holds the settings of the mesh builder. Its Log is set to Log if
	// left nil.
	Mesh mesh.Config
	// Quality is the quality chunks are meshed with by Tick.
	Quality mesh.Quality
	// HQ and LQ are the meshers used for QualityHigh and QualityLow builds.
	// They default to mesh.Greedy and mesh.Simple.
	HQ, LQ mesh.Mesher
	// Registries holds the voxel types and textures chunks are meshed with.
	// If nil, registries with only air registered are used.
	Registries *registry.Registries
	// Generator fills chunks loaded through Server.Generate. If nil, chunks
	// are left empty.
	Generator generator.Generator
	// DefaultVoxel is the voxel assumed outside of loaded chunks when
	// sampling neighbours. The zero value is air.
	DefaultVoxel chunk.Voxel
	// Sink receives every mesh built. If nil, meshes are discarded.
	Sink MeshSink
	// TickInterval is the interval at which Run ticks the server if no
	// interval is passed to it. It defaults to 50ms.
	TickInterval time.Duration
}

// New creates a Server using the Config and starts its mesh workers. The
// Server must be closed with Close to stop the workers.
func (conf Config) New() *Server {
	conf = conf.withDefaults()
	srv := &Server{
		conf:     conf,
		realm:    world.NewRealm(world.RealmConfig{Log: conf.Log, ID: conf.RealmID}),
		inFlight: make(map[world.ChunkPos]mesh.TaskID),
	}
	srv.builder = mesh.NewBuilder(conf.Mesh, conf.HQ, conf.LQ, conf.Registries)
	conf.Log.Debug("Server started.", "realm", srv.realm.ID(), "quality", conf.Quality)
	return srv
}

func (conf Config) withDefaults() Config {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Mesh.Log == nil {
		conf.Mesh.Log = conf.Log
	}
	if conf.HQ == nil {
		conf.HQ = mesh.Greedy{}
	}
	if conf.LQ == nil {
		conf.LQ = mesh.Simple{}
	}
	if conf.Registries == nil {
		conf.Registries = registry.NewLoader().Build()
	}
	if conf.Generator == nil {
		conf.Generator = generator.Flat{}
	}
	if conf.Sink == nil {
		conf.Sink = NopSink{}
	}
	if conf.TickInterval <= 0 {
		conf.TickInterval = time.Second / 20
	}
	return conf
}

// UserConfig is the user configuration of a Server. It holds the settings
// that may be changed without recompiling, such as the amount of mesh workers
// and the shape of the terrain. UserConfig may be serialised to TOML and can
// be converted to a Config by calling UserConfig.Config().
type UserConfig struct {
	Realm struct {
		// ID is the UUID of the realm. A random one is generated on every
		// start if left empty.
		ID string
	}
	Mesh struct {
		// Workers is the amount of goroutines building meshes. Set to 0 to
		// use one worker per CPU.
		Workers int
		// MaxPending is the amount of builds that may be queued at once.
		// Chunks that do not fit are retried on the next tick. Set to 0 to
		// use the default. Values above 65536 are capped.
		MaxPending int
		// Quality is either "high", for greedy meshing, or "low", for one
		// quad per visible face.
		Quality string
	}
	Terrain struct {
		// Seed is the seed of the terrain noise.
		Seed int64
		// BaseHeight is the height the surface oscillates around.
		BaseHeight int
		// Amplitude is the maximum distance of the surface from BaseHeight.
		Amplitude float64
		// Scale is the frequency of the terrain noise.
		Scale float64
		// WaterLevel is the height below which empty voxels are filled with
		// water.
		WaterLevel int
		// DirtDepth is the amount of dirt voxels under the grass.
		DirtDepth int
	}
	Server struct {
		// TickInterval is the interval between two ticks of the server, for
		// example "50ms".
		TickInterval string
	}
	Bench struct {
		// Radius is the horizontal radius in chunks of the area generated by
		// meshbench.
		Radius int
		// Height is the amount of chunks generated by meshbench vertically,
		// starting at chunk Y 0.
		Height int
	}
}

// Config converts a UserConfig to a Config, so that it may be used for
// creating a Server. An error is returned if a value in the UserConfig is
// invalid or if the terrain content could not be registered.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	conf := Config{
		Log: log,
		Mesh: mesh.Config{
			Log:        log,
			Workers:    uc.Mesh.Workers,
			MaxPending: uc.Mesh.MaxPending,
		},
	}
	if id := strings.TrimSpace(uc.Realm.ID); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return conf, fmt.Errorf("parse realm id: %w", err)
		}
		conf.RealmID = parsed
	}
	if uc.Mesh.MaxPending > mesh.MaxPendingLimit && log != nil {
		log.Warn("Mesh MaxPending too high, capping it.", "value", uc.Mesh.MaxPending, "limit", mesh.MaxPendingLimit)
	}
	if quality, ok := parseQuality(uc.Mesh.Quality); ok {
		conf.Quality = quality
	} else if log != nil {
		log.Warn("Unknown mesh quality, using high.", "value", uc.Mesh.Quality)
	}
	if s := strings.TrimSpace(uc.Server.TickInterval); s != "" {
		interval, err := time.ParseDuration(s)
		if err != nil {
			return conf, fmt.Errorf("parse tick interval: %w", err)
		}
		conf.TickInterval = interval
	}

	content, err := NewTerrainContent()
	if err != nil {
		return conf, fmt.Errorf("register terrain content: %w", err)
	}
	conf.Registries = content.Registries
	conf.Generator = heightmap.New(heightmap.Config{
		Seed:       uc.Terrain.Seed,
		BaseHeight: uc.Terrain.BaseHeight,
		Amplitude:  uc.Terrain.Amplitude,
		Scale:      uc.Terrain.Scale,
		WaterLevel: uc.Terrain.WaterLevel,
		DirtDepth:  uc.Terrain.DirtDepth,
		Palette:    content.Palette,
	})
	return conf, nil
}

func parseQuality(name string) (mesh.Quality, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "high", "hq", "greedy":
		return mesh.QualityHigh, true
	case "low", "lq", "simple":
		return mesh.QualityLow, true
	}
	return mesh.QualityHigh, false
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.Mesh.Quality = "high"
	c.Mesh.MaxPending = 4096
	c.Terrain.BaseHeight = 24
	c.Terrain.Amplitude = 12
	c.Terrain.Scale = 1.0 / 48
	c.Terrain.WaterLevel = 20
	c.Terrain.DirtDepth = 3
	c.Server.TickInterval = "50ms"
	c.Bench.Radius = 4
	c.Bench.Height = 3
	return c
}

// LoadUserConfig reads the UserConfig stored in the TOML file at path. If the
// file does not exist yet, it is created with the values of DefaultConfig.
// Values missing from an existing file keep their default.
func LoadUserConfig(path string) (UserConfig, error) {
	conf := DefaultConfig()
	contents, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return conf, fmt.Errorf("read config: %w", err)
		}
		return conf, writeUserConfig(path, conf)
	}
	if err := toml.Unmarshal(contents, &conf); err != nil {
		return conf, fmt.Errorf("decode config: %w", err)
	}
	return conf, nil
}

func writeUserConfig(path string, conf UserConfig) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	encoded, err := toml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
