package server

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/df-mc/chunkmesh/server/world/mesh"
	"github.com/df-mc/chunkmesh/server/world/registry"
	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestLoadUserConfigCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")

	uc, err := LoadUserConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if uc != DefaultConfig() {
		t.Fatalf("expected default config, got %+v", uc)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config file to be written: %v", err)
	}

	again, err := LoadUserConfig(path)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if again != uc {
		t.Fatalf("expected written config to load back unchanged, got %+v", again)
	}
}

func TestLoadUserConfigKeepsDefaultsForMissingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := "[Mesh]\nWorkers = 3\nQuality = \"low\"\n\n[Terrain]\nSeed = 42\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	uc, err := LoadUserConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if uc.Mesh.Workers != 3 || uc.Mesh.Quality != "low" || uc.Terrain.Seed != 42 {
		t.Fatalf("expected values from file, got %+v", uc)
	}
	def := DefaultConfig()
	if uc.Terrain.BaseHeight != def.Terrain.BaseHeight || uc.Server.TickInterval != def.Server.TickInterval {
		t.Fatalf("expected missing values to keep their default, got %+v", uc)
	}
}

func TestLoadUserConfigRejectsInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[Mesh\nWorkers = "), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadUserConfig(path); err == nil {
		t.Fatalf("expected decoding an invalid file to fail")
	}
}

func TestUserConfigConversion(t *testing.T) {
	id := uuid.New()
	uc := DefaultConfig()
	uc.Realm.ID = id.String()
	uc.Mesh.Workers = 2
	uc.Mesh.Quality = "low"
	uc.Server.TickInterval = "20ms"

	conf, err := uc.Config(discardLogger())
	if err != nil {
		t.Fatalf("convert config: %v", err)
	}
	if conf.RealmID != id {
		t.Fatalf("expected realm id %v, got %v", id, conf.RealmID)
	}
	if conf.Mesh.Workers != 2 || conf.Mesh.MaxPending != uc.Mesh.MaxPending {
		t.Fatalf("unexpected mesh config %+v", conf.Mesh)
	}
	if conf.Quality != mesh.QualityLow {
		t.Fatalf("expected low quality, got %v", conf.Quality)
	}
	if conf.TickInterval != 20*time.Millisecond {
		t.Fatalf("expected 20ms tick interval, got %v", conf.TickInterval)
	}
	if conf.Generator == nil || conf.Registries == nil {
		t.Fatalf("expected terrain generator and registries to be set")
	}
	if _, ok := conf.Registries.VoxelByName("grass"); !ok {
		t.Fatalf("expected grass to be registered")
	}
}

func TestUserConfigUnknownQualityFallsBackToHigh(t *testing.T) {
	uc := DefaultConfig()
	uc.Mesh.Quality = "ultra"
	conf, err := uc.Config(discardLogger())
	if err != nil {
		t.Fatalf("convert config: %v", err)
	}
	if conf.Quality != mesh.QualityHigh {
		t.Fatalf("expected high quality fallback, got %v", conf.Quality)
	}
}

func TestUserConfigInvalidValues(t *testing.T) {
	cases := map[string]func(uc *UserConfig){
		"realm id":      func(uc *UserConfig) { uc.Realm.ID = "not-a-uuid" },
		"tick interval": func(uc *UserConfig) { uc.Server.TickInterval = "fast" },
	}
	for name, modify := range cases {
		t.Run(name, func(t *testing.T) {
			uc := DefaultConfig()
			modify(&uc)
			if _, err := uc.Config(discardLogger()); err == nil {
				t.Fatalf("expected an error for an invalid %v", name)
			}
		})
	}
}

func TestTerrainContent(t *testing.T) {
	content, err := NewTerrainContent()
	if err != nil {
		t.Fatalf("register content: %v", err)
	}
	reg := content.Registries
	if got := reg.Transparency(content.Palette.Water.ID); got != registry.Transparent {
		t.Fatalf("expected water to be transparent, got %v", got)
	}
	for _, v := range []registry.VoxelID{content.Palette.Stone.ID, content.Palette.Dirt.ID, content.Palette.Grass.ID} {
		if got := reg.Transparency(v); got != registry.Opaque {
			t.Fatalf("expected voxel %v to be opaque, got %v", v, got)
		}
	}
	if reg.TextureCount() != 5 {
		t.Fatalf("expected 5 textures, got %v", reg.TextureCount())
	}
}
