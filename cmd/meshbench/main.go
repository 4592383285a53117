// Command meshbench generates an area of terrain, meshes every chunk in it and
// reports how long meshing took and how much geometry it produced.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/df-mc/chunkmesh/server"
	"github.com/df-mc/chunkmesh/server/world"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "path to the TOML configuration, created if missing")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := run(log, *configPath); err != nil {
		log.Error("Benchmark failed.", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, configPath string) error {
	uc, err := server.LoadUserConfig(configPath)
	if err != nil {
		return err
	}
	conf, err := uc.Config(log)
	if err != nil {
		return err
	}
	cache := server.NewMeshCache()
	conf.Sink = cache

	srv := conf.New()
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	positions := area(uc.Bench.Radius, uc.Bench.Height)
	start := time.Now()
	if err := generate(ctx, srv, positions); err != nil {
		return err
	}
	generated := time.Since(start)
	log.Info("Generated terrain.", "chunks", len(positions), "took", generated)

	start = time.Now()
	for !srv.Tick().Idle() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
	meshed := time.Since(start)

	stats := srv.Stats()
	quads, vertices := cache.Totals()
	log.Info("Meshed terrain.",
		"realm", stats.Realm,
		"chunks", cache.Len(),
		"quads", quads,
		"vertices", vertices,
		"builds", stats.Mesh.Built,
		"failed", stats.Failed,
		"rejected", stats.Mesh.Rejected,
		"took", meshed,
		"build_time", stats.Mesh.BuildTime,
	)
	if cache.Len() != len(positions) {
		return fmt.Errorf("meshed %v of %v chunks", cache.Len(), len(positions))
	}
	return nil
}

// area returns the positions of the chunks within radius of the origin
// horizontally and height chunks tall, starting at chunk Y 0.
func area(radius, height int) []world.ChunkPos {
	var positions []world.ChunkPos
	for y := 0; y < max(height, 1); y++ {
		for z := -radius; z <= radius; z++ {
			for x := -radius; x <= radius; x++ {
				positions = append(positions, world.ChunkPos{int32(x), int32(y), int32(z)})
			}
		}
	}
	return positions
}

// generate generates all positions passed concurrently, one goroutine per
// CPU.
func generate(ctx context.Context, srv *server.Server, positions []world.ChunkPos) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, pos := range positions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := srv.Generate(pos)
			return err
		})
	}
	return g.Wait()
}
