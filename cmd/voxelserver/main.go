// Command voxelserver runs the voxel world engine: it assembles a
// dispatcher.World from flag-overridden defaults and drives its tick
// loop until interrupted, in the teacher's log.Printf/os.Signal
// shutdown style (pkg/server's main wiring, generalized from a
// TCP accept loop to a websocket upgrade handler).
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/StoreStation/voxelengine/internal/config"
	"github.com/StoreStation/voxelengine/internal/dispatcher"
)

func main() {
	cfg := config.DefaultConfig()

	addr := flag.String("addr", cfg.ListenAddr, "address to listen on")
	wsPath := flag.String("ws-path", cfg.WSPath, "websocket upgrade path")
	seed := flag.Int64("seed", cfg.Seed, "world generation seed")
	tickMS := flag.Int("tick-ms", int(cfg.TickInterval/time.Millisecond), "tick interval in milliseconds")
	saveDir := flag.String("save-dir", cfg.SaveDir, "world save directory")
	saving := flag.Bool("save", cfg.Saving, "persist chunks/entities/stats to save-dir")
	preloadRadius := flag.Int("preload-radius", int(cfg.PreloadRadius), "chunk radius to preload around each client")
	flag.Parse()

	cfg.ListenAddr = *addr
	cfg.WSPath = *wsPath
	cfg.Seed = *seed
	cfg.TickInterval = time.Duration(*tickMS) * time.Millisecond
	cfg.SaveDir = *saveDir
	cfg.Saving = *saving
	cfg.PreloadRadius = int32(*preloadRadius)

	world, err := dispatcher.NewWorld(cfg)
	if err != nil {
		log.Fatalf("voxelserver: build world: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("voxelserver: listening on %s%s (seed %d)", cfg.ListenAddr, cfg.WSPath, cfg.Seed)
	if err := dispatcher.New(world).Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("voxelserver: %v", err)
	}
	log.Printf("voxelserver: shut down")
}
