// Package dispatcher wires every leaf component (registry, chunk store,
// light engine, mesher, pipeline, request router, transport, physics,
// entities, persistence) into the single authoritative tick loop
// spec.md 2 and 4.7 describe, grounded structurally on pkg/server's
// ticker-driven Start/Stop loop, generalized from several independent
// tickers into one ordered per-tick system pass.
package dispatcher

import (
	"fmt"
	"log"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/StoreStation/voxelengine/internal/chunkstore"
	"github.com/StoreStation/voxelengine/internal/config"
	"github.com/StoreStation/voxelengine/internal/entity"
	"github.com/StoreStation/voxelengine/internal/light"
	"github.com/StoreStation/voxelengine/internal/mesher"
	"github.com/StoreStation/voxelengine/internal/persist"
	"github.com/StoreStation/voxelengine/internal/physics"
	"github.com/StoreStation/voxelengine/internal/pipeline"
	"github.com/StoreStation/voxelengine/internal/registry"
	"github.com/StoreStation/voxelengine/internal/router"
	"github.com/StoreStation/voxelengine/internal/transport"
	"github.com/StoreStation/voxelengine/internal/voxel"
	"github.com/StoreStation/voxelengine/internal/wire"
	"github.com/StoreStation/voxelengine/internal/workerpool"
)

// clientState is the dispatcher's per-client bookkeeping that does not
// belong to any one leaf package: which chunk it is centered on, and a
// known set that is allocated on connect but not read by chunk-sending
// (the client's router tracks which chunks were loaded).
type clientState struct {
	center voxel.Vec2
	known  map[voxel.Vec2]struct{}
}

// World owns every shared resource the tick loop's systems read and
// write. Registry is read-only after Seal; ChunkStore is mutated only
// by the pipeline system and by direct block edits applied during
// chunk-requests, per spec.md 5's single-writer-per-tick invariant.
type World struct {
	ID       uuid.UUID
	Config   config.Config
	Blocks   BlockIDs
	Registry *registry.Registry
	Store    *chunkstore.Store
	Light    *light.Engine
	Mesher   *mesher.Mesher
	Pool     *workerpool.Pool
	Pipeline *pipeline.Pipeline
	Hub      *router.Hub
	Entities *entity.Registry
	Book     *entity.Bookkeeping
	Transport *transport.Server
	Save     *persist.SaveDir

	mu             sync.Mutex
	clients        map[uuid.UUID]*clientState
	bodies         map[uuid.UUID]*physics.RigidBody
	readyChunks    map[voxel.Vec2]struct{}
	pendingChanges map[voxel.Vec2][]wire.VoxelChange
}

// NewWorld validates cfg and assembles every component, registering the
// engine's default block catalog and reference pipeline stages
// (Generate, Soil, Water, Tree, Light, Mesh). Returns ErrConfig if cfg
// fails validation, matching spec.md 7's "fatal at startup" rule.
func NewWorld(cfg config.Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := registry.New()
	ids, err := RegisterDefaultBlocks(reg)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: register default blocks: %w", err)
	}
	reg.Seal()

	dims := cfg.Dimensions()
	store := chunkstore.New(dims, chunkstore.Bounds{Min: cfg.MinChunk, Max: cfg.MaxChunk})
	lightEngine := light.NewEngine(reg)
	mesh := mesher.New(reg)
	pool := workerpool.New(0)

	terrain := buildTerrain(cfg.Seed)
	noise := buildTreeNoise(cfg.Seed)

	generate := &pipeline.GenerateStage{Terrain: terrain, Registry: reg, StoneID: ids.Stone}
	soil := &pipeline.SoilStage{
		Registry: reg, GrassID: ids.Grass, DirtID: ids.Dirt, StoneID: ids.Stone, SnowID: ids.Snow,
		SnowHeight: cfg.MaxHeight*3/4 + 1, StoneHeight: cfg.MaxHeight/2 + 1,
	}
	water := &pipeline.WaterStage{Registry: reg, WaterID: ids.Water, SandID: ids.Sand, WaterLevel: cfg.WaterLevel}
	tree := &pipeline.TreeStage{
		Noise: noise, Registry: reg, WoodID: ids.Wood, LeavesID: ids.Leaves, GrassID: ids.Grass,
		TrunkHeight: 4, CanopyRadius: 2,
	}
	lightStage := &pipeline.LightStage{Engine: lightEngine}
	meshStage := &pipeline.MeshStage{Mesher: mesh, MaxLightLevel: cfg.MaxLightLevel, ChunkSize: cfg.ChunkSize}

	pl := pipeline.New(store, pool,
		pipeline.Config{MaxChunksPerTick: cfg.MaxChunksPerTick, MaxRetries: cfg.MaxRetries},
		generate, []pipeline.Stage{soil, water, tree}, lightStage, meshStage,
	)

	w := &World{
		ID:             uuid.New(),
		Config:         cfg,
		Blocks:         ids,
		Registry:       reg,
		Store:          store,
		Light:          lightEngine,
		Mesher:         mesh,
		Pool:           pool,
		Pipeline:       pl,
		Hub:            router.NewHub(),
		Entities:       entity.NewRegistry(),
		Book:           entity.NewBookkeeping(),
		Transport:      transport.NewServer(1024),
		clients:        make(map[uuid.UUID]*clientState),
		bodies:         make(map[uuid.UUID]*physics.RigidBody),
		readyChunks:    make(map[voxel.Vec2]struct{}),
		pendingChanges: make(map[voxel.Vec2][]wire.VoxelChange),
	}

	if cfg.Saving {
		sd, err := persist.Open(cfg.SaveDir)
		if err != nil {
			return nil, fmt.Errorf("dispatcher: open save dir: %w", err)
		}
		w.Save = sd
	}

	pl.OnFailed = w.Hub.BroadcastUnload
	meshStage.OnRemeshed = w.broadcastUpdate

	w.Transport.OnConnect = w.onConnect
	w.Transport.OnDisconnect = w.onDisconnect

	if cfg.Preload {
		w.preloadOrigin()
	}

	return w, nil
}

// preloadOrigin pre-creates every chunk within PreloadRadius of the
// world origin so the pipeline starts generating them immediately at
// startup rather than waiting on a client's first PEER update, matching
// spec.md 6's preload config entry.
func (w *World) preloadOrigin() {
	radius := w.Config.PreloadRadius
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			coord := voxel.Vec2{X: dx, Z: dz}
			if _, err := w.Store.GetOrCreate(coord); err != nil {
				log.Printf("[world] preload %v: %v", coord, err)
			}
		}
	}
}

// broadcastUpdate sends an UPDATE packet for coord's pending voxel
// changes to every client whose router has already loaded that chunk,
// once the mesh stage finishes re-meshing the levels edit touched,
// implementing spec.md 6's UPDATE packet.
func (w *World) broadcastUpdate(coord voxel.Vec2, levels []int32) {
	w.mu.Lock()
	changes := w.pendingChanges[coord]
	delete(w.pendingChanges, coord)
	w.mu.Unlock()
	if len(changes) == 0 {
		return
	}

	payload := wire.EncodeUpdate(changes, map[voxel.Vec2][]int32{coord: levels})
	w.Hub.Each(func(id uuid.UUID, r *router.Router) {
		if r.IsLoaded(coord) {
			w.Transport.Send(id, wire.Packet{Type: wire.Update, Payload: payload})
		}
	})
}

// onConnect registers a new client's router, entity and physics body,
// implementing the "client disconnect atomically tears down router/
// entity/physics" contract's mirror image on connect.
func (w *World) onConnect(id uuid.UUID) {
	origin := voxel.Vec2{}
	w.Hub.Add(id, origin)

	spawn := mgl32.Vec3{0, float32(w.Config.MaxHeight), 0}
	e := w.Entities.SpawnWithID(id, "player")
	e.Transform = entity.Transform{Position: spawn}
	e.Metadata = entity.Metadata{Kind: entity.MetaKindPlayer, Health: 20, OnGround: false}

	body := physics.NewRigidBody(physics.AABB{Min: spawn, Max: spawn.Add(mgl32.Vec3{0.6, 1.8, 0.6})})

	w.mu.Lock()
	w.clients[id] = &clientState{center: origin, known: make(map[voxel.Vec2]struct{})}
	w.bodies[id] = body
	w.mu.Unlock()

	initCfg := wire.InitConfig{
		ChunkSize:         w.Config.ChunkSize,
		MaxHeight:         w.Config.MaxHeight,
		SubChunks:         w.Config.SubChunks,
		MaxLightLevel:     w.Config.MaxLightLevel,
		WaterLevel:        w.Config.WaterLevel,
		TickIntervalMicro: w.Config.TickInterval.Microseconds(),
		Seed:              w.Config.Seed,
	}
	payload := wire.EncodeInit(w.ID, initCfg, w.Registry.All())
	w.Transport.Send(id, wire.Packet{Type: wire.Init, Payload: payload})

	log.Printf("[world] client %s connected", id)
}

func (w *World) onDisconnect(id uuid.UUID) {
	w.Hub.Remove(id)
	w.Entities.Despawn(id)

	w.mu.Lock()
	delete(w.clients, id)
	delete(w.bodies, id)
	w.mu.Unlock()

	log.Printf("[world] client %s disconnected", id)
}
