package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/persistence/indexdb"
	persistlog "github.com/PiotrTrzpil/Settlers.ts-sub004/internal/persistence/log"
	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/persistence/snapshot"
	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/protocol"
	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/sim/catalogs"
	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/sim/tuning"
	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/sim/world"
	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/transport/observer"
)

type placeRequest struct {
	Type   string `json:"building_type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Player int    `json:"player"`

	resp chan placeResponse
}

type placeResponse struct {
	Building  uint32 `json:"building,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message,omitempty"`
}

type removeRequest struct {
	Building uint32 `json:"building"`

	resp chan placeResponse
}

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		mapWidth   = flag.Int("map_width", 256, "map width in tiles")
		mapHeight  = flag.Int("map_height", 256, "map height in tiles")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite economy index")
		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tun, err := tuning.Load(tp)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	snapDir := filepath.Join(*dataDir, "snapshots")
	w, err := openWorld(*snapPath, *loadLatest, snapDir, cats, tun, *mapWidth, *mapHeight, logger)
	if err != nil {
		logger.Fatalf("open world: %v", err)
	}

	econLog := persistlog.NewEconomyLogger(*dataDir)
	defer econLog.Close()

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
	}

	// Per-tick inventory change buffer, drained into the tick message and the
	// economy log after each step.
	var changes []world.InventoryChange
	w.Inventories().Subscribe(func(ev world.InventoryChange) {
		changes = append(changes, ev)
	})

	terrainDirty := false
	w.Terrain().Changed = func() { terrainDirty = true }

	welcome, _ := json.Marshal(protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		MapWidth:        w.Terrain().Width,
		MapHeight:       w.Terrain().Height,
		TickRateHz:      tun.TickRateHz,
		MaterialsDigest: cats.Materials.PaletteDigest,
		BuildingsDigest: cats.Buildings.Digest,
	})
	obs := observer.NewServer(welcome, logger)

	placeCh := make(chan placeRequest, 64)
	removeCh := make(chan removeRequest, 64)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/observer", obs.Handler())
	mux.HandleFunc("/v1/place", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req placeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(rw, placeResponse{ErrorCode: protocol.ErrBadRequest, Message: err.Error()})
			return
		}
		req.resp = make(chan placeResponse, 1)
		placeCh <- req
		writeJSON(rw, <-req.resp)
	})
	mux.HandleFunc("/v1/remove", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req removeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(rw, placeResponse{ErrorCode: protocol.ErrBadRequest, Message: err.Error()})
			return
		}
		req.resp = make(chan placeResponse, 1)
		removeCh <- req
		writeJSON(rw, <-req.resp)
	})

	httpSrv := &http.Server{Addr: *addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Printf("listening on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Duration(tun.TickDurationMs) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case req := <-placeCh:
				id, err := w.AddBuilding(req.Type, world.Tile{X: req.X, Y: req.Y}, world.Player(req.Player))
				req.resp <- placeResult(uint32(id), err)
			case req := <-removeCh:
				err := w.RemoveBuilding(world.BuildingID(req.Building))
				req.resp <- placeResult(req.Building, err)
			case <-ticker.C:
				w.Step()

				msg := buildTickMsg(w, changes, terrainDirty)
				if b, err := json.Marshal(msg); err == nil {
					obs.Broadcast(b)
				}
				for _, ev := range changes {
					entry := persistlog.EconomyEntry{
						Tick:     w.CurrentTick(),
						Building: uint32(ev.Building),
						Material: ev.Material,
						Kind:     string(ev.Kind),
						Previous: ev.Previous,
						New:      ev.New,
					}
					if err := econLog.WriteChange(entry); err != nil {
						logger.Printf("economy log: %v", err)
					}
					idx.WriteEconomy(entry)
				}
				changes = changes[:0]
				terrainDirty = false

				every := uint64(tun.SnapshotEveryTicks)
				if every > 0 && w.CurrentTick()%every == 0 {
					snap := w.ExportSnapshot()
					path, err := snapshot.Write(snapDir, snap)
					if err != nil {
						logger.Printf("write snapshot: %v", err)
					} else {
						idx.RecordSnapshot(path, snap)
					}
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("server: %v", err)
	}
}

func openWorld(snapPath string, loadLatest bool, snapDir string, cats *catalogs.Catalogs, tun tuning.Tuning, width, height int, logger *log.Logger) (*world.World, error) {
	p := strings.TrimSpace(snapPath)
	if p == "" && loadLatest {
		latest, err := snapshot.Latest(snapDir)
		if err != nil {
			return nil, err
		}
		p = latest
	}
	if p != "" {
		snap, err := snapshot.Read(p)
		if err != nil {
			return nil, err
		}
		logger.Printf("resuming from %s (tick %d)", p, snap.Header.Tick)
		return world.NewFromSnapshot(snap, cats, tun)
	}
	tc := world.NewTerrainContext(width, height)
	generateTerrain(tc)
	return world.New(cats, tun, tc), nil
}

// generateTerrain fills a fresh map with grassland and gentle height
// undulation so terrain leveling has something to flatten.
func generateTerrain(tc *world.TerrainContext) {
	for y := 0; y < tc.Height; y++ {
		for x := 0; x < tc.Width; x++ {
			i := y*tc.Width + x
			tc.GroundType[i] = world.GroundGrass
			tc.GroundHeight[i] = uint8(10 + (x+y)%5)
		}
	}
}

func buildTickMsg(w *world.World, changes []world.InventoryChange, terrainDirty bool) protocol.TickMsg {
	msg := protocol.TickMsg{
		Type:             protocol.TypeTick,
		ProtocolVersion:  protocol.Version,
		Tick:             w.CurrentTick(),
		TerritoryVersion: w.Territory().Version(),
		Units:            len(w.Units()),
	}
	for _, b := range w.Buildings() {
		bs := protocol.BuildingState{
			ID:     uint32(b.ID),
			Type:   b.Type,
			X:      b.Anchor.X,
			Y:      b.Anchor.Y,
			Player: int(b.Player),
		}
		if st := w.Construction().Get(b.ID); st != nil {
			bs.Phase = st.Phase.String()
			bs.Progress = st.Progress
		}
		msg.Buildings = append(msg.Buildings, bs)
	}
	for _, ev := range changes {
		msg.InventoryChanges = append(msg.InventoryChanges, protocol.InventoryChange{
			Building: uint32(ev.Building),
			Material: ev.Material,
			Kind:     string(ev.Kind),
			Previous: ev.Previous,
			New:      ev.New,
		})
	}
	if terrainDirty {
		msg.TerrainPatches = leveledPatches(w)
	}
	return msg
}

// leveledPatches reports the current ground values for every tile captured by
// an in-progress leveling, which is the only terrain the simulation mutates.
func leveledPatches(w *world.World) []protocol.TerrainPatch {
	tc := w.Terrain()
	var out []protocol.TerrainPatch
	for _, b := range w.Buildings() {
		st := w.Construction().Get(b.ID)
		if st == nil || st.Terrain == nil {
			continue
		}
		for _, t := range st.Terrain.Tiles {
			out = append(out, protocol.TerrainPatch{
				Index:      t.Index,
				GroundType: tc.GroundType[t.Index],
				Height:     tc.GroundHeight[t.Index],
			})
		}
	}
	return out
}

func placeResult(id uint32, err error) placeResponse {
	if err == nil {
		return placeResponse{Building: id}
	}
	code := protocol.ErrInternal
	switch {
	case errors.Is(err, world.ErrUnknownBuildingType):
		code = protocol.ErrUnknownType
	case errors.Is(err, world.ErrPlacementBlocked):
		code = protocol.ErrBlocked
	case errors.Is(err, world.ErrPlacementDenied):
		code = protocol.ErrTerritory
	case errors.Is(err, world.ErrNoBuilding):
		code = protocol.ErrBadRequest
	}
	return placeResponse{ErrorCode: code, Message: err.Error()}
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(v)
}
