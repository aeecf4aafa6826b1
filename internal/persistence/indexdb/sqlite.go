package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/persistence/log"
	"github.com/PiotrTrzpil/Settlers.ts-sub004/internal/persistence/snapshot"
)

// SQLiteIndex is a secondary read-model index of economy events and snapshot
// metadata. Writes go through a single background goroutine; when it falls
// behind, entries are dropped — the JSONL logs remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqEconomy reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	economy  log.EconomyEntry
	snapshot snapshotRow
}

type snapshotRow struct {
	Tick      uint64
	Path      string
	Buildings int
	Units     int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS economy_events (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			building INTEGER NOT NULL,
			material TEXT NOT NULL,
			kind TEXT NOT NULL,
			previous INTEGER NOT NULL,
			new_amount INTEGER NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_economy_building_tick ON economy_events(building, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_economy_material_tick ON economy_events(material, tick);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			buildings INTEGER NOT NULL,
			units INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) WriteEconomy(entry log.EconomyEntry) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqEconomy, economy: entry}:
	default:
	}
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Tick:      snap.Header.Tick,
		Path:      path,
		Buildings: len(snap.Buildings),
		Units:     len(snap.Units),
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
	}
}

func (s *SQLiteIndex) loop() {
	var seq int64
	var lastTick uint64
	for r := range s.ch {
		switch r.kind {
		case reqEconomy:
			if r.economy.Tick != lastTick {
				lastTick = r.economy.Tick
				seq = 0
			}
			seq++
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO economy_events
				 (tick, seq, building, material, kind, previous, new_amount)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.economy.Tick, seq, r.economy.Building, r.economy.Material,
				r.economy.Kind, r.economy.Previous, r.economy.New,
			)
		case reqSnapshot:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO snapshots (tick, path, buildings, units)
				 VALUES (?, ?, ?, ?)`,
				r.snapshot.Tick, r.snapshot.Path, r.snapshot.Buildings, r.snapshot.Units,
			)
		}
	}
}
