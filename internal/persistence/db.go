// Package persistence stores garden state: a SQLite database for the
// long-running daemon, flat YAML snapshots, and named save slots.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/garden-sim/internal/catalog"
	"github.com/talgya/garden-sim/internal/engine"
)

// ErrNoState is returned by LoadState when nothing has been saved yet.
var ErrNoState = errors.New("no saved garden")

// Metadata keys in garden_meta.
const (
	metaRunID  = "run_id"
	metaMonth  = "month"
	metaSoilID = "soil_id"
	metaWidth  = "width"
	metaHeight = "height"
)

// DB wraps a SQLite connection for garden persistence.
type DB struct {
	conn *sqlx.DB
}

// LogEntry is one stored row of the per-plant step log.
type LogEntry struct {
	Month int `json:"month" db:"month"`
	engine.PlantSummary
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS plants (
		seq INTEGER PRIMARY KEY,
		type_id INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		age INTEGER NOT NULL,
		height REAL NOT NULL,
		radius REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS hazards (
		seq INTEGER PRIMARY KEY,
		x REAL NOT NULL,
		y REAL NOT NULL,
		radius REAL NOT NULL,
		months_left INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS step_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		month INTEGER NOT NULL,
		plant_id INTEGER NOT NULL,
		type_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		height REAL NOT NULL,
		radius REAL NOT NULL,
		overlaps INTEGER NOT NULL,
		collision REAL NOT NULL,
		sun REAL NOT NULL,
		soil REAL NOT NULL,
		delta REAL NOT NULL,
		dormant INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS soil_types (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		water_retention REAL NOT NULL,
		nutrient_level REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plant_types (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		texture TEXT NOT NULL DEFAULT '',
		max_height REAL NOT NULL,
		max_width REAL NOT NULL,
		root_depth REAL NOT NULL,
		canopy_radius REAL NOT NULL,
		sun_preference REAL NOT NULL,
		category INTEGER NOT NULL,
		base_growth_rate REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS growth_rules (
		plant_type_id INTEGER NOT NULL,
		soil_type_id INTEGER NOT NULL,
		multiplier REAL NOT NULL,
		PRIMARY KEY (plant_type_id, soil_type_id)
	);

	CREATE TABLE IF NOT EXISTS garden_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_step_log_month ON step_log(month);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveState writes the whole garden (full replace) in one transaction.
func (db *DB) SaveState(st engine.State) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM plants"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM hazards"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO plants
		(seq, type_id, x, y, age, height, radius)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range st.Plants {
		if _, err := stmt.Exec(i, p.TypeID, p.X, p.Y, p.Age, p.Height, p.Radius); err != nil {
			return fmt.Errorf("insert plant %d: %w", i, err)
		}
	}

	for i, h := range st.Hazards {
		_, err := tx.Exec(
			"INSERT INTO hazards (seq, x, y, radius, months_left) VALUES (?, ?, ?, ?, ?)",
			i, h.X, h.Y, h.Radius, h.MonthsLeft,
		)
		if err != nil {
			return fmt.Errorf("insert hazard %d: %w", i, err)
		}
	}

	meta := map[string]string{
		metaRunID:  st.RunID,
		metaMonth:  strconv.Itoa(st.Month),
		metaSoilID: strconv.Itoa(st.SoilID),
		metaWidth:  strconv.FormatFloat(st.Width, 'g', -1, 64),
		metaHeight: strconv.FormatFloat(st.Height, 'g', -1, 64),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO garden_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("garden state saved", "month", st.Month, "plants", len(st.Plants), "hazards", len(st.Hazards))
	return nil
}

// HasState reports whether a garden has been saved.
func (db *DB) HasState() bool {
	_, err := db.GetMeta(metaMonth)
	return err == nil
}

// LoadState reads the saved garden. It returns ErrNoState on a fresh database.
func (db *DB) LoadState() (engine.State, error) {
	var st engine.State

	monthStr, err := db.GetMeta(metaMonth)
	if errors.Is(err, sql.ErrNoRows) {
		return st, ErrNoState
	}
	if err != nil {
		return st, fmt.Errorf("load month: %w", err)
	}
	if st.Month, err = strconv.Atoi(monthStr); err != nil {
		return st, fmt.Errorf("parse month %q: %w", monthStr, err)
	}

	soilStr, err := db.GetMeta(metaSoilID)
	if err != nil {
		return st, fmt.Errorf("load soil: %w", err)
	}
	if st.SoilID, err = strconv.Atoi(soilStr); err != nil {
		return st, fmt.Errorf("parse soil %q: %w", soilStr, err)
	}
	if st.Width, err = db.metaFloat(metaWidth); err != nil {
		return st, err
	}
	if st.Height, err = db.metaFloat(metaHeight); err != nil {
		return st, err
	}
	st.RunID, _ = db.GetMeta(metaRunID)

	var plants []struct {
		TypeID int     `db:"type_id"`
		X      float64 `db:"x"`
		Y      float64 `db:"y"`
		Age    int     `db:"age"`
		Height float64 `db:"height"`
		Radius float64 `db:"radius"`
	}
	if err := db.conn.Select(&plants,
		"SELECT type_id, x, y, age, height, radius FROM plants ORDER BY seq"); err != nil {
		return st, fmt.Errorf("load plants: %w", err)
	}
	st.Plants = make([]engine.PlantState, 0, len(plants))
	for _, p := range plants {
		st.Plants = append(st.Plants, engine.PlantState{
			TypeID: p.TypeID, X: p.X, Y: p.Y, Age: p.Age, Height: p.Height, Radius: p.Radius,
		})
	}

	var hazards []struct {
		X          float64 `db:"x"`
		Y          float64 `db:"y"`
		Radius     float64 `db:"radius"`
		MonthsLeft int     `db:"months_left"`
	}
	if err := db.conn.Select(&hazards,
		"SELECT x, y, radius, months_left FROM hazards ORDER BY seq"); err != nil {
		return st, fmt.Errorf("load hazards: %w", err)
	}
	st.Hazards = make([]engine.HazardState, 0, len(hazards))
	for _, h := range hazards {
		if h.MonthsLeft <= 0 {
			h.MonthsLeft = engine.HazardLifetime
		}
		st.Hazards = append(st.Hazards, engine.HazardState{X: h.X, Y: h.Y, Radius: h.Radius, MonthsLeft: h.MonthsLeft})
	}

	return st, nil
}

func (db *DB) metaFloat(key string) (float64, error) {
	s, err := db.GetMeta(key)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", key, err)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, s, err)
	}
	return f, nil
}

// SaveMeta stores a key-value pair in garden metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO garden_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM garden_meta WHERE key = ?", key)
	return value, err
}

// SaveStepReport appends the per-plant lines of one step to the log.
func (db *DB) SaveStepReport(report engine.StepReport) error {
	if len(report.Plants) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range report.Plants {
		_, err := tx.Exec(`INSERT INTO step_log
			(month, plant_id, type_id, name, age, height, radius,
			 overlaps, collision, sun, soil, delta, dormant)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.Month, int64(p.ID), p.TypeID, p.Name, p.Age, p.Height, p.Radius,
			p.Overlaps, p.Collision, p.Sun, p.Soil, p.Delta, p.Dormant,
		)
		if err != nil {
			return fmt.Errorf("insert log for plant %d: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// RecentLog returns the most recent N step log lines, newest first.
func (db *DB) RecentLog(limit int) ([]LogEntry, error) {
	var entries []LogEntry
	err := db.conn.Select(&entries,
		`SELECT month, plant_id, type_id, name, age, height, radius,
			overlaps, collision, sun, soil, delta, dormant
		FROM step_log ORDER BY id DESC LIMIT ?`,
		limit,
	)
	return entries, err
}

// SaveCatalog replaces the stored catalog tables.
func (db *DB) SaveCatalog(cat *catalog.Catalog) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"soil_types", "plant_types", "growth_rules"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	for _, s := range cat.Soils {
		if _, err := tx.NamedExec(`INSERT INTO soil_types
			(id, name, water_retention, nutrient_level)
			VALUES (:id, :name, :water_retention, :nutrient_level)`, s); err != nil {
			return fmt.Errorf("insert soil %d: %w", s.ID, err)
		}
	}
	for _, p := range cat.Plants {
		if _, err := tx.NamedExec(`INSERT INTO plant_types
			(id, name, texture, max_height, max_width, root_depth, canopy_radius,
			 sun_preference, category, base_growth_rate)
			VALUES (:id, :name, :texture, :max_height, :max_width, :root_depth, :canopy_radius,
			 :sun_preference, :category, :base_growth_rate)`, p); err != nil {
			return fmt.Errorf("insert plant type %d: %w", p.ID, err)
		}
	}
	for _, r := range cat.Rules {
		if _, err := tx.NamedExec(`INSERT INTO growth_rules
			(plant_type_id, soil_type_id, multiplier)
			VALUES (:plant_type_id, :soil_type_id, :multiplier)`, r); err != nil {
			return fmt.Errorf("insert rule %d/%d: %w", r.PlantTypeID, r.SoilTypeID, err)
		}
	}

	return tx.Commit()
}

// LoadCatalog reads the catalog tables. It returns catalog.ErrEmpty when no
// soils or plant types are stored.
func (db *DB) LoadCatalog() (*catalog.Catalog, error) {
	var soils []catalog.SoilType
	if err := db.conn.Select(&soils,
		"SELECT id, name, water_retention, nutrient_level FROM soil_types ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load soils: %w", err)
	}

	var plants []catalog.PlantType
	if err := db.conn.Select(&plants,
		`SELECT id, name, texture, max_height, max_width, root_depth, canopy_radius,
			sun_preference, category, base_growth_rate
		FROM plant_types ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load plant types: %w", err)
	}

	var rules []catalog.GrowthRule
	if err := db.conn.Select(&rules,
		"SELECT plant_type_id, soil_type_id, multiplier FROM growth_rules"); err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	if len(soils) == 0 || len(plants) == 0 {
		return nil, catalog.ErrEmpty
	}
	return catalog.New(soils, plants, rules), nil
}
