// Package manifest records bake runs and the fate of every variant in a
// SQLite database.
package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	duration   INTEGER NOT NULL,
	packs      TEXT NOT NULL,
	linewidth  INTEGER NOT NULL,
	total      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS variants (
	run_id    TEXT NOT NULL REFERENCES runs(id),
	id        INTEGER NOT NULL,
	namespace TEXT NOT NULL,
	block     TEXT NOT NULL,
	selector  TEXT NOT NULL,
	model     TEXT NOT NULL,
	x         INTEGER NOT NULL,
	y         INTEGER NOT NULL,
	uvlock    INTEGER NOT NULL,
	status    TEXT NOT NULL,
	color     TEXT NOT NULL,
	alpha     INTEGER NOT NULL,
	weight    INTEGER NOT NULL,
	error     TEXT NOT NULL,
	PRIMARY KEY (run_id, id)
);`

type Run struct {
	ID        string
	Started   time.Time
	Duration  time.Duration
	Packs     []string
	LineWidth int
	Total     int
}

// Variant is one row of the variants table.
type Variant struct {
	ID        int
	Namespace string
	Block     string
	Selector  string
	Model     string
	X, Y      int
	UVLock    bool
	Status    string
	Color     color.NRGBA
	Weight    uint8
	Error     string
}

type Manifest struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Manifest, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("manifest schema: %w", err)
	}
	return &Manifest{db: db}, nil
}

func (m *Manifest) Close() error {
	return m.db.Close()
}

// hex encodes the color channels; alpha is stored separately.
func hex(c color.NRGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

func parseHex(s string, alpha uint8) (color.NRGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// Record stores a run and its variants in one transaction.
func (m *Manifest) Record(ctx context.Context, run Run, variants []Variant) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, duration, packs, linewidth, total) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Started.UnixMilli(), run.Duration.Milliseconds(), strings.Join(run.Packs, "\n"), run.LineWidth, run.Total)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO variants
		(run_id, id, namespace, block, selector, model, x, y, uvlock, status, color, alpha, weight, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range variants {
		_, err = stmt.ExecContext(ctx, run.ID, v.ID, v.Namespace, v.Block, v.Selector, v.Model,
			v.X, v.Y, v.UVLock, v.Status, hex(v.Color), v.Color.A, v.Weight, v.Error)
		if err != nil {
			return fmt.Errorf("insert variant %d: %w", v.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	log.WithFields(log.Fields{"run": run.ID, "variants": len(variants)}).Debug("manifest recorded")
	return nil
}

// Runs lists recorded runs, newest first.
func (m *Manifest) Runs(ctx context.Context) ([]Run, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, started_at, duration, packs, linewidth, total FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r        Run
			started  int64
			duration int64
			packs    string
		)
		if err := rows.Scan(&r.ID, &started, &duration, &packs, &r.LineWidth, &r.Total); err != nil {
			return nil, err
		}
		r.Started = time.UnixMilli(started)
		r.Duration = time.Duration(duration) * time.Millisecond
		if packs != "" {
			r.Packs = strings.Split(packs, "\n")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Variants returns the variants of a run ordered by id. A non-empty status
// filters on it.
func (m *Manifest) Variants(ctx context.Context, runID, status string) ([]Variant, error) {
	query := `SELECT id, namespace, block, selector, model, x, y, uvlock, status, color, alpha, weight, error
		FROM variants WHERE run_id = ?`
	args := []any{runID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Variant
	for rows.Next() {
		var (
			v     Variant
			hexed string
			alpha uint8
		)
		err := rows.Scan(&v.ID, &v.Namespace, &v.Block, &v.Selector, &v.Model, &v.X, &v.Y,
			&v.UVLock, &v.Status, &hexed, &alpha, &v.Weight, &v.Error)
		if err != nil {
			return nil, err
		}
		if v.Color, err = parseHex(hexed, alpha); err != nil {
			return nil, fmt.Errorf("variant %d: %w", v.ID, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
