// history.go persists run results into a per-output-dir SQLite history.
package evalx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const historyFile = "history.db"

// historyTime is RFC3339 with fixed-width nanoseconds. recorded_at is TEXT
// and compared lexicographically, so the fractional second must never trim
// trailing zeros the way RFC3339Nano does.
const historyTime = "2006-01-02T15:04:05.000000000Z07:00"

// RunRecord is one experiment (or grid candidate) outcome written to history.
type RunRecord struct {
	Dataset     string
	Extractor   string
	Mechanism   string
	Seed        int64
	Candidate   int // -1 for plain runs, candidate index for grid search
	Description string
	Aggregate   Aggregate
	Folds       []FoldMetrics
	Scorecard   Scorecard
}

// TrendEntry is a historical run loaded back from SQLite.
type TrendEntry struct {
	RecordedAt time.Time
	Dataset    string
	Candidate  int
	Average    float64
	Aggregate  Aggregate
}

// History wraps the on-disk SQLite run store.
type History struct {
	db *sql.DB
}

// OpenHistory opens (creating if needed) the history database under dir.
func OpenHistory(dir string) (*History, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, historyFile))
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure history schema: %w", err)
	}
	return &History{db: db}, nil
}

// Close releases database resources.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

func ensureSchema(db *sql.DB) error {
	const runs = `
CREATE TABLE IF NOT EXISTS runs(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at TEXT NOT NULL,
	dataset TEXT NOT NULL,
	extractor TEXT NOT NULL,
	mechanism TEXT NOT NULL,
	seed INTEGER NOT NULL,
	candidate INTEGER NOT NULL,
	description TEXT,
	net_accuracy REAL NOT NULL,
	rule_accuracy REAL NOT NULL,
	fidelity REAL NOT NULL,
	rule_count REAL NOT NULL,
	avg_terms REAL NOT NULL,
	score_average REAL NOT NULL
);`
	const folds = `
CREATE TABLE IF NOT EXISTS fold_metrics(
	run_id INTEGER NOT NULL,
	fold INTEGER NOT NULL,
	net_accuracy REAL NOT NULL,
	rule_accuracy REAL NOT NULL,
	fidelity REAL NOT NULL,
	rule_count INTEGER NOT NULL,
	avg_terms REAL NOT NULL,
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);`
	const checks = `
CREATE TABLE IF NOT EXISTS score_checks(
	run_id INTEGER NOT NULL,
	key TEXT NOT NULL,
	name TEXT NOT NULL,
	score REAL NOT NULL,
	status TEXT NOT NULL,
	summary TEXT,
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);`
	const index = `
CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs(recorded_at);`
	for _, stmt := range []string{runs, folds, checks, index} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Append stores one run record transactionally.
func (h *History) Append(ctx context.Context, rec RunRecord) error {
	if h == nil || h.db == nil {
		return errors.New("history is not open")
	}
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `INSERT INTO runs(
		recorded_at, dataset, extractor, mechanism, seed, candidate, description,
		net_accuracy, rule_accuracy, fidelity, rule_count, avg_terms, score_average)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(historyTime),
		rec.Dataset, rec.Extractor, rec.Mechanism, rec.Seed, rec.Candidate, rec.Description,
		rec.Aggregate.NetAccuracyMean, rec.Aggregate.RuleAccuracyMean, rec.Aggregate.FidelityMean,
		rec.Aggregate.RuleCountMean, rec.Aggregate.AvgTermsMean, rec.Scorecard.Average)
	if err != nil {
		return err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, fold := range rec.Folds {
		if _, err := tx.ExecContext(ctx, `INSERT INTO fold_metrics(
			run_id, fold, net_accuracy, rule_accuracy, fidelity, rule_count, avg_terms)
			VALUES(?, ?, ?, ?, ?, ?, ?)`,
			runID, fold.Fold, fold.NetAccuracy, fold.RuleAccuracy, fold.Fidelity, fold.RuleCount, fold.AvgTerms); err != nil {
			return err
		}
	}
	for _, check := range rec.Scorecard.Checks {
		if _, err := tx.ExecContext(ctx, `INSERT INTO score_checks(run_id, key, name, score, status, summary)
			VALUES(?, ?, ?, ?, ?, ?)`,
			runID, check.Key, check.Name, check.Score, string(check.Status), check.Summary); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadTrend returns runs recorded within the optional day window, newest
// first.
func (h *History) LoadTrend(ctx context.Context, days int) ([]TrendEntry, error) {
	if h == nil || h.db == nil {
		return nil, errors.New("history is not open")
	}
	query := `SELECT recorded_at, dataset, candidate, score_average,
		net_accuracy, rule_accuracy, fidelity, rule_count, avg_terms
		FROM runs ORDER BY recorded_at DESC`
	var rows *sql.Rows
	var err error
	if days > 0 {
		cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour).UTC().Format(historyTime)
		query = `SELECT recorded_at, dataset, candidate, score_average,
			net_accuracy, rule_accuracy, fidelity, rule_count, avg_terms
			FROM runs WHERE recorded_at >= ? ORDER BY recorded_at DESC`
		rows, err = h.db.QueryContext(ctx, query, cutoff)
	} else {
		rows, err = h.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var trend []TrendEntry
	for rows.Next() {
		var entry TrendEntry
		var ts string
		if err := rows.Scan(&ts, &entry.Dataset, &entry.Candidate, &entry.Average,
			&entry.Aggregate.NetAccuracyMean, &entry.Aggregate.RuleAccuracyMean,
			&entry.Aggregate.FidelityMean, &entry.Aggregate.RuleCountMean,
			&entry.Aggregate.AvgTermsMean); err != nil {
			return nil, err
		}
		entry.RecordedAt, _ = time.Parse(historyTime, ts)
		trend = append(trend, entry)
	}
	return trend, rows.Err()
}
