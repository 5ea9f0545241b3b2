// Package history records scan runs in a local SQLite database.
//
// Only credential hashes are stored, never values, so the database can be
// kept without the protections the store directory needs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver registration

	"github.com/robottwo/aicred-sub000/internal/discovery"
)

// ErrNotFound is returned when a scan doesn't exist.
var ErrNotFound = errors.New("scan not found")

// tsFormat has fixed-width fractions so stored timestamps sort as text.
const tsFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Scan summarizes one discovery run.
type Scan struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Home      string        `json:"home"`
	Scanners  []string      `json:"scanners"`
	Files     int           `json:"files"`
	Findings  int           `json:"findings"`
	Errors    int           `json:"errors"`
}

// Finding is one credential seen during a scan, without its value.
type Finding struct {
	Seq        int    `json:"seq"`
	Provider   string `json:"provider"`
	ValueType  string `json:"value_type"`
	Confidence string `json:"confidence"`
	Source     string `json:"source"`
	Hash       string `json:"hash"`
}

// FromResult converts a discovery result into a record.
func FromResult(res *discovery.Result) (Scan, []Finding) {
	scan := Scan{
		StartedAt: res.StartedAt,
		Duration:  res.Duration,
		Home:      res.Home,
		Scanners:  res.Scanners,
		Files:     res.Files,
		Findings:  len(res.Keys),
		Errors:    len(res.Errors),
	}
	findings := make([]Finding, len(res.Keys))
	for i, k := range res.Keys {
		findings[i] = Finding{
			Seq:        i + 1,
			Provider:   k.Provider,
			ValueType:  k.ValueType.Key(),
			Confidence: k.Confidence.String(),
			Source:     k.Source,
			Hash:       k.Hash,
		}
	}
	return scan, findings
}

// Store provides scan history storage using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates a history database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			id         TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			duration   INTEGER NOT NULL,
			home       TEXT NOT NULL,
			scanners   TEXT NOT NULL,
			files      INTEGER NOT NULL,
			findings   INTEGER NOT NULL,
			errors     INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS findings (
			scan_id    TEXT NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
			seq        INTEGER NOT NULL,
			provider   TEXT NOT NULL,
			value_type TEXT NOT NULL,
			confidence TEXT NOT NULL,
			source     TEXT NOT NULL,
			hash       TEXT NOT NULL,
			PRIMARY KEY (scan_id, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_scans_started ON scans(started_at);
		CREATE INDEX IF NOT EXISTS idx_findings_hash ON findings(hash);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a scan and its findings in one transaction. A scan
// without an ID is given a new one.
func (s *Store) Record(ctx context.Context, scan Scan, findings []Finding) (Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scan.ID == "" {
		scan.ID = uuid.NewString()
	}
	if scan.StartedAt.IsZero() {
		scan.StartedAt = time.Now().UTC()
	}
	scan.Findings = len(findings)
	scanners, err := json.Marshal(scan.Scanners)
	if err != nil {
		return Scan{}, fmt.Errorf("marshaling scanners: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Scan{}, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scans (id, started_at, duration, home, scanners, files, findings, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, scan.ID, scan.StartedAt.UTC().Format(tsFormat), int64(scan.Duration),
		scan.Home, string(scanners), scan.Files, scan.Findings, scan.Errors)
	if err != nil {
		return Scan{}, fmt.Errorf("inserting scan: %w", err)
	}
	for _, f := range findings {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO findings (scan_id, seq, provider, value_type, confidence, source, hash)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, scan.ID, f.Seq, f.Provider, f.ValueType, f.Confidence, f.Source, f.Hash)
		if err != nil {
			return Scan{}, fmt.Errorf("inserting finding: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Scan{}, fmt.Errorf("committing scan: %w", err)
	}
	return scan, nil
}

// List returns up to limit scans, newest first. A limit of 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Scan, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration, home, scanners, files, findings, errors
		FROM scans ORDER BY started_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		sc, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, sc)
	}
	return scans, rows.Err()
}

// Get retrieves one scan by id.
func (s *Store) Get(ctx context.Context, id string) (Scan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, duration, home, scanners, files, findings, errors
		FROM scans WHERE id = ?
	`, id)
	sc, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Scan{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sc, err
}

// Findings returns the findings of one scan in discovery order.
func (s *Store) Findings(ctx context.Context, scanID string) ([]Finding, error) {
	if _, err := s.Get(ctx, scanID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, provider, value_type, confidence, source, hash
		FROM findings WHERE scan_id = ? ORDER BY seq
	`, scanID)
	if err != nil {
		return nil, fmt.Errorf("querying findings: %w", err)
	}
	defer rows.Close()

	var out []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.Seq, &f.Provider, &f.ValueType, &f.Confidence, &f.Source, &f.Hash); err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// FirstSeen returns when a credential hash was first recorded, or false if
// it never was.
func (s *Store) FirstSeen(ctx context.Context, hash string) (time.Time, bool, error) {
	var ts sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(s.started_at) FROM findings f JOIN scans s ON s.id = f.scan_id
		WHERE f.hash = ?
	`, hash).Scan(&ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("querying first seen: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339Nano, ts.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing timestamp: %w", err)
	}
	return t, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (Scan, error) {
	var sc Scan
	var ts, scanners string
	var dur int64
	err := row.Scan(&sc.ID, &ts, &dur, &sc.Home, &scanners, &sc.Files, &sc.Findings, &sc.Errors)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Scan{}, err
		}
		return Scan{}, fmt.Errorf("scanning row: %w", err)
	}
	sc.StartedAt, _ = time.Parse(time.RFC3339Nano, ts)
	sc.Duration = time.Duration(dur)
	_ = json.Unmarshal([]byte(scanners), &sc.Scanners)
	return sc, nil
}
