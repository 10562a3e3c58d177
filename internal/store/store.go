// Package store keeps a history of analysis runs in SQLite
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/logicguard/internal/model"
	"github.com/ppiankov/logicguard/internal/pipeline"
)

// ErrNotFound is returned by Get for an unknown run ID
var ErrNotFound = errors.New("run not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    title TEXT,
    fingerprint TEXT NOT NULL,
    language TEXT,
    analyzed_at TEXT NOT NULL,
    total_issues INTEGER NOT NULL,
    critical_issues INTEGER NOT NULL,
    quality REAL NOT NULL,
    degraded TEXT,
    report TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_analyzed_at ON runs(analyzed_at);
`

// Run is one stored analysis
type Run struct {
	ID             string
	Source         string
	Title          string
	Fingerprint    string
	Language       model.Language
	AnalyzedAt     time.Time
	TotalIssues    int
	CriticalIssues int
	Quality        float64
	Degraded       []model.Detector
	Report         *model.AnalysisReport // Nil in List results
}

// NewRun builds a Run with a fresh ID from a pipeline result
func NewRun(source, title string, res *pipeline.Result) *Run {
	r := &Run{
		ID:             uuid.NewString(),
		Source:         source,
		Title:          title,
		TotalIssues:    res.Report.Summary.TotalIssues,
		CriticalIssues: res.Report.Summary.CriticalIssues,
		Quality:        res.Report.Summary.DocumentQualityScore,
		Degraded:       res.Degraded,
		Report:         res.Report,
		AnalyzedAt:     time.Now().UTC(),
	}
	if t, err := time.Parse(time.RFC3339, res.Report.Metadata.AnalyzedAt); err == nil {
		r.AnalyzedAt = t
	}
	if res.Doc != nil {
		r.Fingerprint = res.Doc.Fingerprint()
		r.Language = res.Doc.Language
	}
	return r
}

// Store is a SQLite-backed run history
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts run. An empty ID is filled in.
func (s *Store) Save(ctx context.Context, run *Run) error {
	if run.Report == nil {
		return errors.New("save run: report is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	report, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs(id, source, title, fingerprint, language, analyzed_at, total_issues, critical_issues, quality, degraded, report)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID,
		run.Source,
		run.Title,
		run.Fingerprint,
		string(run.Language),
		run.AnalyzedAt.UTC().Format(time.RFC3339),
		run.TotalIssues,
		run.CriticalIssues,
		run.Quality,
		joinDetectors(run.Degraded),
		string(report),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns the most recent runs first, without their reports.
// limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT id, source, title, fingerprint, language, analyzed_at, total_issues, critical_issues, quality, degraded
		FROM runs ORDER BY analyzed_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, _, err := scanRun(rows, false)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its report
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, title, fingerprint, language, analyzed_at, total_issues, critical_issues, quality, degraded, report
		 FROM runs WHERE id = ?`, id)

	run, report, err := scanRun(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	run.Report = &model.AnalysisReport{}
	if err := json.Unmarshal([]byte(report), run.Report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner, withReport bool) (*Run, string, error) {
	var (
		run        Run
		title      sql.NullString
		language   sql.NullString
		analyzedAt string
		degraded   sql.NullString
		report     string
	)
	dest := []any{
		&run.ID, &run.Source, &title, &run.Fingerprint, &language, &analyzedAt,
		&run.TotalIssues, &run.CriticalIssues, &run.Quality, &degraded,
	}
	if withReport {
		dest = append(dest, &report)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("scan run: %w", err)
	}

	run.Title = title.String
	run.Language = model.Language(language.String)
	run.Degraded = splitDetectors(degraded.String)
	t, err := time.Parse(time.RFC3339, analyzedAt)
	if err != nil {
		return nil, "", fmt.Errorf("parse analyzed_at %q: %w", analyzedAt, err)
	}
	run.AnalyzedAt = t
	return &run, report, nil
}

func joinDetectors(ds []model.Detector) string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = string(d)
	}
	return strings.Join(names, ",")
}

func splitDetectors(s string) []model.Detector {
	if s == "" {
		return nil
	}
	var out []model.Detector
	for _, name := range strings.Split(s, ",") {
		out = append(out, model.Detector(name))
	}
	return out
}
