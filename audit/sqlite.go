package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Schema for the audit index table. SQLiteIndex.Init applies it.
const Schema = `
CREATE TABLE IF NOT EXISTS mutation_audits (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	url TEXT NOT NULL,
	seed INTEGER NOT NULL,
	plan_source TEXT NOT NULL,
	plan_duration_ms REAL NOT NULL,
	mutation_duration_ms REAL NOT NULL,
	cache_key TEXT NOT NULL,
	delta_bytes INTEGER NOT NULL,
	phases TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mutation_audits_project ON mutation_audits(project_id, created_at);
CREATE INDEX IF NOT EXISTS idx_mutation_audits_url ON mutation_audits(url);
`

// SQLiteIndex persists record summaries to SQLite asynchronously, making
// audit runs queryable by project/url/provenance. It does not store the
// HTML payloads; pair it with a FileSink for full replay material.
//
// Writes are buffered and batched; a full buffer drops records rather
// than applying backpressure to mutate calls.
type SQLiteIndex struct {
	db     *sql.DB
	ch     chan *Record
	done   chan struct{}
	logger *slog.Logger
	once   sync.Once
}

// NewSQLiteIndex creates an index backed by the given database connection
// and starts its flush loop. Call Init before first use and Close to
// drain on shutdown.
func NewSQLiteIndex(db *sql.DB, logger *slog.Logger) *SQLiteIndex {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SQLiteIndex{
		db:     db,
		ch:     make(chan *Record, 1024),
		done:   make(chan struct{}),
		logger: logger,
	}
	go s.flushLoop()
	return s
}

// Init creates the audit table if it does not exist.
func (s *SQLiteIndex) Init() error {
	_, err := s.db.Exec(Schema)
	return err
}

// Write implements Sink. Non-blocking: drops the record when the buffer
// is full.
func (s *SQLiteIndex) Write(_ context.Context, rec *Record) error {
	select {
	case s.ch <- rec:
	default:
		s.logger.Warn("audit: index buffer full, dropping record", "id", rec.ID)
	}
	return nil
}

// Close drains the buffer and stops the flush goroutine.
func (s *SQLiteIndex) Close() error {
	s.once.Do(func() {
		close(s.ch)
		<-s.done
	})
	return nil
}

func (s *SQLiteIndex) flushLoop() {
	defer close(s.done)

	batch := make([]*Record, 0, 64)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case rec, ok := <-s.ch:
			if !ok {
				s.flushBatch(batch)
				return
			}
			batch = append(batch, rec)
			if len(batch) >= 64 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *SQLiteIndex) flushBatch(batch []*Record) {
	if len(batch) == 0 {
		return
	}
	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error("audit: index begin failed", "error", err)
		return
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO mutation_audits (
			id, project_id, url, seed, plan_source,
			plan_duration_ms, mutation_duration_ms, cache_key,
			delta_bytes, phases, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		s.logger.Error("audit: index prepare failed", "error", err)
		return
	}
	for _, rec := range batch {
		_, err := stmt.Exec(
			rec.ID, rec.ProjectID, rec.URL, rec.Seed, rec.PlanSource,
			rec.PlanDurationMS, rec.MutationDurationMS, rec.CacheKey,
			rec.DeltaBytes, strings.Join(rec.PhasesEnabled, ","), rec.CreatedAt.Unix())
		if err != nil {
			s.logger.Error("audit: index insert failed", "id", rec.ID, "error", err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		s.logger.Error("audit: index commit failed", "error", err)
	}
}

// Summary is one indexed audit row.
type Summary struct {
	ID         string
	ProjectID  string
	URL        string
	Seed       int
	PlanSource string
	DeltaBytes int
	Phases     string
	CreatedAt  time.Time
}

// Recent returns the latest n summaries for a project, newest first.
func (s *SQLiteIndex) Recent(ctx context.Context, projectID string, n int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, url, seed, plan_source, delta_bytes, phases, created_at
		FROM mutation_audits WHERE project_id = ?
		ORDER BY created_at DESC LIMIT ?`, projectID, n)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var ts int64
		if err := rows.Scan(&sum.ID, &sum.ProjectID, &sum.URL, &sum.Seed,
			&sum.PlanSource, &sum.DeltaBytes, &sum.Phases, &ts); err != nil {
			return nil, err
		}
		sum.CreatedAt = time.Unix(ts, 0)
		out = append(out, sum)
	}
	return out, rows.Err()
}
