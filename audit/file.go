package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileSink writes records to one directory per project:
//
//	<root>/<project>/<id>_before.html
//	<root>/<project>/<id>_after.html
//	<root>/<project>/<id>_plan.json
//	<root>/<project>/records.jsonl     (append-only summary log)
//
// With markdown enabled it also renders <id>_before.md / <id>_after.md via
// html-to-markdown, for eyeballing that a mutation left the page's meaning
// intact.
type FileSink struct {
	root     string
	logger   *slog.Logger
	markdown bool

	mu sync.Mutex // serialises the jsonl append
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithMarkdown also renders before/after HTML to markdown files.
func WithMarkdown() FileSinkOption {
	return func(s *FileSink) { s.markdown = true }
}

// WithFileLogger sets the sink's logger. Defaults to slog.Default().
func WithFileLogger(l *slog.Logger) FileSinkOption {
	return func(s *FileSink) { s.logger = l }
}

// NewFileSink creates a directory-backed sink rooted at dir.
func NewFileSink(dir string, opts ...FileSinkOption) *FileSink {
	s := &FileSink{root: dir, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Write implements Sink. A partially written record (some files persisted,
// others failed) is preferable to none, so errors are collected, logged,
// and the first one returned.
func (s *FileSink) Write(ctx context.Context, rec *Record) error {
	dir := filepath.Join(s.root, rec.ProjectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("audit: create %s: %w", dir, err)
	}

	var firstErr error
	write := func(name string, data []byte) {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			s.logger.Error("audit: write failed", "file", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	write(rec.ID+"_before.html", []byte(rec.HTMLBefore))
	write(rec.ID+"_after.html", []byte(rec.HTMLAfter))
	if len(rec.Plan) > 0 {
		write(rec.ID+"_plan.json", rec.Plan)
	}

	if s.markdown {
		if md, err := renderMarkdown(rec.HTMLBefore); err == nil {
			write(rec.ID+"_before.md", []byte(md))
		}
		if md, err := renderMarkdown(rec.HTMLAfter); err == nil {
			write(rec.ID+"_after.md", []byte(md))
		}
	}

	if err := s.appendSummary(dir, rec); err != nil {
		s.logger.Error("audit: summary append failed", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *FileSink) appendSummary(dir string, rec *Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(filepath.Join(dir, "records.jsonl"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return nil
}
