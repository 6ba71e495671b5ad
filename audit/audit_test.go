package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/iwa/internal/dbopen"
)

func testRecord(id string) *Record {
	return &Record{
		ID:         id,
		ProjectID:  "shop",
		URL:        "https://shop.example/catalog",
		Seed:       42,
		HTMLBefore: "<html><body><h1>Before</h1></body></html>",
		HTMLAfter:  "<html><body><h1>After</h1></body></html>",
		Plan:       json.RawMessage(`{"d1":[]}`),
		PlanSource: "fallback",
		CacheKey:   "shop:42:https://shop.example/catalog",
		DeltaBytes: -1,
		PhasesEnabled: []string{"d1", "d3", "d4"},
		CreatedAt:  time.Unix(1700000000, 0),
	}
}

func TestFileSinkWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir)

	if err := s.Write(context.Background(), testRecord("aud_1")); err != nil {
		t.Fatalf("write: %v", err)
	}

	projDir := filepath.Join(dir, "shop")
	for _, name := range []string{"aud_1_before.html", "aud_1_after.html", "aud_1_plan.json", "records.jsonl"} {
		if _, err := os.Stat(filepath.Join(projDir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	before, _ := os.ReadFile(filepath.Join(projDir, "aud_1_before.html"))
	if !strings.Contains(string(before), "Before") {
		t.Error("before payload not persisted")
	}
}

func TestFileSinkSummaryExcludesPayloads(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir)
	if err := s.Write(context.Background(), testRecord("aud_1")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Write(context.Background(), testRecord("aud_2")); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "shop", "records.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines++
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line %d not json: %v", lines, err)
		}
		if _, ok := m["id"]; !ok {
			t.Error("summary line missing id")
		}
		if strings.Contains(sc.Text(), "Before") || strings.Contains(sc.Text(), "After") {
			t.Error("summary line leaked HTML payloads")
		}
	}
	if lines != 2 {
		t.Fatalf("summary lines = %d, want 2", lines)
	}
}

func TestFileSinkMarkdown(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir, WithMarkdown())
	if err := s.Write(context.Background(), testRecord("aud_1")); err != nil {
		t.Fatalf("write: %v", err)
	}

	md, err := os.ReadFile(filepath.Join(dir, "shop", "aud_1_after.md"))
	if err != nil {
		t.Fatalf("markdown not rendered: %v", err)
	}
	if !strings.Contains(string(md), "After") {
		t.Errorf("markdown content = %q", md)
	}
}

type failSink struct{}

func (failSink) Write(context.Context, *Record) error { return errors.New("boom") }

func TestMultiSinkReachesAllSinks(t *testing.T) {
	dir := t.TempDir()
	file := NewFileSink(dir)
	m := MultiSink{failSink{}, file}

	err := m.Write(context.Background(), testRecord("aud_1"))
	if err == nil || err.Error() != "boom" {
		t.Fatalf("err = %v, want first sink's error", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "shop", "aud_1_after.html")); statErr != nil {
		t.Error("later sink skipped after earlier failure")
	}
}

func TestSQLiteIndex(t *testing.T) {
	db := dbopen.OpenMemory(t)

	idx := NewSQLiteIndex(db, nil)
	if err := idx.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, id := range []string{"aud_1", "aud_2", "aud_3"} {
		if err := idx.Write(context.Background(), testRecord(id)); err != nil {
			t.Fatalf("write %s: %v", id, err)
		}
	}
	// Close drains the buffer, so reads below see every record.
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	sums, err := idx.Recent(context.Background(), "shop", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(sums) != 3 {
		t.Fatalf("summaries = %d, want 3", len(sums))
	}
	got := sums[0]
	if got.ProjectID != "shop" || got.Seed != 42 || got.PlanSource != "fallback" {
		t.Errorf("summary = %+v", got)
	}
	if got.Phases != "d1,d3,d4" {
		t.Errorf("phases = %q, want %q", got.Phases, "d1,d3,d4")
	}

	if more, _ := idx.Recent(context.Background(), "other", 10); len(more) != 0 {
		t.Errorf("foreign project rows = %d", len(more))
	}
}

func TestSQLiteIndexCloseIdempotent(t *testing.T) {
	db := dbopen.OpenMemory(t)

	idx := NewSQLiteIndex(db, nil)
	if err := idx.Init(); err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}
}
