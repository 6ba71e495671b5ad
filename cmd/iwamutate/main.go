// Command iwamutate mutates a single HTML document and exits.
//
// Usage:
//
//	iwamutate -url https://example.com/ -seed 42 < page.html
//	iwamutate -in page.html -url https://example.com/ -seed 42 -plan
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/iwa/audit"
	"github.com/hazyhaar/iwa/mutate"
	"github.com/hazyhaar/iwa/palette"
)

func main() {
	inPath := flag.String("in", "", "input HTML file (default stdin)")
	rawURL := flag.String("url", "", "page URL the document was fetched from")
	seed := flag.Int("seed", 0, "mutation seed")
	projectID := flag.String("project", "default", "project identifier")
	paletteDir := flag.String("palette-dir", "", "directory of palette YAML files")
	auditDir := flag.String("audit-dir", "", "directory for audit artifacts (default: no audit)")
	planOnly := flag.Bool("plan", false, "print the mutation plan as JSON instead of the mutated HTML")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *inPath, *rawURL, *seed, *projectID, *paletteDir, *auditDir, *planOnly); err != nil {
		logger.Error("iwamutate: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, inPath, rawURL string, seed int, projectID, paletteDir, auditDir string, planOnly bool) error {
	if rawURL == "" {
		fmt.Fprintln(os.Stderr, "usage: iwamutate -url <url> -seed <n> [-in <file>] [-plan]")
		os.Exit(1)
	}

	opts := []mutate.Option{mutate.WithLogger(logger)}
	if paletteDir != "" {
		opts = append(opts, mutate.WithPaletteStore(palette.NewDirStore(paletteDir)))
	}
	if auditDir != "" {
		opts = append(opts, mutate.WithAuditSink(audit.NewFileSink(auditDir, audit.WithFileLogger(logger))))
	}
	engine := mutate.New(projectID, mutate.DefaultPhaseConfig(), opts...)

	if planOnly {
		plan := engine.PreviewPlan(rawURL, seed)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	var src io.Reader = os.Stdin
	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		src = f
	}
	htmlSrc, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	res, err := engine.Mutate(ctx, string(htmlSrc), rawURL, seed)
	if err != nil {
		return fmt.Errorf("mutate: %w", err)
	}
	if _, err := os.Stdout.WriteString(res.HTML); err != nil {
		return err
	}
	return nil
}
