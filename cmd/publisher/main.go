package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/veonhoon/bible-reader-sub000/internal/config"
	"github.com/veonhoon/bible-reader-sub000/internal/database"
	"github.com/veonhoon/bible-reader-sub000/internal/docstore"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/extract"
	"github.com/veonhoon/bible-reader-sub000/internal/logger"
	"github.com/veonhoon/bible-reader-sub000/internal/publisher"
	"github.com/veonhoon/bible-reader-sub000/migrator/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.Environment)

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "schedule":
		run(cfg, func(ctx context.Context, p *publisher.Publisher) error { return handleSchedule(ctx, p, args) })
	case "content":
		run(cfg, func(ctx context.Context, p *publisher.Publisher) error { return handleContent(ctx, p, args) })
	case "extract":
		run(cfg, func(ctx context.Context, p *publisher.Publisher) error { return handleExtract(ctx, cfg, p, args) })
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  publisher <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  schedule   Publish the weekly delivery schedule")
	fmt.Println("  content    Publish a week of snippets from a JSON file")
	fmt.Println("  extract    Extract snippets from a teaching with AI, then publish them")
	fmt.Println("  help       Show this help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  publisher schedule -per-day 2 -days Mon,Wed,Fri -times 09:00,20:00")
	fmt.Println("  publisher content -week-id 2026-W42 -file snippets.json")
	fmt.Println("  publisher extract -week-id 2026-W42 -file teaching.txt -min 5 -max 10")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DOCSTORE_DRIVER, DOCSTORE_URL, DATABASE_PATH   Where documents are written")
	fmt.Println("  OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL  Snippet extraction")
}

func run(cfg *config.Config, fn func(ctx context.Context, p *publisher.Publisher) error) {
	log := logger.Component("publisher")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	docs, closeDocs, err := openDocuments(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer closeDocs()

	p := publisher.New(docs, publisher.Options{
		ScheduleCollection: cfg.ScheduleCollection,
		ScheduleDocumentID: cfg.ScheduleDocumentID,
		ContentCollection:  cfg.ContentCollection,
	})

	if err := fn(ctx, p); err != nil {
		closeDocs()
		log.Fatal(err)
	}
}

func openDocuments(ctx context.Context, cfg *config.Config) (contract.DocumentStore, func(), error) {
	if cfg.DocstoreDriver == "postgres" {
		pg, err := docstore.NewPostgres(ctx, cfg.DocstoreURL, cfg.DocstorePollInterval)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	if err := sqlite.Migrate(db.DB()); err != nil {
		db.Close()
		return nil, nil, err
	}

	return database.NewInstance(db, cfg.DocstorePollInterval).Document(), func() { db.Close() }, nil
}

func handleSchedule(ctx context.Context, p *publisher.Publisher, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	perDay := fs.Int("per-day", 1, "Notifications per active day")
	days := fs.String("days", "Mon,Tue,Wed,Thu,Fri,Sat,Sun", "Comma-separated active weekdays")
	times := fs.String("times", "09:00", "Comma-separated HH:MM delivery times")
	_ = fs.Parse(args)

	doc, err := p.PublishSchedule(ctx, *perDay, splitList(*days), splitList(*times))
	if err != nil {
		return err
	}

	fmt.Printf("Schedule published: %d per day on %s at %s\n", doc.PerDay, strings.Join(doc.Days, ","), strings.Join(doc.Times, ","))
	return nil
}

func handleContent(ctx context.Context, p *publisher.Publisher, args []string) error {
	fs := flag.NewFlagSet("content", flag.ExitOnError)
	weekID := fs.String("week-id", "", "Week identifier, e.g. 2026-W42")
	file := fs.String("file", "", "JSON file with the snippets")
	_ = fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *file, err)
	}

	doc, err := p.PublishContentJSON(ctx, *weekID, data)
	if err != nil {
		return err
	}

	fmt.Printf("Week %s published with %d snippets\n", doc.WeekID, len(doc.Snippets))
	return nil
}

func handleExtract(ctx context.Context, cfg *config.Config, p *publisher.Publisher, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	weekID := fs.String("week-id", "", "Week identifier, e.g. 2026-W42")
	file := fs.String("file", "", "Text file with the weekly teaching")
	minCount := fs.Int("min", 5, "Minimum number of snippets")
	maxCount := fs.Int("max", 10, "Maximum number of snippets")
	_ = fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("-file is required")
	}
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for extraction")
	}

	teaching, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *file, err)
	}

	extractor := extract.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)

	doc, err := p.PublishTeaching(ctx, extractor, *weekID, string(teaching), *minCount, *maxCount)
	if err != nil {
		return err
	}

	fmt.Printf("Week %s published with %d extracted snippets\n", doc.WeekID, len(doc.Snippets))
	for _, s := range doc.Snippets {
		fmt.Printf("  - %s: %s\n", s.ID, s.Title)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
