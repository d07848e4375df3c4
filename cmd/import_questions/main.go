package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quiz-ai-cache/internal/config"
	"quiz-ai-cache/internal/importer"
	"quiz-ai-cache/internal/logger"
	"quiz-ai-cache/internal/repository"
	"quiz-ai-cache/internal/service"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("import_questions", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: import_questions <questions.md> [flags]")
		flags.PrintDefaults()
	}
	flags.String("config", "", "path to config.yaml")
	flags.Bool("dry-run", false, "parse and report without writing to the store")
	flags.Int("batch-size", 0, "questions per upsert request (default 100)")
	flags.String("store", "", "store backend: rest, postgres or oracle")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}
	dryRun, _ := flags.GetBool("dry-run")

	cfg, err := config.LoadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if !dryRun {
		if err := cfg.ValidateStore(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()
	log := logger.Get()

	path := flags.Arg(0)
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Error("Failed to read question file", zap.String("path", path), zap.Error(err))
		return 1
	}

	questions, skipped := importer.NewParser(cfg.Import.Delimiter).Parse(string(raw))
	for _, s := range skipped {
		log.Warn("Skipped question block", zap.Int("block", s.Block), zap.String("question_id", s.ID), zap.String("reason", s.Reason))
	}
	multi := 0
	for _, q := range questions {
		if q.IsMultiselect {
			multi++
		}
	}
	fmt.Printf("Parsed %d questions (%d multi-select), skipped %d blocks\n", len(questions), multi, len(skipped))

	if dryRun || len(questions) == 0 {
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := repository.Open(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open store", zap.Error(err))
		return 1
	}
	defer repos.Close()

	res, err := service.NewImportService(repos.Questions, cfg.Import.BatchSize, log).Import(ctx, questions)
	fmt.Printf("Imported %d questions, %d failed\n", res.Imported, res.Failed)
	if len(res.FailedIDs) > 0 {
		fmt.Printf("Failed ids: %v\n", res.FailedIDs)
	}
	if err != nil {
		log.Error("Import interrupted", zap.Error(err))
		return 1
	}
	if res.Failed > 0 {
		return 1
	}
	return 0
}
