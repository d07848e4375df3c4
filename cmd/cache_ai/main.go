package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-ai-cache/internal/adapter/llm"
	"quiz-ai-cache/internal/config"
	"quiz-ai-cache/internal/domain"
	"quiz-ai-cache/internal/logger"
	"quiz-ai-cache/internal/metrics"
	"quiz-ai-cache/internal/prompt"
	"quiz-ai-cache/internal/repository"
	"quiz-ai-cache/internal/service"
	"quiz-ai-cache/internal/util"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `Usage: cache_ai <range> [flags]

Pre-generates theory and explanation content for the questions in range
and stores it in the ai cache table.

  range   "<start>-<end>" or a single question number

Examples:
  cache_ai 1-10
  cache_ai 5 --lang vi --type theory
  cache_ai 1-100 --workers 10 --force

Flags:
`

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("cache_ai", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	flags.String("config", "", "path to config.yaml")
	flags.StringP("lang", "l", "", "languages to generate, comma separated (vi,en); default all")
	flags.StringP("type", "t", "", "content type: theory, explanation or both; default both")
	flags.BoolP("force", "f", false, "regenerate even when content is cached")
	flags.IntP("workers", "w", 0, "number of parallel workers (default 5)")
	flags.String("profile", "", "prompt profile: aws or pmp")
	flags.String("provider", "", "llm provider: googleai, openai, huggingface or ollama")
	flags.String("model", "", "model name for the provider")
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

	start, end, err := service.ParseRange(flags.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	cfg, err := config.LoadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	runID := util.NewULID()
	log := logger.Get().With(zap.String("run_id", runID))

	langs, types, profile, err := runSelection(cfg)
	if err != nil {
		log.Error("Invalid run selection", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := repository.Open(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open store", zap.Error(err))
		return 1
	}
	defer repos.Close()

	keys := cfg.LLM.APIKeys
	if cfg.LLM.Provider == config.ProviderOllama && len(keys) == 0 {
		// ollama is keyless; one placeholder slot drives the retry loop
		keys = []string{"ollama"}
	}
	pool, err := llm.NewCredentialPool(keys)
	if err != nil {
		log.Error("Invalid credential pool", zap.Error(err))
		return 1
	}
	factory, err := llm.NewModelFactory(cfg.LLM)
	if err != nil {
		log.Error("Failed to set up llm provider", zap.Error(err))
		return 1
	}

	recorder := metrics.NewRecorder()
	client := llm.NewClient(pool, factory, llm.OptionsFromConfig(cfg.LLM), log, llm.WithObserver(recorder))
	generator := llm.NewContentGenerator(client, profile)

	questions, err := repos.Questions.ListQuestions(ctx)
	if err != nil {
		log.Error("Failed to list questions", zap.Error(err))
		return 1
	}
	matched := service.FilterRange(questions, start, end)
	items := service.EnumerateWorkItems(matched, start, end, langs, types, cfg.Batch.Force)
	if len(items) == 0 {
		fmt.Printf("No questions found in range %d-%d\n", start, end)
		return 0
	}

	service.WriteBanner(os.Stdout, service.RunInfo{
		RunID:       runID,
		Start:       start,
		End:         end,
		Languages:   langs,
		Types:       types,
		Force:       cfg.Batch.Force,
		Workers:     cfg.Batch.Workers,
		Credentials: pool.Len(),
		Provider:    cfg.LLM.Provider,
		Model:       llm.ModelName(cfg.LLM),
		Questions:   len(matched),
		Items:       len(items),
	})
	fmt.Println()

	builder := service.NewCacheBuilder(repos.Content, generator, cfg.Store.Timeout, log)
	executor := service.NewExecutor(builder, cfg.Batch.Workers, log,
		service.WithReporter(service.NewConsoleReporter(os.Stdout)),
		service.WithItemObserver(recorder),
	)

	began := time.Now()
	summary := executor.Run(ctx, items)
	log.Info("Run finished",
		zap.Int("success", summary.Success),
		zap.Int("cached", summary.Cached),
		zap.Int("save_failed", summary.SaveFailed),
		zap.Int("generation_failed", summary.GenerationFailed),
		zap.Int("not_run", summary.NotRun),
		zap.Duration("elapsed", time.Since(began)),
	)

	fmt.Println()
	service.WriteSummary(os.Stdout, summary)

	if cfg.Metrics.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := recorder.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, runID); err != nil {
			log.Warn("Failed to push metrics", zap.Error(err))
		}
	}

	if summary.NotRun > 0 {
		return 130
	}
	return 0
}

// runSelection resolves the languages, content types and prompt profile of a run.
func runSelection(cfg *config.Config) ([]domain.Language, []domain.ContentType, prompt.Profile, error) {
	langs := make([]domain.Language, 0, len(cfg.Batch.Languages))
	for _, code := range cfg.Batch.Languages {
		lang, err := domain.ParseLanguage(code)
		if err != nil {
			return nil, nil, "", err
		}
		langs = append(langs, lang)
	}
	if len(langs) == 0 {
		langs = domain.DefaultLanguages
	}

	types, err := domain.ParseContentTypes(cfg.Batch.Types)
	if err != nil {
		return nil, nil, "", err
	}

	profile, err := prompt.ParseProfile(cfg.Prompt.Profile)
	if err != nil {
		return nil, nil, "", err
	}
	return langs, types, profile, nil
}
