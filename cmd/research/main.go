package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	research "github.com/Protocol-Lattice/research-agent"
	"github.com/Protocol-Lattice/research-agent/src/adk"
	adkmodules "github.com/Protocol-Lattice/research-agent/src/adk/modules"
	"github.com/Protocol-Lattice/research-agent/src/config"
	"github.com/Protocol-Lattice/research-agent/src/helpers"
	"github.com/Protocol-Lattice/research-agent/src/retrieval"
)

func main() {
	query := flag.String("query", "", "Research question to investigate (required)")
	configPath := flag.String("config", "", "Path to the YAML config (overrides RESEARCH_CONFIG)")
	collection := flag.String("collection", "", "Document collection to search")
	provider := flag.String("provider", "", "LLM provider: gemini, openai, anthropic, ollama or dummy")
	modelName := flag.String("model", "", "Model ID for every agent")
	temperature := flag.Float64("temperature", -1, "Sampling temperature for every agent, replacing per-agent config values")
	roleTemps := flag.String("agent-temperatures", "", "Per-agent temperatures, e.g. reviewer=0.2,synthesizer=0.6")
	roleK := flag.String("agent-k", "", "Per-agent retrieval depth, e.g. researcher=12,questioner=3")
	docs := flag.String("docs", "", "Comma separated directories to ingest when the collection is empty")
	output := flag.String("output", "", "Report file path")
	noSave := flag.Bool("no-save", false, "Do not write the report file")
	historyN := flag.Int("history", 0, "List the N most recent runs and exit")
	flag.Parse()

	if *configPath != "" {
		os.Setenv("RESEARCH_CONFIG", *configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	applyFlags(cfg, *collection, *provider, *modelName, *temperature, *output, *docs)

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts, err := adkmodules.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to configure kit: %v", err)
	}
	opts = append(opts,
		adk.WithLogger(logger),
		adk.WithTemperatures(helpers.ParseRoleFloats(*roleTemps)),
		adk.WithRetrievalDepth(helpers.ParseRoleInts(*roleK)),
		adk.WithObserver(func(ev research.Event) {
			if !ev.Done {
				fmt.Printf("Step %d: %s agent...\n", ev.Step, ev.Agent)
			}
		}),
	)
	kit, err := adk.New(ctx, opts...)
	if err != nil {
		log.Fatalf("failed to initialise kit: %v", err)
	}
	defer kit.Close(context.Background())

	if *historyN > 0 {
		if err := listHistory(ctx, kit, *historyN); err != nil {
			log.Fatalf("history: %v", err)
		}
		return
	}
	if strings.TrimSpace(*query) == "" {
		fmt.Fprintln(os.Stderr, "a research question is required: -query \"...\"")
		flag.Usage()
		os.Exit(2)
	}

	if err := seedCollection(ctx, kit, cfg, logger); err != nil {
		log.Fatalf("failed to ingest documents: %v", err)
	}

	sys, err := kit.BuildSystem(ctx)
	if err != nil {
		log.Fatalf("failed to build workflow: %v", err)
	}
	fmt.Printf("Agents: %s\n\n", helpers.AgentNames(sys.Agents()))

	rec := sys.Run(ctx, *query)
	fmt.Println()
	fmt.Println(research.Summarize(rec))

	if hist, err := kit.History(ctx); err != nil {
		logger.Warn("run history unavailable", "error", err)
	} else if hist != nil {
		if err := hist.Save(ctx, rec); err != nil {
			logger.Warn("failed to record run", "id", rec.ID, "error", err)
		}
	}

	if rec.Status != research.StatusSuccess {
		os.Exit(1)
	}
	if !*noSave {
		if err := research.SaveReport(rec, cfg.Output.ReportPath); err != nil {
			log.Fatalf("failed to save report: %v", err)
		}
		fmt.Printf("\nReport saved to %s\n", cfg.Output.ReportPath)
	}
}

func applyFlags(cfg *config.Config, collection, provider, model string, temperature float64, output, docs string) {
	if collection != "" {
		cfg.Retrieval.Collection = collection
	}
	if provider != "" {
		cfg.LLM.Provider = provider
	}
	if model != "" {
		cfg.LLM.Model = model
	}
	if temperature >= 0 {
		cfg.SetTemperature(temperature)
	}
	if output != "" {
		cfg.Output.ReportPath = output
	}
	if dirs := helpers.ParseCSVList(docs); len(dirs) > 0 {
		cfg.Ingest.Dirs = dirs
	}
}

// seedCollection ingests the configured directories when the collection has
// no chunks yet. Stores without an ingestion pipeline are left alone.
func seedCollection(ctx context.Context, kit *adk.AgentDevelopmentKit, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Ingest.Dirs) == 0 {
		return nil
	}
	bundle, err := kit.Retrieval(ctx)
	if err != nil {
		return err
	}
	p := bundle.Pipeline
	if p == nil {
		return nil
	}
	n, err := p.Store.Count(ctx, p.Collection)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("collection already populated", "collection", p.Collection, "chunks", n)
		return nil
	}

	var docs []retrieval.Document
	for _, dir := range cfg.Ingest.Dirs {
		loaded, err := retrieval.LoadDir(dir, cfg.Ingest.Extensions)
		if err != nil {
			return err
		}
		docs = append(docs, loaded...)
	}
	_, err = p.Ingest(ctx, docs, retrieval.IngestOptions{
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
		Workers:      cfg.Ingest.Workers,
	})
	return err
}

func listHistory(ctx context.Context, kit *adk.AgentDevelopmentKit, limit int) error {
	hist, err := kit.History(ctx)
	if err != nil {
		return err
	}
	if hist == nil {
		return fmt.Errorf("run history is disabled")
	}
	entries, err := hist.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %s  %-7s  %s", e.StartedAt.Format("2006-01-02 15:04"), e.ID, e.Status, e.Query)
		if e.Error != "" {
			line += "  (" + e.Error + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
