package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	adkmodules "github.com/Protocol-Lattice/research-agent/src/adk/modules"
	"github.com/Protocol-Lattice/research-agent/src/config"
	"github.com/Protocol-Lattice/research-agent/src/helpers"
	"github.com/Protocol-Lattice/research-agent/src/retrieval"
	"github.com/Protocol-Lattice/research-agent/src/retrieval/embed"
	"github.com/Protocol-Lattice/research-agent/src/retrieval/store"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config (overrides RESEARCH_CONFIG)")
	collection := flag.String("collection", "", "Collection to ingest into")
	exts := flag.String("ext", "", "Comma separated file extensions to load, e.g. .txt,.md")
	chunkSize := flag.Int("chunk-size", 0, "Chunk size in characters")
	chunkOverlap := flag.Int("chunk-overlap", -1, "Overlap between consecutive chunks (0 disables)")
	workers := flag.Int("workers", 0, "Parallel embedding workers")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] dir...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *configPath != "" {
		os.Setenv("RESEARCH_CONFIG", *configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *collection != "" {
		cfg.Retrieval.Collection = *collection
	}
	if list := helpers.ParseCSVList(*exts); len(list) > 0 {
		cfg.Ingest.Extensions = list
	}
	if *chunkSize > 0 {
		cfg.Ingest.ChunkSize = *chunkSize
	}
	if *chunkOverlap >= 0 {
		cfg.Ingest.ChunkOverlap = *chunkOverlap
	}
	if *workers > 0 {
		cfg.Ingest.Workers = *workers
	}
	dirs := flag.Args()
	if len(dirs) == 0 {
		dirs = cfg.Ingest.Dirs
	}
	if len(dirs) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	vs, err := adkmodules.OpenStore(ctx, cfg.Retrieval.Store)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	if c, ok := vs.(store.Closer); ok {
		defer c.Close(context.Background())
	}

	p, err := retrieval.NewPipeline(embed.New(ctx, cfg.Retrieval.EmbedProvider, cfg.Retrieval.EmbedModel), vs, nil, cfg.Retrieval.Collection)
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}
	p.Logger = logger

	var docs []retrieval.Document
	for _, dir := range dirs {
		loaded, err := retrieval.LoadDir(dir, cfg.Ingest.Extensions)
		if err != nil {
			log.Fatalf("failed to load %s: %v", dir, err)
		}
		logger.Info("loaded documents", "dir", dir, "documents", len(loaded))
		docs = append(docs, loaded...)
	}

	n, err := p.Ingest(ctx, docs, retrieval.IngestOptions{
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
		Workers:      cfg.Ingest.Workers,
	})
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
	total, err := vs.Count(ctx, p.Collection)
	if err != nil {
		log.Fatalf("count failed: %v", err)
	}
	fmt.Printf("Ingested %d chunks from %d documents into %q (%d chunks total)\n", n, len(docs), p.Collection, total)
}
