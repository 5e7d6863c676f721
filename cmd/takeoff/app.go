package main

import (
	"context"

	"github.com/clarencejohnson126/angebotsagent/internal/core"
	"github.com/clarencejohnson126/angebotsagent/internal/export"
	"github.com/clarencejohnson126/angebotsagent/internal/ingest"
	"github.com/clarencejohnson126/angebotsagent/internal/llm"
	llmopenai "github.com/clarencejohnson126/angebotsagent/internal/llm/openai"
	"github.com/clarencejohnson126/angebotsagent/internal/repository"
	"github.com/clarencejohnson126/angebotsagent/internal/server"
	"github.com/clarencejohnson126/angebotsagent/internal/textlayer"
)

// app holds what the subcommands share: one database and the processor.
type app struct {
	db        *repository.DB
	jobs      repository.ExtractJobRepository
	results   repository.ResultRepository
	ingestor  *ingest.FSIngestor
	processor *core.Processor
	exporter  *export.Service
}

func openApp(ctx context.Context) (*app, error) {
	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	docs := repository.NewDocumentRepository(db, logger)
	jobs := repository.NewExtractJobRepository(db, logger)
	ing := ingest.NewFSIngestor(docs, logger)

	loader := textlayer.NewLoader(textlayer.Config{
		PDFBackend:   cfg.Extract.PDFBackend,
		PDFToTextBin: cfg.Extract.PDFToTextBin,
	}, nil, logger)

	var extractor llm.PositionExtractor
	if cfg.LLMEnabled() {
		extractor = llmopenai.NewClient(llmopenai.ConfigFrom(cfg.LLM), logger)
	}

	proc := core.NewProcessor(core.ProcessorConfig{
		Loader:      loader,
		Ingestor:    ing,
		Documents:   docs,
		Jobs:        jobs,
		LLM:         extractor,
		Workers:     cfg.Extract.Workers,
		TenderPages: cfg.Extract.TenderPages,
	}, logger)

	return &app{
		db:        db,
		jobs:      jobs,
		results:   repository.NewResultRepository(db, logger),
		ingestor:  ing,
		processor: proc,
		exporter:  export.NewService(jobs, logger),
	}, nil
}

func (a *app) Close() {
	server.CloseDB(a.db, logger)
}
