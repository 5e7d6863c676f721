package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/core/area"
	"github.com/clarencejohnson126/angebotsagent/internal/core/lv"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
	"github.com/clarencejohnson126/angebotsagent/internal/ingest"
	"github.com/clarencejohnson126/angebotsagent/internal/llm"
	"github.com/clarencejohnson126/angebotsagent/internal/metrics"
	"github.com/clarencejohnson126/angebotsagent/internal/repository"
	"github.com/clarencejohnson126/angebotsagent/internal/textlayer"
)

// DocumentLoader is the part of textlayer.Loader the processor needs.
type DocumentLoader interface {
	Load(ctx context.Context, path string) (textlayer.Document, error)
}

// AreaOptions are the caller-visible knobs of an area take-off.
type AreaOptions struct {
	Style string
	Pages []int
}

// Outcome is what one processed document produced. Exactly one of Areas
// and LV is set, matching Kind.
type Outcome struct {
	DocumentID   uuid.UUID
	JobID        uuid.UUID
	Kind         constants.JobKind
	Deduplicated bool
	Areas        *entity.ExtractionResult
	LV           *entity.LVDocument
	Tender       *entity.TenderSummary
}

// Processor coordinates loading, ingest, extraction and persistence.
type Processor struct {
	logger      *zap.Logger
	loader      DocumentLoader
	ingestor    ingest.Ingestor
	docs        repository.DocumentRepository
	jobs        repository.ExtractJobRepository
	llm         llm.PositionExtractor // nil disables the LV fallback
	workers     int
	tenderPages int
	timeout     time.Duration
}

// ProcessorConfig bundles the processor dependencies.
type ProcessorConfig struct {
	Loader      DocumentLoader
	Ingestor    ingest.Ingestor
	Documents   repository.DocumentRepository
	Jobs        repository.ExtractJobRepository
	LLM         llm.PositionExtractor
	Workers     int
	TenderPages int
	Timeout     time.Duration // per document; 0 = none
}

func NewProcessor(cfg ProcessorConfig, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.TenderPages <= 0 {
		cfg.TenderPages = 5
	}
	return &Processor{
		logger:      logger,
		loader:      cfg.Loader,
		ingestor:    cfg.Ingestor,
		docs:        cfg.Documents,
		jobs:        cfg.Jobs,
		llm:         cfg.LLM,
		workers:     cfg.Workers,
		tenderPages: cfg.TenderPages,
		timeout:     cfg.Timeout,
	}
}

// ClassifyKind picks the job kind for a document of unknown type: anything
// carrying floor-plan area labels is a take-off, the rest is read as an LV.
func ClassifyKind(pages [][]string) constants.JobKind {
	d := area.DetectPages(pages)
	if d.Style != constants.StyleUnknown || d.Signals.NRF {
		return constants.JobKindAreas
	}
	return constants.JobKindLV
}

// ProcessAreas loads a floor plan, runs the area take-off and stores the job.
func (p *Processor) ProcessAreas(ctx context.Context, path string, opts AreaOptions) (*Outcome, error) {
	return p.process(ctx, path, constants.JobKindAreas, opts)
}

// ProcessLV loads an LV, parses its positions and stores the job.
func (p *Processor) ProcessLV(ctx context.Context, path string) (*Outcome, error) {
	return p.process(ctx, path, constants.JobKindLV, AreaOptions{})
}

// ProcessAuto classifies the document first; used by the inbox watcher.
func (p *Processor) ProcessAuto(ctx context.Context, path string) (*Outcome, error) {
	return p.process(ctx, path, "", AreaOptions{})
}

func (p *Processor) process(ctx context.Context, path string, kind constants.JobKind, opts AreaOptions) (*Outcome, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	ctx, rid := common.EnsureRequestID(ctx)
	log := p.logger.With(
		zap.String("request_id", rid),
		zap.String("path", filepath.Base(path)),
	)

	doc, err := p.loader.Load(ctx, path)
	if err != nil {
		log.Error("processor.load.failed", zap.Error(err))
		return nil, err
	}
	if kind == "" {
		kind = ClassifyKind(doc.Pages)
	}

	ing, err := p.ingestor.IngestPath(ctx, path)
	if err != nil {
		log.Error("processor.ingest.failed", zap.Error(err))
		return nil, err
	}
	docID, err := uuid.Parse(ing.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("ingest document id: %w", err)
	}
	ctx = common.WithDocumentID(ctx, ing.DocumentID)
	log = log.With(zap.String("document_id", ing.DocumentID), zap.String("kind", string(kind)))
	if err := p.docs.SetPageCount(ctx, docID, doc.PageCount()); err != nil {
		log.Warn("processor.page_count.failed", zap.Error(err))
	}

	job, err := p.jobs.Start(ctx, docID, kind, doc.FileType)
	if err != nil {
		log.Error("processor.job.start_failed", zap.Error(err))
		return nil, err
	}
	out := &Outcome{DocumentID: docID, JobID: job.ID, Kind: kind, Deduplicated: ing.Deduplicated}
	log = log.With(zap.Stringer("job_id", job.ID))

	timer := metrics.NewTimer()
	switch kind {
	case constants.JobKindAreas:
		err = p.runAreas(ctx, doc, opts, out, log)
	case constants.JobKindLV:
		err = p.runLV(ctx, doc, out, log)
	default:
		err = common.NewAppError("PROCESS_ERROR", "unknown job kind "+string(kind), common.ErrInvalidInput)
	}
	if err != nil {
		if ferr := p.jobs.FinishFailure(context.WithoutCancel(ctx), job.ID, err.Error()); ferr != nil {
			log.Error("processor.job.finish_failed", zap.Error(ferr))
		}
		log.Error("processor.extract.failed", zap.Error(err), zap.Duration("elapsed", timer.Duration()))
		return out, err
	}
	log.Info("processor.extract.ok", zap.Duration("elapsed", timer.Duration()))
	return out, nil
}

func (p *Processor) runAreas(ctx context.Context, doc textlayer.Document, opts AreaOptions, out *Outcome, log *zap.Logger) error {
	timer := metrics.NewTimer()
	res, err := area.Extract(doc.Pages, area.Options{
		Style:   opts.Style,
		Pages:   opts.Pages,
		Workers: p.workers,
		Logger:  log,
	})
	if err != nil {
		metrics.DocumentsProcessed.WithLabelValues("areas", string(constants.JobStatusFailed)).Inc()
		return areaError(err)
	}
	res.Warnings = mergeWarnings(doc.Warnings, res.Warnings)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.jobs.FinishAreas(ctx, out.JobID, res); err != nil {
		return err
	}
	metrics.RecordAreas(res, statusOf(res.Warnings), timer.Duration())
	out.Areas = &res
	log.Debug("processor.areas.done",
		zap.String("style", res.BlueprintStyle),
		zap.Int("rooms", res.RoomCount),
		zap.Float64("total_counted_m2", res.TotalCountedM2))
	return nil
}

func (p *Processor) runLV(ctx context.Context, doc textlayer.Document, out *Outcome, log *zap.Logger) error {
	timer := metrics.NewTimer()
	parsed := lv.ExtractPositions(doc.Pages)
	model := ""

	if len(parsed.Positions) == 0 && p.llm != nil && doc.PageCount() > 0 {
		ext, _, err := p.llm.ExtractPositions(ctx, llm.ExtractRequest{
			Pages:        doc.Pages,
			FilenameHint: filepath.Base(doc.Path),
		})
		metrics.RecordLLMCall(err)
		if err != nil {
			log.Warn("processor.lv.llm_failed", zap.Error(err))
			parsed.Warnings = append(parsed.Warnings, "LLM fallback failed: "+err.Error())
		} else {
			parsed = llm.ToDocument(ext, doc.Pages)
			model = p.llm.ModelName()
		}
	}
	parsed.Warnings = mergeWarnings(doc.Warnings, parsed.Warnings)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.jobs.FinishLV(ctx, out.JobID, parsed, model); err != nil {
		return err
	}
	metrics.RecordLV(parsed, statusOf(parsed.Warnings), timer.Duration())

	tender := lv.ExtractTenderSummary(doc.Pages, p.tenderPages)
	out.LV = &parsed
	out.Tender = &tender
	log.Debug("processor.lv.done",
		zap.Int("positions", len(parsed.Positions)),
		zap.String("quality", parsed.Summary.Quality),
		zap.String("model", model))
	return nil
}

// areaError maps the two hard engine failures onto invalid input.
func areaError(err error) error {
	if errors.Is(err, area.ErrNoPages) || errors.Is(err, area.ErrInvalidStyle) {
		return common.NewAppError("EXTRACT_ERROR", "area extract", fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
	}
	return fmt.Errorf("area extract: %w", err)
}

// mergeWarnings puts loader warnings first and never returns nil.
func mergeWarnings(load, extract []string) []string {
	out := make([]string, 0, len(load)+len(extract))
	out = append(out, load...)
	return append(out, extract...)
}

func statusOf(warnings []string) string {
	if len(warnings) > 0 {
		return string(constants.JobStatusPartial)
	}
	return string(constants.JobStatusOK)
}
