package server

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/internal/common"
)

// IngestDirectory registers every allowed file under root_path and runs the
// matching extraction on each. Per-file failures are reported in the result
// list; only a bad request fails the call.
func (s *TakeoffService) IngestDirectory(ctx context.Context, req *IngestDirectoryRequest) (*IngestDirectoryResponse, error) {
	root := strings.TrimSpace(req.RootPath)
	v := common.NewValidator().Field("root_path", root, common.Required)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	skipHidden := true
	if req.SkipHidden != nil {
		skipHidden = *req.SkipHidden
	}

	log := common.LoggerFromContext(ctx, s.logger)
	log.Info("starting directory ingest", zap.String("root", root), zap.Bool("skip_hidden", skipHidden))
	results, stats, err := s.ingestor.IngestDirectory(ctx, root, skipHidden)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("ingest directory: %v", err)
	}
	log.Info("directory ingest completed",
		zap.Uint32("scanned", stats.Scanned),
		zap.Uint32("matched", stats.Matched),
		zap.Uint32("succeeded", stats.Succeeded),
		zap.Uint32("deduplicated", stats.Deduplicated),
		zap.Uint32("failed", stats.Failed),
	)

	out := &IngestDirectoryResponse{Stats: stats, Results: make([]IngestedOutcome, 0, len(results))}
	for _, r := range results {
		item := IngestedOutcome{
			SourcePath:   r.SourcePath,
			DocumentID:   r.DocumentID,
			Deduplicated: r.Deduplicated,
			Error:        r.Err,
		}
		if r.Err == "" {
			res, pErr := s.processor.ProcessAuto(ctx, r.SourcePath)
			if res != nil {
				item.JobID = res.JobID.String()
				item.Kind = string(res.Kind)
			}
			if pErr != nil {
				log.Error("pipeline.failed", zap.String("path", r.SourcePath), zap.Error(pErr))
				item.Error = pErr.Error()
			}
		}
		out.Results = append(out.Results, item)
		if ctx.Err() != nil {
			break
		}
	}
	return out, nil
}
