package server

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/internal/common"
)

// JobExporter renders a stored job as a workbook.
type JobExporter interface {
	ExportJobXLSX(ctx context.Context, jobID uuid.UUID) ([]byte, error)
}

func (s *TakeoffService) ExportJob(ctx context.Context, req *ExportJobRequest) (*ExportJobResponse, error) {
	jobID, err := parseJobID(req.JobID)
	if err != nil {
		return nil, err
	}

	xlsx, err := s.exporter.ExportJobXLSX(ctx, jobID)
	if err != nil {
		s.logger.Error("export.xlsx.failed", zap.Stringer("job_id", jobID), zap.Error(err))
		return nil, err
	}
	return &ExportJobResponse{Filename: "takeoff_" + jobID.String() + ".xlsx", XLSX: xlsx}, nil
}

func parseJobID(raw string) (uuid.UUID, error) {
	id := strings.TrimSpace(raw)
	v := common.NewValidator().Field("job_id", id, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return uuid.Nil, err
	}
	return uuid.MustParse(id), nil
}
