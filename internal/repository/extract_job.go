package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

type ExtractJobRepository interface {
	Start(ctx context.Context, documentID uuid.UUID, kind constants.JobKind, format string) (*entity.ExtractionJob, error)
	FinishAreas(ctx context.Context, jobID uuid.UUID, res entity.ExtractionResult) error
	FinishLV(ctx context.Context, jobID uuid.UUID, doc entity.LVDocument, modelName string) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	Get(ctx context.Context, jobID uuid.UUID) (*entity.ExtractionJob, error)
	LatestForDocument(ctx context.Context, documentID uuid.UUID, kind constants.JobKind) (*entity.ExtractionJob, error)
}

type extractJobRepo struct {
	db  *DB
	log *zap.Logger
}

func NewExtractJobRepository(db *DB, log *zap.Logger) ExtractJobRepository {
	return &extractJobRepo{db: db, log: log}
}

var jobColumns = []string{
	"id", "document_id", "kind", "format", "started_at", "finished_at", "status",
	"error_message", "blueprint_style", "method", "warning_count", "result_json", "model_name",
}

func (r *extractJobRepo) Start(ctx context.Context, documentID uuid.UUID, kind constants.JobKind, format string) (*entity.ExtractionJob, error) {
	status := string(constants.JobStatusRunning)
	job := &entity.ExtractionJob{
		ID:         uuid.New(),
		DocumentID: documentID,
		Kind:       string(kind),
		Format:     format,
		StartedAt:  time.Now().UTC(),
		Status:     &status,
	}
	err := r.db.exec(ctx, r.db.builder().Insert("extraction_jobs").
		Columns("id", "document_id", "kind", "format", "started_at", "status", "warning_count").
		Values(job.ID.String(), documentID.String(), job.Kind, format, job.StartedAt, status, 0))
	if err != nil {
		r.log.Error("extraction_job start failed", zap.Stringer("document_id", documentID), zap.Error(err))
		return nil, errors.Join(common.ErrDatabase, err)
	}
	r.log.Info("extraction_job started", zap.Stringer("job_id", job.ID), zap.String("kind", job.Kind))
	return job, nil
}

// FinishAreas stores the result and its rooms in one transaction.
// Status is PARTIAL when the result carries warnings.
func (r *extractJobRepo) FinishAreas(ctx context.Context, jobID uuid.UUID, res entity.ExtractionResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	status := constants.JobStatusOK
	if len(res.Warnings) > 0 {
		status = constants.JobStatusPartial
	}

	err = r.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.finish(ctx, tx, jobID, status, res.BlueprintStyle, res.ExtractionMethod, len(res.Warnings), payload, ""); err != nil {
			return err
		}
		return insertRooms(ctx, r.db, tx, jobID, res.Rooms)
	})
	if err != nil {
		r.log.Error("extraction_job finish(areas) failed", zap.Stringer("job_id", jobID), zap.Error(err))
		return errors.Join(common.ErrDatabase, err)
	}
	r.log.Info("extraction_job finished",
		zap.Stringer("job_id", jobID),
		zap.String("status", string(status)),
		zap.Int("rooms", res.RoomCount),
	)
	return nil
}

// FinishLV stores the LV result and its positions in one transaction.
func (r *extractJobRepo) FinishLV(ctx context.Context, jobID uuid.UUID, doc entity.LVDocument, modelName string) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	status := constants.JobStatusOK
	if len(doc.Warnings) > 0 {
		status = constants.JobStatusPartial
	}

	err = r.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.finish(ctx, tx, jobID, status, "", doc.Method, len(doc.Warnings), payload, modelName); err != nil {
			return err
		}
		return insertPositions(ctx, r.db, tx, jobID, doc.Positions)
	})
	if err != nil {
		r.log.Error("extraction_job finish(lv) failed", zap.Stringer("job_id", jobID), zap.Error(err))
		return errors.Join(common.ErrDatabase, err)
	}
	r.log.Info("extraction_job finished",
		zap.Stringer("job_id", jobID),
		zap.String("status", string(status)),
		zap.Int("positions", len(doc.Positions)),
	)
	return nil
}

func (r *extractJobRepo) finish(ctx context.Context, tx *sql.Tx, jobID uuid.UUID, status constants.JobStatus, style, method string, warnings int, payload []byte, model string) error {
	upd := r.db.builder().Update("extraction_jobs").
		Set("finished_at", time.Now().UTC()).
		Set("status", string(status)).
		Set("method", method).
		Set("warning_count", warnings).
		Set("result_json", string(payload)).
		Where(entsql.EQ("id", jobID.String()))
	if style != "" {
		upd.Set("blueprint_style", style)
	}
	if model != "" {
		upd.Set("model_name", model)
	}
	query, args := upd.Query()
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	err := r.db.exec(ctx, r.db.builder().Update("extraction_jobs").
		Set("finished_at", time.Now().UTC()).
		Set("status", string(constants.JobStatusFailed)).
		Set("error_message", message).
		Where(entsql.EQ("id", jobID.String())))
	if err != nil {
		r.log.Error("extraction_job finish(FAILED) failed", zap.Stringer("job_id", jobID), zap.Error(err))
		return errors.Join(common.ErrDatabase, err)
	}
	r.log.Warn("extraction_job finished (FAILED)", zap.Stringer("job_id", jobID), zap.String("error", message))
	return nil
}

func (r *extractJobRepo) Get(ctx context.Context, jobID uuid.UUID) (*entity.ExtractionJob, error) {
	b := r.db.builder()
	sel := b.Select(jobColumns...).From(b.Table("extraction_jobs")).Where(entsql.EQ("id", jobID.String()))
	return r.scanOne(ctx, sel)
}

func (r *extractJobRepo) LatestForDocument(ctx context.Context, documentID uuid.UUID, kind constants.JobKind) (*entity.ExtractionJob, error) {
	b := r.db.builder()
	sel := b.Select(jobColumns...).From(b.Table("extraction_jobs")).
		Where(entsql.And(entsql.EQ("document_id", documentID.String()), entsql.EQ("kind", string(kind)))).
		OrderBy(entsql.Desc("started_at")).
		Limit(1)
	return r.scanOne(ctx, sel)
}

func (r *extractJobRepo) scanOne(ctx context.Context, sel *entsql.Selector) (*entity.ExtractionJob, error) {
	query, args := sel.Query()
	var (
		job                                  entity.ExtractionJob
		id, docID                            string
		finished                             sql.NullTime
		status, errMsg, style, method, model sql.NullString
		result                               sql.NullString
	)
	err := r.db.SQL.QueryRowContext(ctx, query, args...).Scan(
		&id, &docID, &job.Kind, &job.Format, &job.StartedAt, &finished, &status,
		&errMsg, &style, &method, &job.WarningCount, &result, &model,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	if job.ID, err = uuid.Parse(id); err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	if job.DocumentID, err = uuid.Parse(docID); err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	if finished.Valid {
		job.FinishedAt = &finished.Time
	}
	job.Status = nullable(status)
	job.ErrorMessage = nullable(errMsg)
	job.BlueprintStyle = nullable(style)
	job.Method = nullable(method)
	job.ModelName = nullable(model)
	if result.Valid {
		job.ResultJSON = json.RawMessage(result.String)
	}
	return &job, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
