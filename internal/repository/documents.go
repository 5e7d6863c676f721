package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

type DocumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	GetByHash(ctx context.Context, hash []byte) (*entity.Document, error)
	Create(ctx context.Context, doc entity.Document) (*entity.Document, error)
	UpsertByHash(ctx context.Context, doc entity.Document) (*entity.Document, bool, error)
	SetPageCount(ctx context.Context, id uuid.UUID, pages int) error
}

type documentRepo struct {
	db     *DB
	logger *zap.Logger
}

func NewDocumentRepository(db *DB, logger *zap.Logger) DocumentRepository {
	return &documentRepo{db: db, logger: logger}
}

var documentColumns = []string{"id", "source_path", "content_hash", "filename", "file_ext", "file_size", "page_count", "uploaded_at"}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	return r.getOne(ctx, entsql.EQ("id", id.String()))
}

func (r *documentRepo) GetByHash(ctx context.Context, hash []byte) (*entity.Document, error) {
	return r.getOne(ctx, entsql.EQ("content_hash", hash))
}

func (r *documentRepo) getOne(ctx context.Context, p *entsql.Predicate) (*entity.Document, error) {
	b := r.db.builder()
	query, args := b.Select(documentColumns...).From(b.Table("documents")).Where(p).Query()

	var (
		d  entity.Document
		id string
	)
	err := r.db.SQL.QueryRowContext(ctx, query, args...).Scan(
		&id, &d.SourcePath, &d.ContentHash, &d.Filename, &d.FileExt, &d.FileSize, &d.PageCount, &d.UploadedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get document", zap.Error(err))
		return nil, errors.Join(common.ErrDatabase, err)
	}
	if d.ID, err = uuid.Parse(id); err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	return &d, nil
}

func (r *documentRepo) Create(ctx context.Context, doc entity.Document) (*entity.Document, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	err := r.db.exec(ctx, r.db.builder().Insert("documents").
		Columns(documentColumns...).
		Values(doc.ID.String(), doc.SourcePath, doc.ContentHash, doc.Filename, doc.FileExt, doc.FileSize, doc.PageCount, doc.UploadedAt))
	if err != nil {
		r.logger.Error("failed to create document",
			zap.String("source_path", doc.SourcePath),
			zap.String("filename", doc.Filename),
			zap.Error(err),
		)
		return nil, errors.Join(common.ErrDatabase, err)
	}
	return &doc, nil
}

// UpsertByHash returns the stored document with the same content hash, or
// creates one. The bool reports whether the document already existed.
func (r *documentRepo) UpsertByHash(ctx context.Context, doc entity.Document) (*entity.Document, bool, error) {
	existing, err := r.GetByHash(ctx, doc.ContentHash)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}
	created, err := r.Create(ctx, doc)
	if err != nil {
		return nil, false, err
	}
	return created, false, nil
}

func (r *documentRepo) SetPageCount(ctx context.Context, id uuid.UUID, pages int) error {
	err := r.db.exec(ctx, r.db.builder().Update("documents").
		Set("page_count", pages).
		Where(entsql.EQ("id", id.String())))
	if err != nil {
		return errors.Join(common.ErrDatabase, err)
	}
	return nil
}
