package repository

import (
	"context"
	"database/sql"
	"errors"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

// ResultRepository reads the rows written when a job finishes.
type ResultRepository interface {
	ListRooms(ctx context.Context, jobID uuid.UUID) ([]entity.ExtractedRoom, error)
	ListPositions(ctx context.Context, jobID uuid.UUID) ([]entity.LVPosition, error)
}

type resultRepo struct {
	db     *DB
	logger *zap.Logger
}

func NewResultRepository(db *DB, logger *zap.Logger) ResultRepository {
	return &resultRepo{db: db, logger: logger}
}

var roomColumns = []string{
	"job_id", "seq", "room_number", "room_name", "area_m2", "counted_m2", "factor",
	"page", "category", "extraction_pattern", "factor_source", "source_text",
}

var positionColumns = []string{
	"job_id", "seq", "position_number", "title", "quantity", "unit", "unit_price",
	"total_price", "marker", "page", "confidence", "source",
}

func insertRooms(ctx context.Context, db *DB, tx *sql.Tx, jobID uuid.UUID, rooms []entity.ExtractedRoom) error {
	if len(rooms) == 0 {
		return nil
	}
	ins := db.builder().Insert("rooms").Columns(roomColumns...)
	for i, r := range rooms {
		ins.Values(jobID.String(), i, r.RoomNumber, r.RoomName, r.AreaM2, r.CountedM2, r.Factor,
			r.Page, string(r.Category), r.ExtractionPattern, string(r.FactorSource), r.SourceText)
	}
	query, args := ins.Query()
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func insertPositions(ctx context.Context, db *DB, tx *sql.Tx, jobID uuid.UUID, positions []entity.LVPosition) error {
	if len(positions) == 0 {
		return nil
	}
	ins := db.builder().Insert("lv_positions").Columns(positionColumns...)
	for i, p := range positions {
		ins.Values(jobID.String(), i, p.PositionNumber, p.Title, p.Quantity, p.Unit, p.UnitPrice,
			p.TotalPrice, p.Marker, p.Page, p.Confidence, p.Source)
	}
	query, args := ins.Query()
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func (r *resultRepo) ListRooms(ctx context.Context, jobID uuid.UUID) ([]entity.ExtractedRoom, error) {
	b := r.db.builder()
	query, args := b.Select(roomColumns[2:]...).From(b.Table("rooms")).
		Where(entsql.EQ("job_id", jobID.String())).
		OrderBy("seq").
		Query()
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list rooms", zap.Stringer("job_id", jobID), zap.Error(err))
		return nil, errors.Join(common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.ExtractedRoom
	for rows.Next() {
		var (
			room           entity.ExtractedRoom
			cat, factorSrc string
		)
		if err := rows.Scan(&room.RoomNumber, &room.RoomName, &room.AreaM2, &room.CountedM2, &room.Factor,
			&room.Page, &cat, &room.ExtractionPattern, &factorSrc, &room.SourceText); err != nil {
			return nil, errors.Join(common.ErrDatabase, err)
		}
		room.Category = constants.RoomCategory(cat)
		room.FactorSource = entity.FactorSource(factorSrc)
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	return out, nil
}

func (r *resultRepo) ListPositions(ctx context.Context, jobID uuid.UUID) ([]entity.LVPosition, error) {
	b := r.db.builder()
	query, args := b.Select(positionColumns[2:]...).From(b.Table("lv_positions")).
		Where(entsql.EQ("job_id", jobID.String())).
		OrderBy("seq").
		Query()
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list lv positions", zap.Stringer("job_id", jobID), zap.Error(err))
		return nil, errors.Join(common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.LVPosition
	for rows.Next() {
		var (
			p                     entity.LVPosition
			qty, unitPrice, total sql.NullFloat64
			unit, marker          sql.NullString
		)
		if err := rows.Scan(&p.PositionNumber, &p.Title, &qty, &unit, &unitPrice,
			&total, &marker, &p.Page, &p.Confidence, &p.Source); err != nil {
			return nil, errors.Join(common.ErrDatabase, err)
		}
		p.Quantity = nullableFloat(qty)
		p.Unit = nullable(unit)
		p.UnitPrice = nullableFloat(unitPrice)
		p.TotalPrice = nullableFloat(total)
		p.Marker = nullable(marker)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	return out, nil
}

func nullableFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
