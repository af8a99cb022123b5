package content

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

type TermRepo interface {
	Create(dbc dbctx.Context, row *types.Term) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Term, error)
	ListByProgramID(dbc dbctx.Context, programID uuid.UUID) ([]*types.Term, error)
}

type termRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTermRepo(db *gorm.DB, baseLog *logger.Logger) TermRepo {
	return &termRepo{db: db, log: baseLog.With("repo", "TermRepo")}
}

func (r *termRepo) Create(dbc dbctx.Context, row *types.Term) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Omit(clause.Associations).Create(row).Error
}

func (r *termRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Term, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Term
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *termRepo) ListByProgramID(dbc dbctx.Context, programID uuid.UUID) ([]*types.Term, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Term
	if programID == uuid.Nil {
		return out, nil
	}
	err := t.WithContext(dbc.Ctx).
		Where("program_id = ?", programID).
		Order("term_number ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
