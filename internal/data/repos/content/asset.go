package content

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

// AssetRepo stores program posters and lesson thumbnails. Assets are never
// updated in place; a replacement is a delete followed by a create.
type AssetRepo interface {
	CreateProgramAsset(dbc dbctx.Context, row *types.ProgramAsset) error
	DeleteProgramAsset(dbc dbctx.Context, programID, assetID uuid.UUID) (bool, error)

	CreateLessonAsset(dbc dbctx.Context, row *types.LessonAsset) error
	DeleteLessonAsset(dbc dbctx.Context, lessonID, assetID uuid.UUID) (bool, error)
	ListLessonAssets(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.LessonAsset, error)
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{db: db, log: baseLog.With("repo", "AssetRepo")}
}

func (r *assetRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *assetRepo) CreateProgramAsset(dbc dbctx.Context, row *types.ProgramAsset) error {
	if row == nil {
		return nil
	}
	return r.tx(dbc).Omit(clause.Associations).Create(row).Error
}

func (r *assetRepo) DeleteProgramAsset(dbc dbctx.Context, programID, assetID uuid.UUID) (bool, error) {
	if programID == uuid.Nil || assetID == uuid.Nil {
		return false, nil
	}
	res := r.tx(dbc).Where("id = ? AND program_id = ?", assetID, programID).Delete(&types.ProgramAsset{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *assetRepo) CreateLessonAsset(dbc dbctx.Context, row *types.LessonAsset) error {
	if row == nil {
		return nil
	}
	return r.tx(dbc).Omit(clause.Associations).Create(row).Error
}

func (r *assetRepo) DeleteLessonAsset(dbc dbctx.Context, lessonID, assetID uuid.UUID) (bool, error) {
	if lessonID == uuid.Nil || assetID == uuid.Nil {
		return false, nil
	}
	res := r.tx(dbc).Where("id = ? AND lesson_id = ?", assetID, lessonID).Delete(&types.LessonAsset{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *assetRepo) ListLessonAssets(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.LessonAsset, error) {
	var out []*types.LessonAsset
	if lessonID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).Where("lesson_id = ?", lessonID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
