package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

type LessonRepo interface {
	Create(dbc dbctx.Context, row *types.Lesson) error

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
	GetWithRelations(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
	GetPublished(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)

	// LockByID blocks until it holds the row lock for id.
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
	// ClaimNextDue locks the oldest scheduled lesson whose publish_at <= now,
	// skipping rows another transaction already holds and ids in exclude.
	ClaimNextDue(dbc dbctx.Context, now time.Time, exclude []uuid.UUID) (*types.Lesson, error)

	// UpdateStatusIf applies updates only while the row is still in expected status.
	UpdateStatusIf(dbc dbctx.Context, id uuid.UUID, expected types.LessonStatus, updates map[string]interface{}) (bool, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	ListScheduled(dbc dbctx.Context, limit int) ([]*types.Lesson, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *lessonRepo) Create(dbc dbctx.Context, row *types.Lesson) error {
	if row == nil {
		return nil
	}
	return r.tx(dbc).Omit(clause.Associations).Create(row).Error
}

func (r *lessonRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Lesson
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *lessonRepo) GetWithRelations(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Lesson
	err := r.tx(dbc).
		Preload("Assets").
		Preload("Term").
		Preload("Term.Program").
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *lessonRepo) GetPublished(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Lesson
	err := r.tx(dbc).
		Preload("Assets").
		Preload("Term").
		Preload("Term.Program").
		Preload("Term.Program.Assets").
		Where("id = ? AND status = ?", id, types.LessonPublished).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *lessonRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Lesson
	err := r.tx(dbc).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *lessonRepo) ClaimNextDue(dbc dbctx.Context, now time.Time, exclude []uuid.UUID) (*types.Lesson, error) {
	q := r.tx(dbc).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND publish_at IS NOT NULL AND publish_at <= ?", types.LessonScheduled, now)
	// NOT IN with an empty list matches nothing, so only add it when needed.
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	var row types.Lesson
	if err := q.Order("publish_at ASC").Order("id ASC").Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *lessonRepo) UpdateStatusIf(dbc dbctx.Context, id uuid.UUID, expected types.LessonStatus, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := r.tx(dbc).
		Model(&types.Lesson{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *lessonRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return r.tx(dbc).
		Model(&types.Lesson{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *lessonRepo) ListScheduled(dbc dbctx.Context, limit int) ([]*types.Lesson, error) {
	var out []*types.Lesson
	q := r.tx(dbc).
		Preload("Assets").
		Preload("Term").
		Where("status = ?", types.LessonScheduled).
		Order("publish_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
