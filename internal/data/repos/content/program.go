package content

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

// ProgramFilter narrows authoring listings. Empty fields match everything.
type ProgramFilter struct {
	Status   types.ProgramStatus
	Language string
	Topic    string
}

// ErrUnknownCursor is returned by ListCatalog when After names a program that
// was never published.
var ErrUnknownCursor = errors.New("unknown catalog cursor")

// CatalogPage selects one page of the public catalog, newest published first.
type CatalogPage struct {
	Language string
	Topic    string
	// After is the id of the last program on the previous page.
	After *uuid.UUID
	Limit int
}

type ProgramRepo interface {
	Create(dbc dbctx.Context, row *types.Program) error
	ReplaceTopics(dbc dbctx.Context, programID uuid.UUID, topicIDs []uuid.UUID) error

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Program, error)
	GetWithTree(dbc dbctx.Context, id uuid.UUID) (*types.Program, error)
	List(dbc dbctx.Context, f ProgramFilter) ([]*types.Program, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// PublishIfNotPublished moves the program to published unless it already is.
	// published_at is only written when it was never set.
	PublishIfNotPublished(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error)

	GetCatalog(dbc dbctx.Context, id uuid.UUID) (*types.Program, error)
	ListCatalog(dbc dbctx.Context, page CatalogPage) ([]*types.Program, error)
}

type programRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgramRepo(db *gorm.DB, baseLog *logger.Logger) ProgramRepo {
	return &programRepo{db: db, log: baseLog.With("repo", "ProgramRepo")}
}

func (r *programRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *programRepo) Create(dbc dbctx.Context, row *types.Program) error {
	if row == nil {
		return nil
	}
	return r.tx(dbc).Omit(clause.Associations).Create(row).Error
}

func (r *programRepo) ReplaceTopics(dbc dbctx.Context, programID uuid.UUID, topicIDs []uuid.UUID) error {
	if programID == uuid.Nil {
		return nil
	}
	t := r.tx(dbc)
	if err := t.Where("program_id = ?", programID).Delete(&types.ProgramTopic{}).Error; err != nil {
		return err
	}
	if len(topicIDs) == 0 {
		return nil
	}
	rows := make([]*types.ProgramTopic, 0, len(topicIDs))
	seen := map[uuid.UUID]bool{}
	for _, id := range topicIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, &types.ProgramTopic{ProgramID: programID, TopicID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	return t.Create(&rows).Error
}

func (r *programRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Program, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Program
	err := r.tx(dbc).
		Preload("Topics").
		Preload("Assets").
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

func (r *programRepo) GetWithTree(dbc dbctx.Context, id uuid.UUID) (*types.Program, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Program
	err := r.tx(dbc).
		Preload("Topics").
		Preload("Assets").
		Preload("Terms", orderByTermNumber).
		Preload("Terms.Lessons", orderByLessonNumber).
		Preload("Terms.Lessons.Assets").
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

func (r *programRepo) List(dbc dbctx.Context, f ProgramFilter) ([]*types.Program, error) {
	q := r.tx(dbc).Preload("Topics").Preload("Assets")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Language != "" {
		q = q.Where("language_primary = ?", f.Language)
	}
	if f.Topic != "" {
		q = q.Where(hasTopicSQL, f.Topic)
	}
	var out []*types.Program
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *programRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return r.tx(dbc).
		Model(&types.Program{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *programRepo) PublishIfNotPublished(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	res := r.tx(dbc).
		Model(&types.Program{}).
		Where("id = ? AND status <> ?", id, types.ProgramPublished).
		Updates(map[string]interface{}{
			"status":       types.ProgramPublished,
			"published_at": gorm.Expr("COALESCE(published_at, ?)", at),
			"updated_at":   at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

const (
	hasTopicSQL = `EXISTS (SELECT 1 FROM program_topic pt JOIN topic tp ON tp.id = pt.topic_id
		WHERE pt.program_id = program.id AND tp.name = ?)`
	hasPublishedLessonSQL = `EXISTS (SELECT 1 FROM term tm JOIN lesson ls ON ls.term_id = tm.id
		WHERE tm.program_id = program.id AND ls.status = ?)`
)

func orderByTermNumber(db *gorm.DB) *gorm.DB {
	return db.Order("term_number ASC")
}

func orderByLessonNumber(db *gorm.DB) *gorm.DB {
	return db.Order("lesson_number ASC")
}

func publishedLessonsOnly(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", types.LessonPublished).Order("lesson_number ASC")
}

func (r *programRepo) catalogQuery(dbc dbctx.Context) *gorm.DB {
	return r.tx(dbc).
		Model(&types.Program{}).
		Preload("Topics").
		Preload("Assets").
		Preload("Terms", orderByTermNumber).
		Preload("Terms.Lessons", publishedLessonsOnly).
		Preload("Terms.Lessons.Assets").
		Where("program.status = ?", types.ProgramPublished).
		Where(hasPublishedLessonSQL, types.LessonPublished)
}

func (r *programRepo) GetCatalog(dbc dbctx.Context, id uuid.UUID) (*types.Program, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Program
	if err := r.catalogQuery(dbc).Where("program.id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *programRepo) ListCatalog(dbc dbctx.Context, page CatalogPage) ([]*types.Program, error) {
	q := r.catalogQuery(dbc)
	if page.Language != "" {
		q = q.Where("program.language_primary = ?", page.Language)
	}
	if page.Topic != "" {
		q = q.Where(hasTopicSQL, page.Topic)
	}
	if page.After != nil && *page.After != uuid.Nil {
		var anchor types.Program
		if err := r.tx(dbc).Select("id", "published_at").Where("id = ?", *page.After).Limit(1).Find(&anchor).Error; err != nil {
			return nil, err
		}
		if anchor.ID == uuid.Nil || anchor.PublishedAt == nil {
			return nil, ErrUnknownCursor
		}
		q = q.Where("(program.published_at < ? OR (program.published_at = ? AND program.id < ?))",
			*anchor.PublishedAt, *anchor.PublishedAt, anchor.ID)
	}
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	var out []*types.Program
	if err := q.Order("program.published_at DESC").Order("program.id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
