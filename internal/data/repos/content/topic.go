package content

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

type TopicRepo interface {
	Create(dbc dbctx.Context, row *types.Topic) error
	// Ensure returns the topic called name, creating it when missing.
	Ensure(dbc dbctx.Context, name string) (*types.Topic, error)
	List(dbc dbctx.Context) ([]*types.Topic, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Topic, error)
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

func (r *topicRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *topicRepo) Create(dbc dbctx.Context, row *types.Topic) error {
	if row == nil {
		return nil
	}
	return r.tx(dbc).Create(row).Error
}

func (r *topicRepo) Ensure(dbc dbctx.Context, name string) (*types.Topic, error) {
	row := &types.Topic{Name: name}
	err := r.tx(dbc).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	var out types.Topic
	if err := r.tx(dbc).Where("name = ?", name).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *topicRepo) List(dbc dbctx.Context) ([]*types.Topic, error) {
	var out []*types.Topic
	if err := r.tx(dbc).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Topic, error) {
	var out []*types.Topic
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
