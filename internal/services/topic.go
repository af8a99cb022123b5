package services

import (
	"context"
	"strings"

	contentrepo "github.com/VAshish07243/Chai-Shots/internal/data/repos/content"
	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/apierr"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

type TopicService interface {
	List(ctx context.Context) ([]*content.Topic, error)
	Create(ctx context.Context, name string) (*content.Topic, error)
}

type topicService struct {
	log    *logger.Logger
	topics contentrepo.TopicRepo
}

func NewTopicService(log *logger.Logger, topics contentrepo.TopicRepo) TopicService {
	return &topicService{log: log.With("service", "TopicService"), topics: topics}
}

func (ts *topicService) List(ctx context.Context) ([]*content.Topic, error) {
	return ts.topics.List(dbctx.Context{Ctx: ctx})
}

func (ts *topicService) Create(ctx context.Context, name string) (*content.Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.Validation("topic name is required")
	}
	row := &content.Topic{Name: name}
	if err := ts.topics.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, storeError(err)
	}
	return row, nil
}
