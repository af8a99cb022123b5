package services

import (
	"context"

	"github.com/google/uuid"

	contentrepo "github.com/VAshish07243/Chai-Shots/internal/data/repos/content"
	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/apierr"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

type CreateTermInput struct {
	TermNumber int    `json:"termNumber" binding:"required,min=1"`
	Title      string `json:"title"`
}

type TermService interface {
	Create(ctx context.Context, programID uuid.UUID, in CreateTermInput) (*content.Term, error)
}

type termService struct {
	log      *logger.Logger
	programs contentrepo.ProgramRepo
	terms    contentrepo.TermRepo
}

func NewTermService(log *logger.Logger, programs contentrepo.ProgramRepo, terms contentrepo.TermRepo) TermService {
	return &termService{log: log.With("service", "TermService"), programs: programs, terms: terms}
}

func (ts *termService) Create(ctx context.Context, programID uuid.UUID, in CreateTermInput) (*content.Term, error) {
	if in.TermNumber < 1 {
		return nil, apierr.Validation("termNumber must be positive")
	}
	dbc := dbctx.Context{Ctx: ctx}
	p, err := ts.programs.GetByID(dbc, programID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("program")
	}
	row := &content.Term{ProgramID: programID, TermNumber: in.TermNumber, Title: in.Title}
	if err := ts.terms.Create(dbc, row); err != nil {
		return nil, storeError(err)
	}
	return row, nil
}
