package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/VAshish07243/Chai-Shots/internal/data/aggregates"
	contentrepo "github.com/VAshish07243/Chai-Shots/internal/data/repos/content"
	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/apierr"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
	"github.com/VAshish07243/Chai-Shots/internal/realtime"
)

type CreateProgramInput struct {
	Title              string      `json:"title" binding:"required"`
	Description        string      `json:"description"`
	LanguagePrimary    string      `json:"languagePrimary" binding:"required"`
	LanguagesAvailable []string    `json:"languagesAvailable" binding:"required"`
	TopicIDs           []uuid.UUID `json:"topicIds"`
}

// UpdateProgramInput changes only the fields that are set.
type UpdateProgramInput struct {
	Title              *string                `json:"title"`
	Description        *string                `json:"description"`
	LanguagePrimary    *string                `json:"languagePrimary"`
	LanguagesAvailable []string               `json:"languagesAvailable"`
	TopicIDs           []uuid.UUID            `json:"topicIds"`
	Status             *content.ProgramStatus `json:"status"`
}

type AssetInput struct {
	Language  string               `json:"language" binding:"required"`
	Variant   content.AssetVariant `json:"variant" binding:"required"`
	AssetType content.AssetType    `json:"assetType"`
	URL       string               `json:"url" binding:"required"`
}

type ProgramService interface {
	List(ctx context.Context, f contentrepo.ProgramFilter) ([]*content.Program, error)
	Get(ctx context.Context, id uuid.UUID) (*content.Program, error)
	Create(ctx context.Context, in CreateProgramInput) (*content.Program, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateProgramInput) (*content.Program, error)
	AddAsset(ctx context.Context, programID uuid.UUID, in AssetInput) (*content.ProgramAsset, error)
	DeleteAsset(ctx context.Context, programID, assetID uuid.UUID) error
}

type programService struct {
	log      *logger.Logger
	runner   aggregates.TxRunner
	programs contentrepo.ProgramRepo
	assets   contentrepo.AssetRepo
	events   EventPublisher
	now      func() time.Time
}

func NewProgramService(log *logger.Logger, runner aggregates.TxRunner, programs contentrepo.ProgramRepo, assets contentrepo.AssetRepo, events EventPublisher) ProgramService {
	return &programService{
		log:      log.With("service", "ProgramService"),
		runner:   runner,
		programs: programs,
		assets:   assets,
		events:   eventsOrNop(events),
		now:      time.Now,
	}
}

func (ps *programService) List(ctx context.Context, f contentrepo.ProgramFilter) ([]*content.Program, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apierr.Validation("unknown program status %q", f.Status)
	}
	return ps.programs.List(dbctx.Context{Ctx: ctx}, f)
}

func (ps *programService) Get(ctx context.Context, id uuid.UUID) (*content.Program, error) {
	p, err := ps.programs.GetWithTree(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("program")
	}
	return p, nil
}

func (ps *programService) Create(ctx context.Context, in CreateProgramInput) (*content.Program, error) {
	if err := validateLanguages(in.LanguagePrimary, in.LanguagesAvailable, "Primary language must be in available languages"); err != nil {
		return nil, err
	}
	row := &content.Program{
		Title:              in.Title,
		Description:        in.Description,
		LanguagePrimary:    in.LanguagePrimary,
		LanguagesAvailable: in.LanguagesAvailable,
		Status:             content.ProgramDraft,
	}
	var out *content.Program
	err := ps.runner.InTx(ctx, func(dbc dbctx.Context) error {
		if err := ps.programs.Create(dbc, row); err != nil {
			return err
		}
		if err := ps.programs.ReplaceTopics(dbc, row.ID, in.TopicIDs); err != nil {
			return err
		}
		var err error
		out, err = ps.programs.GetByID(dbc, row.ID)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}
	ps.log.Info("program created", "program_id", row.ID)
	return out, nil
}

func (ps *programService) Update(ctx context.Context, id uuid.UUID, in UpdateProgramInput) (*content.Program, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, apierr.Validation("unknown program status %q", *in.Status)
	}
	now := ps.now().UTC()
	var (
		out       *content.Program
		published bool
	)
	err := ps.runner.InTx(ctx, func(dbc dbctx.Context) error {
		current, err := ps.programs.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if current == nil {
			return apierr.NotFound("program")
		}

		primary := current.LanguagePrimary
		if in.LanguagePrimary != nil {
			primary = *in.LanguagePrimary
		}
		available := []string(current.LanguagesAvailable)
		if in.LanguagesAvailable != nil {
			available = in.LanguagesAvailable
		}
		if in.LanguagePrimary != nil || in.LanguagesAvailable != nil {
			if err := validateLanguages(primary, available, "Primary language must be in available languages"); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.LanguagePrimary != nil {
			updates["language_primary"] = primary
		}
		if in.LanguagesAvailable != nil {
			updates["languages_available"] = datatypes.JSONSlice[string](available)
		}
		if in.Status != nil && *in.Status != content.ProgramPublished {
			updates["status"] = *in.Status
		}
		if len(updates) > 0 {
			updates["updated_at"] = now
			if err := ps.programs.UpdateFields(dbc, id, updates); err != nil {
				return err
			}
		}
		if in.Status != nil && *in.Status == content.ProgramPublished {
			if published, err = ps.programs.PublishIfNotPublished(dbc, id, now); err != nil {
				return err
			}
		}
		if in.TopicIDs != nil {
			if err := ps.programs.ReplaceTopics(dbc, id, in.TopicIDs); err != nil {
				return err
			}
		}
		out, err = ps.programs.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}
	if published {
		emit(ctx, ps.log, ps.events, realtime.ProgramEvent(realtime.EventProgramPublished, id, now))
	}
	emit(ctx, ps.log, ps.events, realtime.ProgramEvent(realtime.EventProgramUpdated, id, now))
	return out, nil
}

func (ps *programService) AddAsset(ctx context.Context, programID uuid.UUID, in AssetInput) (*content.ProgramAsset, error) {
	if err := validateAsset(&in, content.AssetPoster); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	p, err := ps.programs.GetByID(dbc, programID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("program")
	}
	row := &content.ProgramAsset{
		ProgramID: programID,
		Language:  in.Language,
		Variant:   in.Variant,
		AssetType: in.AssetType,
		URL:       in.URL,
	}
	if err := ps.assets.CreateProgramAsset(dbc, row); err != nil {
		return nil, storeError(err)
	}
	emit(ctx, ps.log, ps.events, realtime.ProgramEvent(realtime.EventProgramUpdated, programID, ps.now()))
	return row, nil
}

func (ps *programService) DeleteAsset(ctx context.Context, programID, assetID uuid.UUID) error {
	ok, err := ps.assets.DeleteProgramAsset(dbctx.Context{Ctx: ctx}, programID, assetID)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.NotFound("asset")
	}
	emit(ctx, ps.log, ps.events, realtime.ProgramEvent(realtime.EventProgramUpdated, programID, ps.now()))
	return nil
}

func validateLanguages(primary string, available []string, msg string) error {
	if primary == "" {
		return apierr.Validation("%s", msg)
	}
	for _, l := range available {
		if l == primary {
			return nil
		}
	}
	return apierr.Validation("%s", msg)
}

func validateAsset(in *AssetInput, want content.AssetType) error {
	if in.AssetType == "" {
		in.AssetType = want
	}
	switch {
	case in.Language == "":
		return apierr.Validation("asset language is required")
	case !in.Variant.Valid():
		return apierr.Validation("unknown asset variant %q", in.Variant)
	case in.AssetType != want:
		return apierr.Validation("assetType must be %q", want)
	case in.URL == "":
		return apierr.Validation("asset url is required")
	}
	return nil
}
