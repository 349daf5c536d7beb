package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallevents/gatekeeper/internal/clock"
	"github.com/smallevents/gatekeeper/internal/config"
	"github.com/smallevents/gatekeeper/internal/event/domain"
	pkgdb "github.com/smallevents/gatekeeper/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// placeholderWindow is the default event duration when a webhook
// references a form id the listing sync has not seen yet.
const placeholderWindow = 7 * 24 * time.Hour

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Cfg   config.Config
	Repo  domain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	defaultTitle string
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("event.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		defaultTitle: p.Cfg.DefaultEventTitle,
	}
}

// EnsureByFormID resolves the event for a form id, creating a placeholder
// with a 7-day window when the id has never been seen. The listing sync
// corrects placeholder titles and dates on its next pass.
func (s *Service) EnsureByFormID(ctx context.Context, req domain.EnsureEventRequest) (domain.Event, error) {
	formID := strings.TrimSpace(req.FormID)
	if formID == "" {
		return domain.Event{}, domain.ErrInvalidFormID
	}

	existing, err := s.repo.FindByFormID(ctx, s.db, formID)
	if err != nil {
		return domain.Event{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = s.defaultTitle
	}

	now := s.clock.Now()
	event := domain.Event{
		ID:        s.genID.Generate(),
		FormID:    formID,
		Slug:      slug.Make(title),
		Title:     title,
		StartTime: now,
		EndTime:   now.Add(placeholderWindow),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &event); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			// A concurrent webhook won the insert; use its row.
			raced, findErr := s.repo.FindByFormID(ctx, s.db, formID)
			if findErr == nil && raced != nil {
				return *raced, nil
			}
		}
		return domain.Event{}, err
	}

	s.log.Info("placeholder event created",
		zap.String("form_id", formID),
		zap.String("title", title),
	)
	return event, nil
}

// Upsert applies one form from the provider listing, keyed by form id.
func (s *Service) Upsert(ctx context.Context, req domain.UpsertEventRequest) (domain.Event, error) {
	formID := strings.TrimSpace(req.FormID)
	if formID == "" {
		return domain.Event{}, domain.ErrInvalidFormID
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = s.defaultTitle
	}

	existing, err := s.repo.FindByFormID(ctx, s.db, formID)
	if err != nil {
		return domain.Event{}, err
	}

	now := s.clock.Now()
	start := now
	end := start.Add(placeholderWindow)
	if existing != nil {
		// A listing without dates must not reset the stored window.
		start = existing.StartTime
		end = existing.EndTime
	}
	if req.StartTime != nil {
		start = req.StartTime.UTC()
		end = start.Add(placeholderWindow)
	}
	if req.EndTime != nil {
		end = req.EndTime.UTC()
	}

	event := domain.Event{
		ID:        s.genID.Generate(),
		FormID:    formID,
		Slug:      slug.Make(title),
		Title:     title,
		StartTime: start,
		EndTime:   end,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Upsert(ctx, s.db, &event); err != nil {
		return domain.Event{}, err
	}

	stored, err := s.repo.FindByFormID(ctx, s.db, formID)
	if err != nil {
		return domain.Event{}, err
	}
	if stored == nil {
		return domain.Event{}, domain.ErrNotFound
	}
	return *stored, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetEventRequest) (domain.Event, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Event{}, domain.ErrInvalidID
	}

	event, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Event{}, err
	}
	if event == nil {
		return domain.Event{}, domain.ErrNotFound
	}
	return *event, nil
}
