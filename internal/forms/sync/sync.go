package sync

import (
	"context"
	"time"

	"github.com/smallevents/gatekeeper/internal/config"
	eventdomain "github.com/smallevents/gatekeeper/internal/event/domain"
	"github.com/smallevents/gatekeeper/internal/forms/domain"
	"github.com/smallevents/gatekeeper/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Log       *zap.Logger
	Cfg       config.Config
	Source    domain.Source `optional:"true"`
	Event     eventdomain.Service
	Metrics   *telemetry.Metrics `optional:"true"`
}

// Syncer periodically mirrors the provider's enabled forms into events,
// so webhook deliveries usually find a real event instead of minting a
// placeholder.
type Syncer struct {
	log      *zap.Logger
	source   domain.Source
	event    eventdomain.Service
	metrics  *telemetry.Metrics
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func New(p Params) *Syncer {
	s := &Syncer{
		log:      p.Log.Named("forms.sync"),
		source:   p.Source,
		event:    p.Event,
		metrics:  p.Metrics,
		interval: p.Cfg.Forms.SyncInterval,
		done:     make(chan struct{}),
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.stop(ctx)
			return nil
		},
	})
	return s
}

func (s *Syncer) start() {
	if s.source == nil {
		s.log.Info("form listing sync disabled, no provider configured")
		close(s.done)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go func() {
		defer close(s.done)

		s.runOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

func (s *Syncer) stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	select {
	case <-s.done:
	case <-ctx.Done():
	}
}

func (s *Syncer) runOnce(ctx context.Context) {
	forms, err := s.source.ListForms(ctx)
	if err != nil {
		s.log.Warn("form listing fetch failed", zap.Error(err))
		return
	}

	var synced int
	for _, form := range forms {
		if form.Status != domain.StatusEnabled {
			continue
		}
		_, err := s.event.Upsert(ctx, eventdomain.UpsertEventRequest{
			FormID: form.ExternalID,
			Title:  form.Title,
		})
		if err != nil {
			s.log.Warn("form upsert failed",
				zap.String("form_id", form.ExternalID),
				zap.Error(err),
			)
			continue
		}
		synced++
	}
	s.metrics.SetFormsSynced(float64(synced))
	s.log.Info("form listing synced",
		zap.Int("listed", len(forms)),
		zap.Int("synced", synced),
	)
}
