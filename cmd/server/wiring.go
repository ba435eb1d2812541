package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	listingapp "github.com/estate/listings/internal/application/listing"
	"github.com/estate/listings/internal/domain/shared"
	"github.com/estate/listings/internal/infrastructure/cache"
	"github.com/estate/listings/internal/infrastructure/config"
	"github.com/estate/listings/internal/infrastructure/event"
	"github.com/estate/listings/internal/infrastructure/storage"
)

// openKeyValueStore returns the configured cache store, or a process-local
// one when the listing cache is off so token revocation still works.
func openKeyValueStore(cfg *config.Config, log *zap.Logger) (cache.Store, error) {
	if !cfg.Cache.Enabled {
		return cache.NewInMemoryStore(time.Minute), nil
	}
	return cache.NewFactory(cfg,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore()
}

// openPublisher always logs events and additionally ships them to RabbitMQ
// when events.driver says so.
func openPublisher(cfg *config.Config, log *zap.Logger) (shared.EventPublisher, func(), error) {
	logPublisher := event.NewLogPublisher(log)
	if cfg.Events.Driver != config.EventsRabbitMQ {
		return logPublisher, func() {}, nil
	}

	rabbit, err := event.NewRabbitMQPublisher(cfg.Events.RabbitMQURL, cfg.Events.Exchange, log)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := rabbit.Close(); err != nil {
			log.Error("Error closing RabbitMQ publisher", zap.Error(err))
		}
	}
	return event.NewFanout(logPublisher, rabbit), closer, nil
}

// wireFloorPlans attaches object storage for floor plan uploads. Outside
// production a stub stands in when no bucket is configured; in production
// the upload endpoint then answers UNAVAILABLE.
func wireFloorPlans(ctx context.Context, cfg *config.Config, service *listingapp.Service, log *zap.Logger) error {
	if !cfg.Storage.Enabled {
		if cfg.App.IsProduction() {
			log.Info("Floor plan uploads disabled")
			return nil
		}
		service.SetFloorPlanStorage(storage.NewStubObjectStorage(cfg.Storage.PublicURL))
		log.Info("Floor plan uploads use the development stub")
		return nil
	}

	s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiry),
	)
	if err != nil {
		return err
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		return err
	}
	service.SetFloorPlanStorage(s3Storage)
	log.Info("Floor plan uploads enabled", zap.String("bucket", s3Storage.Bucket()))
	return nil
}
