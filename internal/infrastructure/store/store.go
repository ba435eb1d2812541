// Package store opens the listing repository selected by configuration.
// Both the HTTP server and listingctl go through Open so they always agree
// on which backend holds the cards collection.
package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/infrastructure/config"
	"github.com/estate/listings/internal/infrastructure/docstore"
	"github.com/estate/listings/internal/infrastructure/persistence"
	"github.com/estate/listings/internal/infrastructure/persistence/memory"
	"github.com/estate/listings/internal/infrastructure/telemetry"
)

// slowQueryThreshold marks statements worth flagging on their span
const slowQueryThreshold = 200 * time.Millisecond

// Open connects the store named by cfg.Store.Driver. The returned func
// releases the connection and is never nil when err is nil.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (listing.Repository, func(), error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch cfg.Store.Driver {
	case config.StoreMemory:
		log.Warn("Using in-memory listing store, data is lost on restart")
		return memory.NewListingRepository(), func() {}, nil

	case config.StoreSQLite:
		db, err := persistence.NewSQLiteDatabase(cfg.Store.SQLitePath, persistence.WithZapLogger(log, cfg.Log.Level))
		if err != nil {
			return nil, nil, err
		}
		log.Info("SQLite store opened", zap.String("path", cfg.Store.SQLitePath))
		return persistence.NewGormListingRepository(db.DB), closeDatabase(db, log), nil

	case config.StorePostgres:
		db, err := persistence.NewDatabase(&cfg.Database, persistence.WithZapLogger(log, cfg.Log.Level))
		if err != nil {
			return nil, nil, err
		}
		if cfg.Telemetry.DBTraceEnabled {
			if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
				LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
				SlowQueryThreshold: slowQueryThreshold,
				DBSystem:           "postgresql",
			}, log); err != nil {
				log.Warn("Failed to register database tracing", zap.Error(err))
			}
		}
		log.Info("Database connected successfully",
			zap.String("host", cfg.Database.Host),
			zap.String("dbname", cfg.Database.DBName),
		)
		return persistence.NewGormListingRepository(db.DB), closeDatabase(db, log), nil

	case config.StoreMongo:
		client, err := docstore.Connect(ctx, &cfg.Mongo, log)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		closer := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Error("Error disconnecting from MongoDB", zap.Error(err))
			}
		}
		return docstore.NewListingRepository(coll), closer, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func closeDatabase(db *persistence.Database, log *zap.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}
}
