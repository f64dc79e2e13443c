package root

import (
	"context"
	"database/sql"
	"os"

	"todoquest/internal/engine"
	"todoquest/internal/logging"
	"todoquest/internal/storage"
)

func openDB(ctx context.Context) (*sql.DB, func(), error) {
	path := cfg.DB
	if path == "" {
		var err error
		if path, err = storage.DefaultDBPath(); err != nil {
			return nil, nil, err
		}
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	db, cleanup, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := engine.NewService(db,
		engine.WithLogger(logger),
		engine.WithUsername(cfg.Username),
	)
	if err := svc.Bootstrap(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
