package main

import (
	"io"
	"log/slog"

	"github.com/jirevwe/liteworker/config"
	"github.com/jirevwe/liteworker/deadletter/sqlite"
)

type app struct {
	cfg    *config.Config
	logger *slog.Logger

	// nil when no dead-letter db is configured
	store *sqlite.Sqlite
}

func newApp(configPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	slogger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	a := &app{cfg: cfg, logger: slogger}

	if cfg.DeadLetter.DBPath != "" {
		a.store, err = sqlite.NewSqlite(cfg.DeadLetter.DBPath, slogger)
		if err != nil {
			return nil, err
		}
	}

	return a, nil
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
