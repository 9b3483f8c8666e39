package utils

import (
	"database/sql"
	"log/slog"
	"os"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type AppState struct {
	Config *Config
	RawDb  *sql.DB
	BunDb  *bun.DB

	AppCloseSignalChan chan os.Signal

	doneCh    chan struct{}
	closeOnce sync.Once
}

func NewAppState() *AppState {
	as := &AppState{
		AppCloseSignalChan: make(chan os.Signal, 1),
		doneCh:             make(chan struct{}),
	}

	// env
	as.Config = NewConfig()

	// database
	var err error
	as.RawDb, err = sql.Open(sqliteshim.ShimName, as.Config.GetDatabasePath()+"?mode=rwc")
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	as.RawDb.SetMaxIdleConns(8)
	as.BunDb = bun.NewDB(as.RawDb, sqlitedialect.New())

	return as
}

// Closed when the app is shutting down; background workers select on it.
func (as *AppState) Done() <-chan struct{} {
	return as.doneCh
}

func (as *AppState) GracefulShutdown() {
	as.closeOnce.Do(func() {
		close(as.doneCh)
		if err := as.BunDb.Close(); err != nil {
			slog.Warn("can't close database", "error", err)
		}
	})
}
