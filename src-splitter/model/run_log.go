package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// RunLog records the outcome of one split run.
type RunLog struct {
	bun.BaseModel `bun:"table:run_logs"`

	ID         int64 `bun:"id,pk,autoincrement"`
	StartedAt  int64 `bun:"started_at,notnull"`
	FinishedAt int64 `bun:"finished_at,notnull"`

	EventsTotal    int `bun:"events_total,notnull"`
	EventsKept     int `bun:"events_kept,notnull"`
	EventsFiltered int `bun:"events_filtered,notnull"`
	Courses        int `bun:"courses,notnull"`
	FeedsWritten   int `bun:"feeds_written,notnull"`
}

func (r *RunLog) Insert(ctx context.Context, db bun.IDB) error {
	if db == nil {
		return fmt.Errorf("(*RunLog).Insert: db is nil")
	}
	if _, err := db.NewInsert().Model(r).Exec(ctx); err != nil {
		return fmt.Errorf("(*RunLog).Insert: %w", err)
	}
	return nil
}

// LastRunLog returns the most recent run, or nil when no run happened yet.
func LastRunLog(ctx context.Context, db bun.IDB) (*RunLog, error) {
	runModel := new(RunLog)
	err := db.NewSelect().
		Model(runModel).
		Order("id DESC").
		Limit(1).
		Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("LastRunLog: %w", err)
	}
	return runModel, nil
}
