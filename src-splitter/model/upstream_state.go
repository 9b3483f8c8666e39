package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// UpstreamState remembers what the last successfully processed upstream
// looked like, keyed by source (URL or local file path). The splitter skips
// regeneration when nothing changed.
type UpstreamState struct {
	bun.BaseModel `bun:"table:upstream_states"`

	Source       string `bun:"source,pk,notnull"`
	Mode         string `bun:"mode,notnull"` // "http" or "local"
	Sha256       string `bun:"sha256"`
	Etag         string `bun:"etag"`
	LastModified string `bun:"last_modified"`
	UpdatedAt    int64  `bun:"updated_at,notnull"`
}

func GetUpstreamState(ctx context.Context, db bun.IDB, source string) (*UpstreamState, error) {
	stateModel := new(UpstreamState)
	err := db.NewSelect().
		Model(stateModel).
		Where("source = ?", source).
		Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return &UpstreamState{Source: source}, nil
	case err != nil:
		return nil, fmt.Errorf("GetUpstreamState: %w", err)
	}
	return stateModel, nil
}

func (s *UpstreamState) Upsert(ctx context.Context, db bun.IDB) error {
	if db == nil {
		return fmt.Errorf("(*UpstreamState).Upsert: db is nil")
	}
	if s.Source == "" {
		return fmt.Errorf("(*UpstreamState).Upsert: source is blank")
	}

	if _, err := db.NewInsert().
		Model(s).
		On("CONFLICT (source) DO UPDATE").
		Set("mode = EXCLUDED.mode").
		Set("sha256 = EXCLUDED.sha256").
		Set("etag = EXCLUDED.etag").
		Set("last_modified = EXCLUDED.last_modified").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*UpstreamState).Upsert: can't upsert state: %w", err)
	}
	return nil
}
