package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CourseToken maps a course code to the opaque token embedded in its feed
// file name. A token is created once and reused across runs so subscriber
// URLs stay stable.
type CourseToken struct {
	bun.BaseModel `bun:"table:course_tokens"`

	Course    string `bun:"course,pk,notnull"`
	Token     string `bun:"token,notnull,unique"`
	CreatedAt int64  `bun:"created_at,notnull"`
}

// 16 hex chars (64 bits) of a v4 UUID.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// EnsureToken returns the persisted token for a course, creating one on
// first sight.
func EnsureToken(ctx context.Context, db bun.IDB, course string) (string, error) {
	if db == nil {
		return "", fmt.Errorf("EnsureToken: db is nil")
	}
	if course == "" {
		return "", fmt.Errorf("EnsureToken: course is blank")
	}

	tokenModel := new(CourseToken)
	err := db.NewSelect().
		Model(tokenModel).
		Where("course = ?", course).
		Scan(ctx)
	switch {
	case err == nil && tokenModel.Token != "":
		return tokenModel.Token, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("EnsureToken: can't query token: %w", err)
	}

	tokenModel = &CourseToken{
		Course:    course,
		Token:     newToken(),
		CreatedAt: time.Now().Unix(),
	}
	// DO NOTHING so a conflicting insert can never rotate an existing
	// token; the re-select returns whichever token won
	if _, err := db.NewInsert().
		Model(tokenModel).
		On("CONFLICT (course) DO NOTHING").
		Exec(ctx); err != nil {
		return "", fmt.Errorf("EnsureToken: can't insert token: %w", err)
	}

	stored := new(CourseToken)
	if err := db.NewSelect().
		Model(stored).
		Where("course = ?", course).
		Scan(ctx); err != nil {
		return "", fmt.Errorf("EnsureToken: can't read back token: %w", err)
	}
	return stored.Token, nil
}
